package window

import (
	"testing"

	"weir/weir"

	"github.com/stretchr/testify/assert"
)

func TestMapBufferStoreAppends(t *testing.T) {
	buffer := NewMapBuffer[weir.LogicalTime, string]()

	buffer.Store(1, []string{"a"})
	buffer.Store(1, []string{"b", "c"})
	buffer.Store(2, []string{"d"})

	assert.ElementsMatch(t, []weir.LogicalTime{1, 2}, buffer.Timestamps())

	data, ok := buffer.Remove(1)
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, data)
}

func TestMapBufferRemoveDetachesWholeEntry(t *testing.T) {
	buffer := NewMapBuffer[weir.LogicalTime, int]()
	buffer.Store(7, []int{1, 2})

	_, ok := buffer.Remove(7)
	assert.True(t, ok)

	// detached for good
	_, ok = buffer.Remove(7)
	assert.False(t, ok)
	assert.Empty(t, buffer.Timestamps())
}

func TestMapBufferStoreNothing(t *testing.T) {
	buffer := NewMapBuffer[weir.LogicalTime, int]()
	buffer.Store(3, nil)

	// no empty entry may appear
	assert.Empty(t, buffer.Timestamps())
	_, ok := buffer.Remove(3)
	assert.False(t, ok)
}

func TestGiveVecInvokesHookThenStores(t *testing.T) {
	w := &hookWindow{buffer: NewMapBuffer[weir.LogicalTime, int]()}

	GiveVec[weir.LogicalTime, int](w, 5, []int{10, 11})
	Give[weir.LogicalTime, int](w, 5, 12)

	assert.Equal(t, []weir.LogicalTime{5, 5}, w.hooked)
	data, ok := w.buffer.Remove(5)
	assert.True(t, ok)
	assert.Equal(t, []int{10, 11, 12}, data)
}

func TestGiveVecIgnoresEmptyBatch(t *testing.T) {
	w := &hookWindow{buffer: NewMapBuffer[weir.LogicalTime, int]()}

	GiveVec[weir.LogicalTime, int](w, 5, nil)

	assert.Empty(t, w.hooked)
	assert.Empty(t, w.buffer.Timestamps())
}

type hookWindow struct {
	buffer MapBuffer[weir.LogicalTime, int]
	hooked []weir.LogicalTime
}

func (w *hookWindow) Buffer() Buffer[weir.LogicalTime, int] {
	return w.buffer
}

func (w *hookWindow) OnNewData(t weir.LogicalTime, _ []int) {
	w.hooked = append(w.hooked, t)
}

func (w *hookWindow) TryEmit(Watermark[weir.LogicalTime]) (weir.LogicalTime, weir.Batch[weir.LogicalTime, int], bool) {
	return 0, nil, false
}
