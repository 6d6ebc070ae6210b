package tumbling

import (
	"testing"
	"time"

	"weir/lib/progress"
	"weir/weir"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func give(w *Tumbling[weir.LogicalTime, int], times ...int) {
	for _, t := range times {
		w.OnNewData(weir.LogicalTime(t), []int{t})
		w.Buffer().Store(weir.LogicalTime(t), []int{t})
	}
}

func times(batch weir.Batch[weir.LogicalTime, int]) []weir.LogicalTime {
	out := make([]weir.LogicalTime, 0, len(batch))
	for _, r := range batch {
		out = append(out, r.Time)
	}
	return out
}

func TestStepBoundaryLaw(t *testing.T) {
	tests := []struct {
		name string
		size weir.Step
		time weir.LogicalTime
		want weir.LogicalTime
	}{
		{name: "inside_first_window", size: 4, time: 1, want: 4},
		{name: "on_boundary", size: 4, time: 4, want: 8},
		{name: "zero", size: 4, time: 0, want: 4},
		{name: "last_of_window", size: 4, time: 7, want: 8},
		{name: "negative", size: 4, time: -1, want: 0},
		{name: "negative_on_boundary", size: 4, time: -4, want: 0},
		{name: "unit_size", size: 1, time: 9, want: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.size.Results(tt.time)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStepCannotAdvance(t *testing.T) {
	_, ok := weir.Step(0).Results(3)
	assert.False(t, ok)
	_, ok = weir.Step(-2).Results(3)
	assert.False(t, ok)
	_, ok = weir.Step(4).Results(weir.LogicalTime(1<<63 - 2))
	assert.False(t, ok)
}

func TestIntervalBoundaryLaw(t *testing.T) {
	base := time.Unix(1651129200, 0).UTC()
	boundary, ok := weir.Interval(time.Minute).Results(weir.NewEventTime(base.Add(10 * time.Second)))
	require.True(t, ok)
	assert.Equal(t, weir.NewEventTime(base.Add(time.Minute)), boundary)

	boundary, ok = weir.Interval(time.Minute).Results(weir.NewEventTime(base))
	require.True(t, ok)
	assert.Equal(t, weir.NewEventTime(base.Add(time.Minute)), boundary)

	_, ok = weir.Interval(0).Results(weir.NewEventTime(base))
	assert.False(t, ok)
}

func TestTryEmitScenario(t *testing.T) {
	w := New[weir.LogicalTime, int](weir.Step(4))
	give(w, 1, 2, 3, 4, 5, 6, 7, 8, 9)

	frontier := progress.NewFrontier[weir.LogicalTime](10)

	boundary, batch, ok := w.TryEmit(frontier)
	require.True(t, ok)
	assert.Equal(t, weir.LogicalTime(4), boundary)
	assert.Equal(t, []weir.LogicalTime{1, 2, 3}, times(batch))

	boundary, batch, ok = w.TryEmit(frontier)
	require.True(t, ok)
	assert.Equal(t, weir.LogicalTime(8), boundary)
	assert.Equal(t, []weir.LogicalTime{4, 5, 6, 7}, times(batch))

	// boundary 12 is not passed by a frontier at 10
	_, _, ok = w.TryEmit(frontier)
	assert.False(t, ok)

	boundary, batch, ok = w.Drain()
	require.True(t, ok)
	assert.Equal(t, weir.LogicalTime(12), boundary)
	assert.Equal(t, []weir.LogicalTime{8, 9}, times(batch))
}

func TestTryEmitIdempotentWithoutProgress(t *testing.T) {
	w := New[weir.LogicalTime, int](weir.Step(4))
	give(w, 1, 2)

	frontier := progress.NewFrontier[weir.LogicalTime](5)

	_, _, ok := w.TryEmit(frontier)
	require.True(t, ok)

	_, _, ok = w.TryEmit(frontier)
	assert.False(t, ok)
	_, _, ok = w.TryEmit(frontier)
	assert.False(t, ok)
}

func TestTryEmitNotArmedBeforeData(t *testing.T) {
	w := New[weir.LogicalTime, int](weir.Step(4))
	_, _, ok := w.TryEmit(progress.NewFrontier[weir.LogicalTime](100))
	assert.False(t, ok)
}

func TestTryEmitHoldsWhileWatermarkAtBoundary(t *testing.T) {
	w := New[weir.LogicalTime, int](weir.Step(4))
	give(w, 1)

	// frontier at the boundary itself may still produce data at 4
	_, _, ok := w.TryEmit(progress.NewFrontier[weir.LogicalTime](4))
	assert.False(t, ok)

	_, _, ok = w.TryEmit(progress.NewFrontier[weir.LogicalTime](5))
	assert.True(t, ok)
}

func TestEmptyBoundaryAdvancesWithoutOutput(t *testing.T) {
	w := New[weir.LogicalTime, int](weir.Step(4))
	give(w, 1, 9)

	frontier := progress.NewFrontier[weir.LogicalTime](10)

	boundary, batch, ok := w.TryEmit(frontier)
	require.True(t, ok)
	assert.Equal(t, weir.LogicalTime(4), boundary)
	assert.Equal(t, []weir.LogicalTime{1}, times(batch))

	// nothing lives in [4, 8); the boundary closes with no output
	boundary, batch, ok = w.TryEmit(frontier)
	require.True(t, ok)
	assert.Equal(t, weir.LogicalTime(8), boundary)
	assert.Empty(t, batch)

	boundary, batch, ok = w.Drain()
	require.True(t, ok)
	assert.Equal(t, weir.LogicalTime(12), boundary)
	assert.Equal(t, []weir.LogicalTime{9}, times(batch))
}

func TestLateDataFoldsIntoNextWindow(t *testing.T) {
	w := New[weir.LogicalTime, int](weir.Step(4))
	give(w, 1, 2, 3)

	_, batch, ok := w.TryEmit(progress.NewFrontier[weir.LogicalTime](5))
	require.True(t, ok)
	assert.Len(t, batch, 3)

	// 2 arrives below the already-closed boundary 4
	give(w, 2, 5)

	boundary, batch, ok := w.TryEmit(progress.NewFrontier[weir.LogicalTime](9))
	require.True(t, ok)
	assert.Equal(t, weir.LogicalTime(8), boundary)
	assert.Equal(t, []weir.LogicalTime{2, 5}, times(batch))
}

func TestInsertionOrderPreservedWithinTimestamp(t *testing.T) {
	w := New[weir.LogicalTime, string](weir.Step(4))
	w.OnNewData(2, nil)
	w.Buffer().Store(2, []string{"a", "b"})
	w.Buffer().Store(2, []string{"c"})

	_, batch, ok := w.TryEmit(progress.NewFrontier[weir.LogicalTime](5))
	require.True(t, ok)

	var data []string
	for _, r := range batch {
		data = append(data, r.Datum)
	}
	assert.Equal(t, []string{"a", "b", "c"}, data)
}

func TestDrainEmptyReturnsNothing(t *testing.T) {
	w := New[weir.LogicalTime, int](weir.Step(4))

	// never armed
	_, _, ok := w.Drain()
	assert.False(t, ok)

	// armed but fully emitted
	give(w, 1)
	_, _, emitted := w.TryEmit(progress.NewFrontier[weir.LogicalTime](5))
	require.True(t, emitted)
	_, _, ok = w.Drain()
	assert.False(t, ok)
}

func TestCompleteness(t *testing.T) {
	w := New[weir.LogicalTime, int](weir.Step(3))
	given := []int{1, 9, 5, 2, 7, 3, 8, 4, 6}
	give(w, given...)

	var got []int
	for wm := 1; wm <= 11; wm++ {
		if _, batch, ok := w.TryEmit(progress.NewFrontier[weir.LogicalTime](weir.LogicalTime(wm))); ok {
			for _, r := range batch {
				got = append(got, r.Datum)
			}
		}
	}
	if _, batch, ok := w.Drain(); ok {
		for _, r := range batch {
			got = append(got, r.Datum)
		}
	}

	assert.ElementsMatch(t, given, got)
	assert.Len(t, got, len(given))
}

func TestWithInitialTimeArmsBoundary(t *testing.T) {
	w := New[weir.LogicalTime, int](weir.Step(4), WithInitialTime[weir.LogicalTime, int](1))

	// no data: boundary armed but nothing to emit
	boundary, batch, ok := w.TryEmit(progress.NewFrontier[weir.LogicalTime](5))
	require.True(t, ok)
	assert.Equal(t, weir.LogicalTime(4), boundary)
	assert.Empty(t, batch)
}

func TestDataReadinessFallback(t *testing.T) {
	w := New[weir.LogicalTime, int](weir.Step(4), WithDataReadiness[weir.LogicalTime, int]())
	give(w, 1, 2, 3, 4, 5)

	boundary, batch, ok := w.TryEmit(nil)
	require.True(t, ok)
	assert.Equal(t, weir.LogicalTime(4), boundary)
	assert.Equal(t, []weir.LogicalTime{1, 2, 3}, times(batch))

	// max observed is 5, the next boundary 8 is not strictly exceeded
	_, _, ok = w.TryEmit(nil)
	assert.False(t, ok)
}

func TestNilWatermarkWithoutFallbackNeverReady(t *testing.T) {
	w := New[weir.LogicalTime, int](weir.Step(4))
	give(w, 1, 2, 3, 4, 5, 6, 7, 8, 9)

	_, _, ok := w.TryEmit(nil)
	assert.False(t, ok)
}

func TestBrokenSizePanics(t *testing.T) {
	w := New[weir.LogicalTime, int](weir.Step(0))
	assert.Panics(t, func() { give(w, 1) })
}
