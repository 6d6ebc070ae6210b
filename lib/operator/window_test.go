package operator

import (
	"testing"

	"weir/lib/dataflow"
	"weir/lib/window/tumbling"
	"weir/weir"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emission struct {
	at     weir.LogicalTime
	values []int
}

type harness struct {
	worker *dataflow.Worker
	input  *dataflow.Input[weir.LogicalTime, int]
	output *dataflow.Stream[weir.LogicalTime, weir.Batch[weir.LogicalTime, int]]

	emitted []emission
}

func newHarness(t *testing.T, size int64, drainOnDone bool) *harness {
	t.Helper()
	h := &harness{
		worker: dataflow.NewWorker(),
		input:  dataflow.NewInput[weir.LogicalTime, int](0),
	}
	h.output = Window[weir.LogicalTime, int](
		h.worker, h.input, "test",
		tumbling.New[weir.LogicalTime, int](weir.Step(size)),
		drainOnDone,
	)
	h.output.Inspect(func(at weir.LogicalTime, batch weir.Batch[weir.LogicalTime, int]) {
		e := emission{at: at}
		for _, record := range batch {
			e.values = append(e.values, record.Datum)
		}
		h.emitted = append(h.emitted, e)
	})
	return h
}

// feed sends one record at t, advances the frontier past it, and steps.
func (h *harness) feed(t weir.LogicalTime, value int) {
	h.input.SendAt(t, value)
	h.input.AdvanceTo(t + 1)
	h.worker.Step()
}

func (h *harness) finish() {
	h.input.Close()
	h.worker.Step()
}

func TestWindowEmitsAsBoundariesClose(t *testing.T) {
	h := newHarness(t, 4, true)

	for i := 1; i <= 9; i++ {
		h.feed(weir.LogicalTime(i), i)
	}
	h.finish()

	require.Len(t, h.emitted, 3)
	assert.Equal(t, emission{at: 4, values: []int{1, 2, 3}}, h.emitted[0])
	assert.Equal(t, emission{at: 8, values: []int{4, 5, 6, 7}}, h.emitted[1])
	assert.Equal(t, emission{at: 12, values: []int{8, 9}}, h.emitted[2])
	assert.True(t, h.output.Probe().Done())
}

func TestWindowBatchHoldsUntilBoundaryPassed(t *testing.T) {
	h := newHarness(t, 4, true)

	for i := 1; i <= 3; i++ {
		h.input.SendAt(weir.LogicalTime(i), i)
	}
	h.input.AdvanceTo(4)
	h.worker.Step()
	// frontier at the boundary itself: a record at 4 may still arrive
	assert.Empty(t, h.emitted)

	h.input.AdvanceTo(5)
	h.worker.Step()
	require.Len(t, h.emitted, 1)
	assert.Equal(t, emission{at: 4, values: []int{1, 2, 3}}, h.emitted[0])
}

func TestWindowWithoutDrainDropsFinalPartial(t *testing.T) {
	h := newHarness(t, 4, false)

	for i := 1; i <= 9; i++ {
		h.feed(weir.LogicalTime(i), i)
	}
	h.finish()

	require.Len(t, h.emitted, 2)
	assert.Equal(t, weir.LogicalTime(4), h.emitted[0].at)
	assert.Equal(t, weir.LogicalTime(8), h.emitted[1].at)
	assert.True(t, h.output.Probe().Done())
}

func TestWindowEmptyInputEmitsNothing(t *testing.T) {
	h := newHarness(t, 4, true)
	h.finish()

	assert.Empty(t, h.emitted)
	assert.True(t, h.output.Probe().Done())
}

func TestWindowTerminalTickIsIdempotent(t *testing.T) {
	h := newHarness(t, 4, true)
	h.feed(1, 1)
	h.finish()

	require.Len(t, h.emitted, 1)
	h.worker.Step()
	h.worker.Step()
	assert.Len(t, h.emitted, 1)
	assert.True(t, h.output.Probe().Done())
}

func TestWindowLateRecordFoldsForward(t *testing.T) {
	h := newHarness(t, 4, true)

	for i := 1; i <= 3; i++ {
		h.input.SendAt(weir.LogicalTime(i), i)
	}
	h.input.AdvanceTo(5)
	h.worker.Step()
	require.Len(t, h.emitted, 1)

	// time 2 is behind the frontier now; it lands in the next window
	h.input.SendAt(2, 99)
	h.input.SendAt(6, 6)
	h.input.AdvanceTo(9)
	h.worker.Step()

	require.Len(t, h.emitted, 2)
	assert.Equal(t, emission{at: 8, values: []int{99, 6}}, h.emitted[1])
}

func TestWindowDrainsRecordsQueuedAtClose(t *testing.T) {
	h := newHarness(t, 4, true)

	// the input closes with batches still queued; the terminal tick has to
	// ingest them before draining
	h.input.SendAt(1, 1)
	h.input.SendAt(2, 2)
	h.input.Close()
	h.worker.Step()

	require.Len(t, h.emitted, 1)
	assert.Equal(t, emission{at: 4, values: []int{1, 2}}, h.emitted[0])
	assert.True(t, h.output.Probe().Done())
}

func TestWindowFirstBoundaryBelowEpoch(t *testing.T) {
	worker := dataflow.NewWorker()
	input := dataflow.NewInput[weir.LogicalTime, int](100)
	var emitted []emission
	output := Window[weir.LogicalTime, int](
		worker, input, "test",
		tumbling.New[weir.LogicalTime, int](weir.Step(4)),
		true,
	)
	output.Inspect(func(at weir.LogicalTime, batch weir.Batch[weir.LogicalTime, int]) {
		e := emission{at: at}
		for _, record := range batch {
			e.values = append(e.values, record.Datum)
		}
		emitted = append(emitted, e)
	})

	// a record far below the epoch arms a boundary the capability has long
	// passed; the window rides the capability time instead of panicking
	input.SendAt(1, 1)
	require.NotPanics(t, func() { worker.Step() })

	input.AdvanceTo(101)
	worker.Step()

	require.Len(t, emitted, 1)
	assert.Equal(t, emission{at: 100, values: []int{1}}, emitted[0])
}

func TestWindowOutputFrontierLagsRetainedBoundary(t *testing.T) {
	h := newHarness(t, 4, true)
	probe := h.output.Probe()

	h.feed(1, 1)
	// input frontier is at 2, but the capability still allows output at any
	// time, so downstream must not run ahead
	assert.False(t, probe.LessThan(0))
	assert.True(t, probe.LessThan(1))

	for i := 2; i <= 4; i++ {
		h.feed(weir.LogicalTime(i), i)
	}
	// window at 4 emitted; the capability sits at 4 and the output frontier
	// follows it
	require.Len(t, h.emitted, 1)
	assert.False(t, probe.LessThan(4))
	assert.True(t, probe.LessThan(5))
	assert.False(t, probe.Done())
}
