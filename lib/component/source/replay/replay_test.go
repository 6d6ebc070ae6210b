package replay

import (
	_c "context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	wcontext "weir/lib/context"
	"weir/lib/properties"
	"weir/weir"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, config string) weir.Context {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "replay.yaml"), []byte(config), 0o644))
	return wcontext.New(_c.Background(), properties.New("replay", "yaml", dir))
}

func TestReplayEmitsScheduleThenCompletes(t *testing.T) {
	s := New()
	require.NoError(t, s.Open(newTestContext(t, "count: 3\nstep: 1s\ninterval: 1\npayload: r\n")))

	var events []*weir.Event
	require.NoError(t, s.Collect(func(event *weir.Event) {
		events = append(events, event)
	}))
	require.NoError(t, s.Close())

	// each record is chased by a watermark at its own time
	require.Len(t, events, 6)
	for i := 0; i < 3; i++ {
		record, watermark := events[2*i], events[2*i+1]
		assert.False(t, record.IsWatermark())
		assert.Equal(t, fmt.Sprintf("r-%d", i+1), record.Message)
		assert.True(t, watermark.IsWatermark())
		assert.Equal(t, record.Time, watermark.Time)
	}

	// event times tile the step
	assert.Equal(t, time.Second, events[2].Time.Sub(events[0].Time))
	assert.Equal(t, time.Second, events[4].Time.Sub(events[2].Time))
}

func TestReplayDefaults(t *testing.T) {
	s := New().(*source)
	ctx := newTestContext(t, "payload: x\n")
	_, err := properties.InitAndRender(ctx.Properties(), s.PropertiesDef())
	require.NoError(t, err)
	require.NoError(t, s.Open(ctx))

	assert.Equal(t, 9, s.count)
	assert.Equal(t, time.Second, s.step)
	assert.Equal(t, 10*time.Millisecond, s.interval)
}

func TestReplayRejectsBadStep(t *testing.T) {
	s := New()
	assert.Error(t, s.Open(newTestContext(t, "step: nonsense\n")))
}
