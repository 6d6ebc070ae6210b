package replay

import (
	"fmt"
	"time"

	"weir/lib/component"
	"weir/lib/properties"
	"weir/weir"
)

var (
	CountProperty    = properties.NewProperty[int]("count", "number of records to replay", 9)
	StepProperty     = properties.NewProperty[string]("step", "event-time distance between records", "1s")
	IntervalProperty = properties.NewProperty[int]("interval", "emission pacing in milliseconds", 10)
	PayloadProperty  = properties.NewProperty[string]("payload", "payload prefix", "record")
)

// source replays a deterministic schedule of timestamped records, then a
// watermark past all of them, then completes. Meant for demos and tests.
type source struct {
	ctx      weir.Context
	count    int
	step     time.Duration
	interval time.Duration
	payload  string
}

func (s *source) PropertiesDef() weir.PropertiesDef {
	return weir.PropertiesDef{CountProperty, StepProperty, IntervalProperty, PayloadProperty}
}

func (s *source) Open(ctx weir.Context) (err error) {
	s.ctx = ctx
	s.count = ctx.Properties().GetInt(CountProperty)
	s.step, err = time.ParseDuration(ctx.Properties().GetString(StepProperty))
	if err != nil {
		return err
	}
	s.interval = time.Duration(ctx.Properties().GetInt(IntervalProperty)) * time.Millisecond
	s.payload = ctx.Properties().GetString(PayloadProperty)
	return nil
}

func (s *source) Close() error {
	return nil
}

func (s *source) Collect(emit weir.Emit) error {
	base := time.Now().Truncate(s.step)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for i := 1; i <= s.count; i++ {
		select {
		case <-s.ctx.Done():
			return nil
		case <-ticker.C:
			eventTime := base.Add(time.Duration(i) * s.step)
			emit(&weir.Event{
				Meta:    map[string]any{"seq": i},
				Message: fmt.Sprintf("%s-%d", s.payload, i),
				Time:    eventTime,
			})
			emit(weir.NewWatermark(eventTime))
		}
	}
	return nil
}

func New() weir.Source {
	return &source{}
}

func init() {
	component.RegisterNewSourceFunc("replay", New)
}
