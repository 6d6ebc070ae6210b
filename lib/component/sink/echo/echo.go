package echo

import (
	"sync"

	"weir/lib/component"
	"weir/lib/log"
	"weir/lib/properties"
	"weir/weir"
)

var (
	BatchSizeProperty = properties.NewProperty[int]("batch", "echo sink flush batch size", 1)
	TypeProperty      = properties.NewProperty[string]("echo", "echo level, like info debug", "info")
)

type sink struct {
	ctx       weir.Context
	logger    weir.Logger
	batch     int
	buffer    []*weir.Event
	bufferMux sync.Mutex
	echoFunc  func(format string, args ...interface{})
}

func (s *sink) GenerateEmit() weir.Emit {
	return func(event *weir.Event) {
		s.bufferMux.Lock()
		defer s.bufferMux.Unlock()
		s.buffer = append(s.buffer, event)
		if len(s.buffer) >= s.batch {
			for _, e := range s.buffer {
				s.echoFunc("%+v", e)
			}
			s.buffer = s.buffer[:0]
		}
	}
}

func (s *sink) Open(ctx weir.Context) error {
	s.ctx = ctx
	s.logger = log.Ctx(s.ctx)
	s.batch = ctx.Properties().GetInt(BatchSizeProperty)
	switch ctx.Properties().GetString(TypeProperty) {
	case "debug":
		s.echoFunc = s.logger.Debugf
	case "warn":
		s.echoFunc = s.logger.Warnf
	case "error":
		s.echoFunc = s.logger.Errorf
	case "info":
		s.echoFunc = s.logger.Infof
	default:
		s.logger.Warnf("unknown echo type, use info")
		s.echoFunc = s.logger.Infof
	}
	return nil
}

func (s *sink) Close() error {
	s.bufferMux.Lock()
	defer s.bufferMux.Unlock()
	for _, e := range s.buffer {
		s.echoFunc("%+v", e)
	}
	s.buffer = nil
	return nil
}

func (s *sink) PropertiesDef() weir.PropertiesDef {
	return weir.PropertiesDef{BatchSizeProperty, TypeProperty}
}

func New() weir.Sink {
	return &sink{}
}

func init() {
	component.RegisterNewSinkFunc("echo", New)
}
