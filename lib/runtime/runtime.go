package runtime

import (
	_c "context"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"weir/lib/component"
	"weir/lib/context"
	"weir/lib/dataflow"
	"weir/lib/log"
	"weir/lib/operator"
	"weir/lib/properties"
	"weir/lib/window/tumbling"
	"weir/pkg/constant"
	"weir/weir"

	"github.com/pkg/errors"
	"gopkg.in/tomb.v2"
)

const (
	SourcePrefix   = "source"
	OperatorPrefix = "operator"
	SinkPrefix     = "sink"
)

var (
	propertiesDef = weir.PropertiesDef{constant.RuntimeLogLevelProperty, constant.WindowSizeProperty, constant.WindowDrainProperty}
)

// Runtime wires one configured source, an optional operator chain, the
// tumbling-window engine, and the configured sinks into one pipeline. The
// windowing core runs single-threaded on a dedicated step loop; sources
// feed it through a channel.
type Runtime struct {
	ctx    weir.Context
	logger weir.Logger
	global weir.Properties
	life   *tomb.Tomb

	source    weir.Source
	sourceCtx weir.Context
	operators []weir.Operator
	opCtxs    []weir.Context
	sinks     []weir.Sink
	sinkCtxs  []weir.Context

	windowSize  time.Duration
	windowDrain bool
	records     chan *weir.Event
}

func (r *Runtime) initSource() {
	names := r.ctx.Properties().PrefixKeys(SourcePrefix)
	if len(names) != 1 {
		panic("exactly one source per pipeline; the window engine owns one logical partition.")
	}
	name := SourcePrefix + "." + names[0]
	sourceCtx := r.ctx.Named(name)
	if sourceCtx.Properties() == nil {
		panic("source properties can't be nil.")
	}
	newFunc := component.NewSourceFunc(sourceCtx.Properties().GetString(constant.TypeProperty))
	if newFunc == nil {
		panic("unknown source type for " + name)
	}
	r.source = newFunc()
	renderText, err := properties.InitAndRender(sourceCtx.Properties(), r.source.PropertiesDef())
	if err != nil {
		panic(errors.WithMessage(err, "failed to init source properties"))
	}
	r.logger.Infof("init %s:\n%s", name, renderText)
	r.sourceCtx = sourceCtx
}

func (r *Runtime) initOperators() {
	names := r.ctx.Properties().PrefixKeys(OperatorPrefix)
	// chained in name order, upstream first
	sort.Strings(names)
	for _, n := range names {
		name := OperatorPrefix + "." + n
		opCtx := r.ctx.Named(name)
		if opCtx.Properties() == nil {
			panic("operator " + name + " properties can't be nil.")
		}
		newFunc := component.NewOperatorFunc(opCtx.Properties().GetString(constant.TypeProperty))
		if newFunc == nil {
			panic("unknown operator type for " + name)
		}
		op := newFunc()
		renderText, err := properties.InitAndRender(opCtx.Properties(), op.PropertiesDef())
		if err != nil {
			panic(errors.WithMessage(err, "failed to init operator properties"))
		}
		r.logger.Infof("init %s:\n%s", name, renderText)
		r.operators = append(r.operators, op)
		r.opCtxs = append(r.opCtxs, opCtx)
	}
}

func (r *Runtime) initSinks() {
	names := r.ctx.Properties().PrefixKeys(SinkPrefix)
	if len(names) == 0 {
		panic("sink has to have at least one.")
	}
	for _, n := range names {
		name := SinkPrefix + "." + n
		sinkCtx := r.ctx.Named(name)
		if sinkCtx.Properties() == nil {
			panic("sink " + name + " properties can't be nil.")
		}
		newFunc := component.NewSinkFunc(sinkCtx.Properties().GetString(constant.TypeProperty))
		if newFunc == nil {
			panic("unknown sink type for " + name)
		}
		sink := newFunc()
		renderText, err := properties.InitAndRender(sinkCtx.Properties(), sink.PropertiesDef())
		if err != nil {
			panic(errors.WithMessage(err, "failed to init sink properties"))
		}
		r.logger.Infof("init %s:\n%s", name, renderText)
		r.sinks = append(r.sinks, sink)
		r.sinkCtxs = append(r.sinkCtxs, sinkCtx)
	}
}

func (r *Runtime) Run() {
	r.life.Go(func() error {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
		select {
		case s := <-c:
			r.logger.Infof("notify system signal %s, done.", s)
			r.ctx.Cancel()
		case <-r.ctx.Done():
		}
		return nil
	})

	r.initSource()
	r.initOperators()
	r.initSinks()
	r.openAll()
	r.runSource()
	r.runEngine()
	<-r.life.Dead()
	r.closeAll()
}

func (r *Runtime) openAll() {
	if err := r.source.Open(r.sourceCtx); err != nil {
		panic(errors.WithMessage(err, "can't open source"))
	}
	for i, op := range r.operators {
		if err := op.Open(r.opCtxs[i]); err != nil {
			panic(errors.WithMessage(err, "can't open operator"))
		}
	}
	for i, sink := range r.sinks {
		if err := sink.Open(r.sinkCtxs[i]); err != nil {
			panic(errors.WithMessage(err, "can't open sink"))
		}
	}
}

func (r *Runtime) closeAll() {
	if err := r.source.Close(); err != nil {
		r.logger.Errorw("failed to close source.", "err", err)
	}
	for _, op := range r.operators {
		if err := op.Close(); err != nil {
			r.logger.Errorw("failed to close operator.", "err", err)
		}
	}
	for _, sink := range r.sinks {
		if err := sink.Close(); err != nil {
			r.logger.Errorw("failed to close sink.", "err", err)
		}
	}
}

// runSource runs the source's blocking Collect, its emissions threaded
// through the operator chain into the record channel.
func (r *Runtime) runSource() {
	emit := weir.Emit(func(event *weir.Event) {
		select {
		case r.records <- event:
		case <-r.ctx.Done():
		}
	})
	for i := len(r.operators) - 1; i >= 0; i-- {
		emit = r.operators[i].GenerateEmit(emit)
	}
	r.life.Go(func() error {
		defer close(r.records)
		r.logger.Infow("starting source task.", "task", r.sourceCtx.Name())
		if err := r.source.Collect(emit); err != nil {
			r.logger.Errorw("failed source task.", "task", r.sourceCtx.Name(), "err", err)
			return err
		}
		r.logger.Infow("source task is complete.", "task", r.sourceCtx.Name())
		return nil
	})
}

// runEngine owns the single-threaded windowing dataflow: it is the only
// goroutine touching the worker, the input edge, and the operator state.
func (r *Runtime) runEngine() {
	r.life.Go(func() error {
		worker := dataflow.NewWorker()
		input := dataflow.NewInput[weir.EventTime, *weir.Event](weir.EventTime{})
		policy := tumbling.New[weir.EventTime, *weir.Event](weir.Interval(r.windowSize))
		windows := operator.Window(worker, input, "tumbling", policy, r.windowDrain)

		sinkEmits := make([]weir.Emit, 0, len(r.sinks))
		for _, sink := range r.sinks {
			sinkEmits = append(sinkEmits, sink.GenerateEmit())
		}
		windows.Inspect(func(boundary weir.EventTime, batch weir.Batch[weir.EventTime, *weir.Event]) {
			events := make([]*weir.Event, 0, len(batch))
			for _, record := range batch {
				events = append(events, record.Datum)
			}
			out := &weir.Event{
				Meta:    map[string]any{weir.MetaBoundary: boundary.Time},
				Message: events,
				Time:    boundary.Time,
			}
			for _, emit := range sinkEmits {
				emit(out)
			}
		})
		probe := windows.Probe()

		for {
			select {
			case <-r.ctx.Done():
				return nil
			case event, ok := <-r.records:
				if !ok {
					input.Close()
					worker.StepWhile(func() bool { return !probe.Done() })
					r.ctx.Cancel()
					return nil
				}
				if event.IsWatermark() {
					t := weir.NewEventTime(event.Time)
					if input.Time().Less(t) {
						input.AdvanceTo(t)
					}
				} else {
					input.SendAt(weir.NewEventTime(event.Time), event)
				}
				worker.Step()
			}
		}
	})
}

func New(originCtx _c.Context, propertiesName string, propertiesType string, propertiesPath ...string) *Runtime {
	ps := properties.New(propertiesName, propertiesType, propertiesPath...)
	ctx := context.New(originCtx, ps)

	global := ps.Global()
	initAndRender, err := properties.InitAndRender(global, propertiesDef)
	if err != nil {
		panic(errors.WithMessage(err, "can't init runtime properties"))
	}
	log.Setup(log.DefaultOptions().
		WithOutputEncoder(log.ConsoleOutputEncoder).
		WithLevel(global.GetString(constant.RuntimeLogLevelProperty)))
	logger := log.Ctx(ctx)
	logger.Infof("global:\n%s", initAndRender)

	windowSize, err := time.ParseDuration(global.GetString(constant.WindowSizeProperty))
	if err != nil {
		panic(errors.WithMessage(err, "can't parse window size"))
	}

	life, _ := tomb.WithContext(ctx.Ctx())
	return &Runtime{
		ctx:         ctx,
		logger:      logger,
		global:      global,
		life:        life,
		windowSize:  windowSize,
		windowDrain: global.GetBool(constant.WindowDrainProperty),
		records:     make(chan *weir.Event, 1024),
	}
}
