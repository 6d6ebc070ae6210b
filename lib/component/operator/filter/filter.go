package filter

import (
	"fmt"
	"strings"

	"weir/lib/component"
	"weir/lib/log"
	"weir/lib/properties"
	"weir/weir"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/spf13/cast"
)

var (
	ConditionProperty = properties.NewRequiredProperty[string]("condition", "condition tengo script")
)

// filterOperator drops records whose condition script evaluates false.
// Watermarks pass through untouched; dropping one would stall progress.
type filterOperator struct {
	ctx      weir.Context
	logger   weir.Logger
	next     weir.Emit
	compiled *tengo.Compiled
}

func (f *filterOperator) Open(ctx weir.Context) error {
	f.ctx = ctx
	f.logger = log.Ctx(f.ctx)
	conditionStr := f.ctx.Properties().GetString(ConditionProperty)
	script := tengo.NewScript([]byte(fmt.Sprintf("__res__ := (%s)", strings.TrimSpace(conditionStr))))
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	if err := script.Add("event", map[string]interface{}{}); err != nil {
		f.logger.Errorw("can't add event to script.", "err", err)
		return err
	}
	compiled, err := script.Compile()
	if err != nil {
		f.logger.Errorw("can't compile script.", "err", err)
		return err
	}
	f.compiled = compiled
	return nil
}

func (f *filterOperator) Close() error {
	return nil
}

func (f *filterOperator) PropertiesDef() weir.PropertiesDef {
	return weir.PropertiesDef{ConditionProperty}
}

func (f *filterOperator) GenerateEmit(next weir.Emit) weir.Emit {
	f.next = next
	return f.emit
}

func (f *filterOperator) emit(event *weir.Event) {
	if event.IsWatermark() {
		f.next(event)
		return
	}
	if err := f.compiled.Set("event", toScriptEvent(event)); err != nil {
		f.logger.Errorw("add event to script vm error.", "err", err)
		return
	}
	if err := f.compiled.RunContext(f.ctx.Ctx()); err != nil {
		f.logger.Errorw("run script error.", "err", err)
		return
	}
	switch pass := f.compiled.Get("__res__").Value().(type) {
	case bool:
		if pass {
			f.next(event)
		} else {
			f.logger.Debugf("filter event: %+v", event)
		}
	default:
		f.logger.Errorf("script returned %T, want bool.", pass)
	}
}

// toScriptEvent exposes the event to the script as a plain map.
func toScriptEvent(event *weir.Event) map[string]interface{} {
	meta := map[string]interface{}{}
	for k, v := range event.Meta {
		meta[k] = cast.ToString(v)
	}
	return map[string]interface{}{
		"message": cast.ToString(event.Message),
		"meta":    meta,
		"time":    event.Time.UnixMilli(),
	}
}

func New() weir.Operator {
	return &filterOperator{}
}

func init() {
	component.RegisterNewOperatorFunc("filter", New)
}
