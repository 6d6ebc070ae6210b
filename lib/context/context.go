package context

import (
	_c "context"
	"strings"
	"sync"

	"weir/weir"
)

type context struct {
	ctx    _c.Context
	props  weir.Properties
	cancel _c.CancelFunc
	kv     sync.Map
	name   string
}

func (c *context) Done() <-chan struct{} {
	return c.ctx.Done()
}

func (c *context) Cancel() {
	c.cancel()
}

func (c *context) Ctx() _c.Context {
	return c.ctx
}

func (c *context) Name() string {
	return c.name
}

func (c *context) Named(value string) weir.Context {
	ctx, cancel := _c.WithCancel(c.ctx)
	name := value
	if c.name != "" {
		name = strings.Join([]string{c.name, value}, ".")
	}
	return &context{props: c.props.Sub(value), ctx: ctx, cancel: cancel, name: name}
}

func (c *context) Properties() weir.Properties {
	return c.props
}

func (c *context) Store(key string, value interface{}) {
	c.kv.Store(key, value)
}

func (c *context) Load(key string) (interface{}, bool) {
	return c.kv.Load(key)
}

func New(ctx _c.Context, properties weir.Properties) weir.Context {
	parent, cancelFunc := _c.WithCancel(ctx)
	return &context{ctx: parent, props: properties, cancel: cancelFunc}
}
