package weir

import (
	_c "context"
)

type Context interface {
	// Ctx is the origin context.
	Ctx() _c.Context
	// Name is the dotted path of this context in the pipeline tree.
	Name() string
	Named(string) Context
	Properties() Properties

	// Store and Load are per-context kv storage.
	Store(key string, value interface{})
	Load(key string) (interface{}, bool)

	Done() <-chan struct{}
	Cancel()
}
