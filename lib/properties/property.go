package properties

import (
	"reflect"

	"weir/weir"
)

type property[T any] struct {
	name        string
	description string
	fallback    interface{}
	zero        T
}

func (p *property[T]) Required() bool {
	return p.fallback == nil
}

func (p *property[T]) Name() string {
	return p.name
}

func (p *property[T]) Description() string {
	return p.description
}

func (p *property[T]) Default() interface{} {
	return p.fallback
}

func (p *property[T]) Type() string {
	return reflect.TypeOf(p.zero).String()
}

func NewProperty[T any](name, description string, fallback T) weir.Property {
	return &property[T]{
		name:        name,
		description: description,
		fallback:    fallback,
	}
}

func NewRequiredProperty[T any](name, description string) weir.Property {
	return &property[T]{
		name:        name,
		description: description,
	}
}
