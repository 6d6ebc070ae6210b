package weir

// Emit delivers one event to the next stage. Delivery is synchronous and
// best effort; there is no acknowledgement path.
type Emit func(event *Event)

// Component is the lifecycle every pluggable piece shares.
type Component interface {
	// Open initializes the component.
	Open(ctx Context) error
	// Close cleans up after the context is done.
	Close() error
	// PropertiesDef returns the component's property definitions.
	PropertiesDef() PropertiesDef
}

type Source interface {
	Component
	// Collect blocks the caller until the context is done or the source is
	// exhausted, emitting records (and watermarks) as they become available.
	Collect(emit Emit) error
}

type Operator interface {
	Component
	// GenerateEmit returns the receiving end of the operator; the returned
	// Emit feeds the operator's input.
	GenerateEmit(next Emit) Emit
}

type Sink interface {
	Component
	// GenerateEmit returns the receiving end of the sink.
	GenerateEmit() Emit
}

type NewSourceFunc func() Source
type NewOperatorFunc func() Operator
type NewSinkFunc func() Sink
