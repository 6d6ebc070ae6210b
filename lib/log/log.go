package log

import (
	"weir/weir"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Encoder string

const (
	ConsoleOutputEncoder Encoder = "console"
	JSONOutputEncoder    Encoder = "json"
)

type Options struct {
	level   zapcore.Level
	encoder Encoder
	outputs []string
}

func DefaultOptions() Options {
	return Options{
		level:   zapcore.InfoLevel,
		encoder: JSONOutputEncoder,
		outputs: []string{"stderr"},
	}
}

func (o Options) WithOutputEncoder(encoder Encoder) Options {
	o.encoder = encoder
	return o
}

func (o Options) WithLevel(level string) Options {
	if l, err := zapcore.ParseLevel(level); err == nil {
		o.level = l
	}
	return o
}

func (o Options) WithOutputs(outputs ...string) Options {
	o.outputs = outputs
	return o
}

var root = zap.NewNop()

// Setup replaces the process-wide root logger. Call once, before any task
// starts.
func Setup(options Options) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(options.level)
	config.Encoding = string(options.encoder)
	config.OutputPaths = options.outputs
	if options.encoder == ConsoleOutputEncoder {
		config.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	logger, err := config.Build()
	if err != nil {
		panic(err)
	}
	root = logger
}

// Ctx returns a logger named after the context's position in the pipeline.
func Ctx(ctx weir.Context) weir.Logger {
	return Named(ctx.Name())
}

func Named(name string) weir.Logger {
	return root.Named(name).Sugar()
}
