package constant

import (
	"weir/lib/properties"
)

var (
	//runtime property

	RuntimeLogLevelProperty = properties.NewProperty[string]("log-level", "log-level", "info")
	WindowSizeProperty      = properties.NewProperty[string]("window.size", "tumbling window size", "1m")
	WindowDrainProperty     = properties.NewProperty[bool]("window.drain", "emit the final partial window on completion", true)

	//component property

	TypeProperty = properties.NewRequiredProperty[string]("type", "component type")
)
