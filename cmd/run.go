package main

import (
	_c "context"
	"path"

	"weir/lib/runtime"

	"github.com/spf13/cobra"
)

func init() {
	Command.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "run a windowing pipeline",
		Long:  `config source, operators and sinks, then run the tumbling-window pipeline`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 0 {
				panic("config file can't be nil")
			}
			configFilePath := args[0]
			r := runtime.New(_c.Background(), strippedBase(configFilePath), path.Ext(configFilePath)[1:], path.Dir(configFilePath))
			r.Run()
		},
	})
}

func strippedBase(p string) string {
	base := path.Base(p)
	ext := path.Ext(base)
	return base[:len(base)-len(ext)]
}
