package main

import (
	"fmt"

	"weir/lib/component"
	"weir/lib/properties"
	"weir/weir"

	"github.com/spf13/cobra"
)

func init() {
	Command.AddCommand(&cobra.Command{
		Use:   "inventory",
		Short: "list source operator sink inventory.",
		Long:  `list source operator sink inventory.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 1 {
				panic("inventory type can't be nil.")
			}
			var defs map[string]weir.PropertiesDef

			switch args[0] {
			case "source":
				defs = component.ListSourceDef()
			case "operator":
				defs = component.ListOperatorDef()
			case "sink":
				defs = component.ListSinkDef()
			default:
				panic("unknown inventory type.")
			}

			for name, def := range defs {
				fmt.Printf("%s %s:\n%s\n", name, args[0], properties.RenderDef(def))
			}
		}})
}
