package main

import (
	"fmt"
	"os"

	_ "weir/lib"

	"github.com/spf13/cobra"
)

var Command = &cobra.Command{
	Use:   "weir",
	Short: "weir is a watermark-driven tumbling-window engine",
}

func main() {
	if err := Command.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
