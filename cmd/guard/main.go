package main

import (
	"os"

	"github.com/jamesdabbs/guard/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
