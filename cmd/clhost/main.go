package main

import (
	"os"

	"github.com/tsawler/go-clhost/cmd/clhost/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
