package main

import (
	"os"

	"github.com/semtab/linker/cmd/linker"
)

func main() {
	if err := linker.Execute(); err != nil {
		os.Exit(1)
	}
}
