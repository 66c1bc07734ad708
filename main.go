package main

import (
	"os"

	"github.com/guilhermexp/memoria/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
