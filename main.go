package main

import (
	"os"

	"github.com/galaxykit/rolefix/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
