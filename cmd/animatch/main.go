package main

import (
	"os"

	"github.com/hachiko/animatch/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
