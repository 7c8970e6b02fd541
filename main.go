package main

import (
	"os"

	"github.com/siegeai/siegeingest/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
