package main

import (
	"os"

	"github.com/autoride/autoride/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
