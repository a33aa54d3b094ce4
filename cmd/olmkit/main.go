package main

import (
	"os"

	"olmkit/cmd/olmkit/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
