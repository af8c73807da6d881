package main

import (
	"os"

	"cconform/internal/ui/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
