package main

import (
	"os"

	"github.com/thruflo/brigadier/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
