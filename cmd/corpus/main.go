package main

import (
	"os"

	"github.com/orbital-labs/corpus-cli/internal/adapters/driving/cli"
)

func main() {
	os.Exit(cli.Execute())
}
