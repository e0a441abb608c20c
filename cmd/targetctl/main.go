package main

import (
	"os"

	"github.com/sebasr/target-manager/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
