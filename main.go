package main

import (
	"github.com/dlfarias/teamvault/internal/cli"
)

func main() {
	_ = cli.Execute()
}
