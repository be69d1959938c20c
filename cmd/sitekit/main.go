package main

import (
	"os"

	"github.com/hashicorp-forge/sitekit/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
