// Package main is the entry point for the create-mderic-boilerplates CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/muhammadderic/create-mderic-boilerplates/internal/scaffold/commands"
)

var (
	version = "1.0.0"
	commit  = "dev"
)

func main() {
	commands.Version = fmt.Sprintf("%s (%s)", version, commit)
	os.Exit(commands.Execute())
}
