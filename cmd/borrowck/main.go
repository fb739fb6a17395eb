// Command borrowck checks scenario programs against a region-based borrow
// checker.
//
// Usage:
//
//	borrowck check [-c borrowck.toml] [-w N] [--regions] [--debug] PATH
//	borrowck regions [--debug] PATH
//	borrowck -ll debug check PATH
package main

import (
	"os"

	"github.com/nikomatsakis/borrowck/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args, os.Stdout))
}
