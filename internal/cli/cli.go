// Package cli implements the borrowck command line.
package cli

import (
	"io"
	"strconv"

	"github.com/ComedicChimera/olive"
	"github.com/pkg/errors"

	"github.com/nikomatsakis/borrowck/internal/config"
	"github.com/nikomatsakis/borrowck/internal/report"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailed  = 1
	ExitFailure = 2
)

// Execute runs the command line in args (args[0] is the program name) and
// returns the process exit code.
func Execute(args []string, stdout io.Writer) int {
	printer := report.New(stdout)

	cli := olive.NewCLI("borrowck", "borrowck checks scenario programs against a region-based borrow checker", true)
	cli.AddSelectorArg("loglevel", "ll", "the log level", false, config.LogLevels)

	checkCmd := cli.AddSubcommand("check", "check scenarios and report OK, FAIL or ERROR for each", true)
	checkCmd.AddPrimaryArg("path", "a scenario file or a directory of them", true)
	checkCmd.AddStringArg("config", "c", "the config file (default borrowck.toml)", false)
	checkCmd.AddStringArg("workers", "w", "how many scenarios are checked at once", false)
	checkCmd.AddFlag("regions", "r", "dump region values after the summary")
	checkCmd.AddFlag("debug", "d", "dump every access/loan comparison of reported conflicts")
	checkCmd.AddFlag("nocolor", "nc", "print without terminal colors")

	regionsCmd := cli.AddSubcommand("regions", "dump region values and conflicts of each scenario", true)
	regionsCmd.AddPrimaryArg("path", "a scenario file or a directory of them", true)
	regionsCmd.AddFlag("debug", "d", "dump every access/loan comparison of reported conflicts")
	regionsCmd.AddFlag("nocolor", "nc", "print without terminal colors")

	result, err := olive.ParseArgs(cli, args)
	if err != nil {
		printer.Error("CLI Usage Error", err)
		return ExitFailure
	}

	opts := Options{}
	if lvl, ok := result.Arguments["loglevel"]; ok {
		opts.LogLevel = lvl.(string)
	}

	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "check":
		opts.Path, _ = subResult.PrimaryArg()
		if c, ok := subResult.Arguments["config"]; ok {
			opts.ConfigPath = c.(string)
		}
		if w, ok := subResult.Arguments["workers"]; ok {
			n, err := strconv.Atoi(w.(string))
			if err != nil || n < 1 {
				printer.Error("CLI Usage Error", errors.Errorf("workers must be a positive number, got %q", w))
				return ExitFailure
			}
			opts.Workers = n
		}
		opts.Regions = subResult.HasFlag("regions")
		opts.Debug = subResult.HasFlag("debug")
		opts.NoColor = subResult.HasFlag("nocolor")
		return Check(opts, stdout)
	case "regions":
		opts.Path, _ = subResult.PrimaryArg()
		opts.Debug = subResult.HasFlag("debug")
		opts.NoColor = subResult.HasFlag("nocolor")
		return Regions(opts, stdout)
	}
	printer.Error("CLI Usage Error", errors.New("expected a subcommand: check or regions"))
	return ExitFailure
}
