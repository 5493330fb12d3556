// Command folio displays and publishes a live portfolio valuation.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/saudanwar3/portfolio/cmd"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, "folio")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	completion().Complete("folio")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// completion describes the command line for shell completion.
func completion() *complete.Command {
	currency := predict.Set{"USD", "EUR", "GBP", "JPY", "CHF"}
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"config": predict.Files("*.yaml"),
			"url":    predict.Nothing,
			"file":   predict.Files("*.json"),
			"v":      predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"show": {
				Flags: map[string]complete.Predictor{
					"c":       currency,
					"timeout": predict.Nothing,
					"raw":     predict.Nothing,
					"json":    predict.Nothing,
				},
			},
			"watch": {
				Flags: map[string]complete.Predictor{
					"c":   currency,
					"n":   predict.Nothing,
					"raw": predict.Nothing,
				},
			},
			"serve": {
				Flags: map[string]complete.Predictor{
					"addr": predict.Nothing,
					"c":    currency,
				},
			},
			"help":     {},
			"flags":    {},
			"commands": {},
		},
	}
}
