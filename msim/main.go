// Command msim simulates a physical precious-metals savings plan.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/metalsim/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	// Shell completion: exits early when invoked by the shell.
	completion().Complete("msim")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// completion describes the CLI surface for shell completion.
func completion() *complete.Command {
	sub := make(map[string]*complete.Command, len(cmd.Commands))
	for _, c := range cmd.Commands {
		sub[c.Name()] = &complete.Command{}
	}
	return &complete.Command{
		Sub: sub,
		Flags: map[string]complete.Predictor{
			"prices":    predict.Files("*.csv"),
			"inflation": predict.Files("*.csv"),
			"v":         predict.Nothing,
		},
	}
}
