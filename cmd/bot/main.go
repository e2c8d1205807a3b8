// Command boatsinker-bot is a standalone ShellBot child process (spec
// §4.6): it speaks the wire protocol over its own stdin/stdout and is
// meant to be launched by a parent client via "--bot <path>", or
// directly for conformance testing.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/sawtelle/boatsinker/internal/env"
	"github.com/sawtelle/boatsinker/internal/model"
	"github.com/sawtelle/boatsinker/internal/shellbot"
	"github.com/sawtelle/boatsinker/internal/targeting"
)

func main() {
	cmd := &cli.Command{
		Name:  "boatsinker-bot",
		Usage: "run a ShellBot child process over stdin/stdout",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"u", "n"}, Usage: "player name"},
			&cli.StringFlag{Name: "strategy", Value: "heuristic", Usage: "random|parity|heuristic|placement|skipper"},
			&cli.FloatFlag{Name: "msa", Value: 60, Usage: "min-surface-area ratio for random boards (0..100)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			strat, ok := targeting.ByName(cmd.String("strategy"), env.LoadBotConfig().EdgeWeight)
			if !ok {
				return fmt.Errorf("%w: unknown strategy %q", model.ErrInvalidConfig, cmd.String("strategy"))
			}
			name := cmd.String("name")
			if name == "" {
				name = strat.Name()
			}
			return shellbot.Serve(os.Stdin, os.Stdout, name, strat, cmd.Float("msa"))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
