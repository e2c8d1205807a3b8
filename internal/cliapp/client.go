package cliapp

import (
	"context"

	"github.com/urfave/cli/v3"
)

// ClientArgs is the parsed form of the client/bot CLI table in spec
// §6. An empty Host signals "bot shell mode" (Port is not consulted):
// the process runs as a ShellBot child instead of dialing a server.
type ClientArgs struct {
	Host string
	Port int

	Name string

	StaticBoard string
	MSA         float64

	TauntFile string

	BotCmd string

	// Strategy names one of targeting.ByName's built-in bot variants,
	// used in bot-shell mode, the bot tester, and as the normal-client
	// bot when --bot is not given. Not part of the original CLI table
	// (spec §6 leaves built-in strategy selection implicit); added so
	// a single binary can expose more than one bot variant.
	Strategy string

	Test    bool
	Count   int
	Width   int
	Height  int
	TestDB  string
	Watch   bool

	Debug bool
}

// ClientCommand builds the `boatsinker-client` command.
func ClientCommand(run func(ctx context.Context, args ClientArgs) error) *cli.Command {
	return &cli.Command{
		Name:  "boatsinker-client",
		Usage: "connect to a Battleship game server, or run as a ShellBot child process",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Aliases: []string{"h"}, Usage: "server host (bot shell mode if absent)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 7948, Usage: "server port"},
			&cli.StringFlag{Name: "name", Aliases: []string{"u", "n"}, Usage: "player name"},
			&cli.StringFlag{Name: "static-board", Aliases: []string{"s"}, Usage: "use a given descriptor instead of a random board"},
			&cli.FloatFlag{Name: "msa", Value: 60, Usage: "min-surface-area ratio for random boards (0..100)"},
			&cli.StringFlag{Name: "taunt-file", Aliases: []string{"t"}, Usage: "key=value file with hit/miss taunts"},
			&cli.StringFlag{Name: "bot", Usage: "run a shell-bot as a child process by path"},
			&cli.StringFlag{Name: "strategy", Value: "heuristic", Usage: "built-in bot variant: random|parity|heuristic|placement|skipper"},
			&cli.BoolFlag{Name: "test", Usage: "run the bot tester instead of a single match"},
			&cli.IntFlag{Name: "count", Aliases: []string{"c"}, Value: 1, Usage: "bot tester: number of matches"},
			&cli.IntFlag{Name: "width", Aliases: []string{"x"}, Value: 10, Usage: "bot tester: board width"},
			&cli.IntFlag{Name: "height", Aliases: []string{"y"}, Value: 10, Usage: "bot tester: board height"},
			&cli.StringFlag{Name: "test-db", Aliases: []string{"d"}, Usage: "bot tester: database home directory"},
			&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "bot tester: print each match's outcome as it finishes"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug mode"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, ClientArgs{
				Host:        cmd.String("host"),
				Port:        int(cmd.Int("port")),
				Name:        cmd.String("name"),
				StaticBoard: cmd.String("static-board"),
				MSA:         cmd.Float("msa"),
				TauntFile:   cmd.String("taunt-file"),
				BotCmd:      cmd.String("bot"),
				Strategy:    cmd.String("strategy"),
				Test:        cmd.Bool("test"),
				Count:       int(cmd.Int("count")),
				Width:       int(cmd.Int("width")),
				Height:      int(cmd.Int("height")),
				TestDB:      cmd.String("test-db"),
				Watch:       cmd.Bool("watch"),
				Debug:       cmd.Bool("debug"),
			})
		},
	}
}
