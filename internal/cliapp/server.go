// Package cliapp is the thin urfave/cli/v3 flag-parsing glue shared by
// cmd/server and cmd/client (spec §6). Command-line argument parsing
// itself is an explicit Non-goal (spec §1 "treat as external
// collaborators"); this package's only job is turning flags into the
// typed options the rest of the module already exposes, not owning
// any domain behavior of its own.
package cliapp

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// ServerArgs is the parsed form of the server CLI table in spec §6.
type ServerArgs struct {
	BindAddress string
	Port        int
	Title       string
	ConfigName  string
	AutoStart   bool
	Repeat      bool
	LogLevel    string
	LogFile     string
}

// ServerCommand builds the `boatsinker-server` command. run is invoked
// once, after flags are parsed, with the resulting ServerArgs.
func ServerCommand(run func(ctx context.Context, args ServerArgs) error) *cli.Command {
	return &cli.Command{
		Name:  "boatsinker-server",
		Usage: "run the Battleship game server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind-address", Aliases: []string{"b"}, Value: "0.0.0.0", Usage: "address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 7948, Usage: "listen port"},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Value: "standard", Usage: "game title"},
			&cli.StringFlag{Name: "config", Value: "standard", Usage: "configuration preset name"},
			&cli.BoolFlag{Name: "auto-start", Usage: "start as soon as max players joined"},
			&cli.BoolFlag{Name: "repeat", Aliases: []string{"r"}, Usage: "run another match after each finish"},
			&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "info", Usage: "log verbosity"},
			&cli.StringFlag{Name: "log-file", Aliases: []string{"f"}, Usage: "path to log to instead of stderr"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, ServerArgs{
				BindAddress: cmd.String("bind-address"),
				Port:        int(cmd.Int("port")),
				Title:       cmd.String("title"),
				ConfigName:  cmd.String("config"),
				AutoStart:   cmd.Bool("auto-start"),
				Repeat:      cmd.Bool("repeat"),
				LogLevel:    cmd.String("log-level"),
				LogFile:     cmd.String("log-file"),
			})
		},
	}
}

// ValidateLogLevel reports whether level is one of the recognized
// verbosities; cmd/server treats an unrecognized level as a
// ConfigError (spec §7).
func ValidateLogLevel(level string) error {
	switch level {
	case "debug", "info", "warn", "error", "silent":
		return nil
	default:
		return fmt.Errorf("unrecognized log level %q", level)
	}
}
