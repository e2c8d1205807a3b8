// Command boatsinker-server runs the authoritative Battleship game
// server (spec §4.4, §6).
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sawtelle/boatsinker/internal/cliapp"
	"github.com/sawtelle/boatsinker/internal/gameserver"
	"github.com/sawtelle/boatsinker/internal/model"
	"github.com/sawtelle/boatsinker/internal/store"
)

func main() {
	cmd := cliapp.ServerCommand(runServer)
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServer(ctx context.Context, args cliapp.ServerArgs) error {
	if err := cliapp.ValidateLogLevel(args.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", model.ErrInvalidConfig, err)
	}
	logger, closeLog, err := newLogger(args.LogLevel, args.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, ok := model.ConfigPreset(args.ConfigName)
	if !ok {
		return fmt.Errorf("%w: unknown configuration preset %q", model.ErrInvalidConfig, args.ConfigName)
	}
	if args.Title != "" {
		title := *cfg
		title.Name = args.Title
		cfg = &title
	}

	st, err := store.NewFileStore("boatsinker-data")
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := gameserver.New(cfg, logger, st, gameserver.Options{
		BindAddress:    args.BindAddress,
		Port:           args.Port,
		AutoStart:      args.AutoStart,
		RandomizeOrder: true,
		Repeat:         args.Repeat,
	})
	return srv.ListenAndServe(ctx)
}

func newLogger(level, path string) (*log.Logger, func(), error) {
	var out io.Writer = os.Stderr
	closeFn := func() {}

	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closeFn = func() { f.Close() }
	}
	if level == "silent" {
		out = io.Discard
	}

	return log.New(out, "", log.LstdFlags), closeFn, nil
}
