// Command boatsinker-client connects to a Battleship game server as a
// human-descriptor-driven or bot-driven client, runs as a ShellBot
// child process, or runs the bot tester (spec §4.5, §4.6, §6).
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"math/rand"
	"net"
	"os"
	"time"

	"github.com/sawtelle/boatsinker/internal/bottester"
	"github.com/sawtelle/boatsinker/internal/cliapp"
	"github.com/sawtelle/boatsinker/internal/client"
	"github.com/sawtelle/boatsinker/internal/env"
	"github.com/sawtelle/boatsinker/internal/model"
	"github.com/sawtelle/boatsinker/internal/shellbot"
	"github.com/sawtelle/boatsinker/internal/store"
	"github.com/sawtelle/boatsinker/internal/targeting"
)

func main() {
	cmd := cliapp.ClientCommand(runClient)
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runClient(ctx context.Context, args cliapp.ClientArgs) error {
	switch {
	case args.Test:
		return runBotTester(args)
	case args.Host == "":
		return runShellMode(args)
	default:
		return runNetworkClient(ctx, args)
	}
}

func resolveStrategy(args cliapp.ClientArgs) (targeting.Strategy, error) {
	edgeWeight := env.LoadBotConfig().EdgeWeight
	strat, ok := targeting.ByName(args.Strategy, edgeWeight)
	if !ok {
		return nil, fmt.Errorf("%w: unknown strategy %q", model.ErrInvalidConfig, args.Strategy)
	}
	return strat, nil
}

// runShellMode runs this process as a ShellBot child (spec §4.6):
// an empty host means it is being driven over its own stdin/stdout
// by a parent shellbot.Process, not dialing a server.
func runShellMode(args cliapp.ClientArgs) error {
	strat, err := resolveStrategy(args)
	if err != nil {
		return err
	}
	name := args.Name
	if name == "" {
		name = strat.Name()
	}
	return shellbot.Serve(os.Stdin, os.Stdout, name, strat, args.MSA)
}

func runNetworkClient(ctx context.Context, args cliapp.ClientArgs) error {
	addr := fmt.Sprintf("%s:%d", args.Host, args.Port)
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	logger := log.New(os.Stderr, "", log.LstdFlags)

	bot, err := buildBot(ctx, args)
	if err != nil {
		return err
	}

	driver := client.NewDriver(conn, bot, logger, rng)
	if args.TauntFile != "" {
		hits, misses, err := client.LoadTaunts(args.TauntFile)
		if err != nil {
			return err
		}
		driver.HitTaunts, driver.MissTaunts = hits, misses
	}

	return driver.Run(ctx)
}

func buildBot(ctx context.Context, args cliapp.ClientArgs) (client.Bot, error) {
	name := args.Name
	if name == "" {
		name = "player"
	}

	if args.BotCmd != "" {
		proc, err := shellbot.Start(ctx, args.BotCmd, nil, name)
		if err != nil {
			return nil, fmt.Errorf("start shell bot %s: %w", args.BotCmd, err)
		}
		return proc, nil
	}

	strat, err := resolveStrategy(args)
	if err != nil {
		return nil, err
	}
	return client.StrategyBot{
		BotName:               name,
		Strategy:              strat,
		MinSurfaceAreaPercent: args.MSA,
	}, nil
}

func runBotTester(args cliapp.ClientArgs) error {
	strat, err := resolveStrategy(args)
	if err != nil {
		return err
	}

	var st store.Store
	if args.TestDB != "" {
		fs, err := store.NewFileStore(args.TestDB)
		if err != nil {
			return err
		}
		st = fs
	}

	opts := bottester.Options{
		Strategy: strat,
		Width:    uint(args.Width),
		Height:   uint(args.Height),
		Count:    args.Count,
		MSA:      args.MSA,
	}
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	if args.Watch {
		opts.Watch = func(r bottester.Result) {
			winner := r.Winner
			if winner == "" {
				winner = "draw"
			}
			fmt.Fprintf(out, "match finished: winner=%s turns=%d\n", winner, r.Turns)
			out.Flush()
		}
	}

	results, err := bottester.Run(opts, st)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d matches played\n", len(results))
	return nil
}
