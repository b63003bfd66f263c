package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"github.com/peterkuimelis/evogame/internal/config"
	"github.com/peterkuimelis/evogame/internal/game"
	"github.com/peterkuimelis/evogame/internal/log"
	"github.com/peterkuimelis/evogame/internal/strategy"
	"github.com/peterkuimelis/evogame/internal/telemetry"
	"github.com/peterkuimelis/evogame/internal/view"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error
	switch cmd {
	case "play":
		err = runPlay(os.Args[2:])
	case "sim":
		err = runSim(os.Args[2:])
	case "cards":
		err = runCards(os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  evogame play  [--config FILE] [--players A,B,C] [--seed N] [--lua FILE]")
	fmt.Println("  evogame sim   [--config FILE] [--games N] [--seed N] [--lua FILE]")
	fmt.Println("  evogame cards [--config FILE] [--cards FILE]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  play    Play one game between computer players and print the log")
	fmt.Println("  sim     Play many seeded games and print win statistics")
	fmt.Println("  cards   List the card catalogue")
}

// setup builds the game config shared by play and sim.
func setup(cfg config.Config) (game.Config, error) {
	gc, err := cfg.GameConfig()
	if err != nil {
		return gc, err
	}
	if cfg.LuaScript != "" {
		lp, err := strategy.LoadLuaProvider(cfg.LuaScript)
		if err != nil {
			return gc, err
		}
		gc.Providers = make([]game.DecisionProvider, len(gc.Players))
		for i := range gc.Providers {
			gc.Providers[i] = lp
		}
	}
	return gc, nil
}

func withTelemetry(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) func() {
	shutdown, err := telemetry.Setup(ctx, "evogame-cli", cfg.OTLPEndpoint)
	if err != nil {
		logger.WithError(err).Warn("tracing disabled")
		return func() {}
	}
	return func() {
		if err := shutdown(context.Background()); err != nil {
			logger.WithError(err).Warn("flush traces")
		}
	}
}

func runPlay(args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	quiet := fs.Bool("quiet", false, "print only the result")
	cfg, err := config.Parse(fs, args)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer withTelemetry(ctx, cfg, logger)()

	gc, err := setup(cfg)
	if err != nil {
		return err
	}
	if gc.Seed == 0 {
		gc.Seed = game.NewSeed()
	}
	if !*quiet {
		gc.Logger = log.NewTextLogger(os.Stdout)
	}
	g, err := game.NewGame(gc)
	if err != nil {
		return err
	}
	logger.WithField("seed", g.Seed).Info(cfg.Summary())

	res, err := g.PlayToCompletion(ctx, cfg.MaxRounds)
	if err != nil {
		return err
	}
	printResult(view.Result(res), g.Seed)
	return nil
}

func printResult(res view.ResultView, seed int64) {
	fmt.Println()
	if res.WinnerName != "" {
		fmt.Printf("Winner: %s (%s) after %d rounds, seed %d\n", res.WinnerName, res.Reason, res.Rounds, seed)
	} else {
		fmt.Printf("No winner (%s) after %d rounds, seed %d\n", res.Reason, res.Rounds, seed)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SEAT\tNAME\tEVOLUTION\tPOINTS\tABILITIES\t")
	for _, s := range res.Standings {
		name := s.Name
		if s.Eliminated {
			name += " (out)"
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\t\n", s.Seat, name, s.Evolution, s.Points, strings.Join(s.Abilities, ", "))
	}
	w.Flush()
}

func runSim(args []string) error {
	fs := flag.NewFlagSet("sim", flag.ExitOnError)
	games := fs.Int("games", 100, "number of games to play")
	cfg, err := config.Parse(fs, args)
	if err != nil {
		return err
	}
	if *games <= 0 {
		return fmt.Errorf("games must be positive, got %d", *games)
	}
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer withTelemetry(ctx, cfg, logger)()

	base := cfg.Seed
	if base == 0 {
		base = game.NewSeed()
	}
	wins := make([]int, len(cfg.Players))
	var noWinner, totalRounds int
	for i := 0; i < *games; i++ {
		gc, err := setup(cfg)
		if err != nil {
			return err
		}
		gc.Seed = base + int64(i)
		g, err := game.NewGame(gc)
		if err != nil {
			return err
		}
		res, err := g.PlayToCompletion(ctx, cfg.MaxRounds)
		if err != nil {
			return fmt.Errorf("game %d (seed %d): %w", i, gc.Seed, err)
		}
		totalRounds += res.Rounds
		if res.Winner == game.NoTarget {
			noWinner++
		} else {
			wins[res.Winner]++
		}
		logger.WithFields(logrus.Fields{
			"game":   i,
			"seed":   gc.Seed,
			"winner": res.WinnerName,
			"rounds": res.Rounds,
		}).Debug("game finished")
	}

	fmt.Printf("%d games, seeds %d-%d, average %.1f rounds\n",
		*games, base, base+int64(*games)-1, float64(totalRounds)/float64(*games))
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SEAT\tNAME\tWINS\tRATE\t")
	for i, name := range cfg.Players {
		fmt.Fprintf(w, "%d\t%s\t%d\t%.1f%%\t\n", i, name, wins[i], 100*float64(wins[i])/float64(*games))
	}
	fmt.Fprintf(w, "-\tno winner\t%d\t%.1f%%\t\n", noWinner, 100*float64(noWinner)/float64(*games))
	return w.Flush()
}

func runCards(args []string) error {
	fs := flag.NewFlagSet("cards", flag.ExitOnError)
	cfg, err := config.Parse(fs, args)
	if err != nil {
		return err
	}
	gc, err := cfg.GameConfig()
	if err != nil {
		return err
	}
	cat := game.StandardCatalogue()
	if gc.Catalogue != nil {
		cat = *gc.Catalogue
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tNAME\tCOUNT\tDESCRIPTION\t")
	for _, c := range view.Catalogue(cat) {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t\n", c.Kind, c.Name, c.Count, c.Description)
	}
	return w.Flush()
}
