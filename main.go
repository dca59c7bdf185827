package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"snake-matrix/ai"
	"snake-matrix/game"
	"snake-matrix/ui"
)

const (
	windowWidth  = 800
	windowHeight = 600
	// idleFactor bounds how long the autopilot may wander without eating,
	// in multiples of the field size.
	idleFactor = 4
)

func main() {
	_ = godotenv.Load()

	cfg, err := ParseConfig(os.Args[1:], os.Getenv)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	closeLog, err := setupLogging(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("snake-matrix exited")
		closeLog()
		os.Exit(1)
	}
}

// setupLogging points the global logger at stderr, or at a file. termbox owns
// the terminal, so without a file the terminal display logs nowhere.
func setupLogging(cfg AppConfig) (func() error, error) {
	zerolog.SetGlobalLevel(cfg.LogLevel)

	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	closer := func() error { return nil }
	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f.Close
	case cfg.Display == DisplayTerminal:
		w = io.Discard
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return closer, nil
}

func run(cfg AppConfig) error {
	seed, err := resolveSeed(cfg.Seed)
	if err != nil {
		return err
	}
	gameCfg := cfg.GameConfig()
	log.Info().
		Uint32("seed", seed).
		Str("display", cfg.Display).
		Int("width", cfg.Width).
		Int("height", cfg.Height).
		Int("score_cap", cfg.ScoreCap).
		Bool("autoplay", cfg.Autoplay).
		Str("agent", cfg.Agent).
		Msg("starting snake-matrix")

	g, err := game.NewWithConfig(gameCfg, seed)
	if err != nil {
		return err
	}

	latch := &TurnLatch{}
	var turns TurnSource = latch
	var agent ai.Learner
	if cfg.Train > 0 || cfg.Autoplay {
		if agent, err = ai.NewLearner(cfg.Agent, uint64(seed)); err != nil {
			return fmt.Errorf("autopilot: %w", err)
		}
	}
	if cfg.Train > 0 {
		start := time.Now()
		stats, err := ai.TrainLearner(gameCfg, agent, cfg.Train, seed)
		if err != nil {
			return fmt.Errorf("train autopilot: %w", err)
		}
		log.Info().
			Str("agent", cfg.Agent).
			Int("episodes", stats.Episodes).
			Int("wins", stats.Wins).
			Int("best", stats.BestScore).
			Float64("average", stats.AverageScore).
			Dur("took", time.Since(start)).
			Msg("training finished")
	}
	// A trained agent always takes the controls.
	cfg.Autoplay = agent != nil
	if cfg.Autoplay {
		turns = ai.NewAutopilot(agent, g)
	}

	display, err := openDisplay(cfg, latch)
	if err != nil {
		return err
	}
	defer display.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats := NewGameStats()
	runner := NewRunner(g, turns, display, stats)
	runner.Rounds = cfg.Rounds
	runner.Autoplay = cfg.Autoplay
	if cfg.Autoplay {
		runner.MaxIdleTicks = idleFactor * g.Grid().Cells()
	}
	if err := runner.Run(ctx); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	s := stats.Summary()
	log.Info().
		Int("games", s.Games).
		Int("wins", s.Wins).
		Int("best", s.MaxScore).
		Float64("average", s.AverageScore).
		Float64("median", s.MedianScore).
		Float64("avg_duration_s", s.AverageDuration).
		Msg("session finished")
	return nil
}

func openDisplay(cfg AppConfig, sink ui.TurnSink) (Display, error) {
	if cfg.Display == DisplayTerminal {
		t, err := ui.NewTerminal(sink)
		if err != nil {
			return nil, fmt.Errorf("open terminal: %w", err)
		}
		return t, nil
	}
	return ui.NewWindow(windowWidth, windowHeight, "Snake Matrix", sink), nil
}
