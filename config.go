package main

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"snake-matrix/ai"
	"snake-matrix/game"
	"snake-matrix/game/types"
)

const (
	DisplayWindow   = "window"
	DisplayTerminal = "terminal"
)

// AppConfig is everything main needs, from flags with environment defaults.
type AppConfig struct {
	Display  string
	Width    int
	Height   int
	Scale    int
	Seed     uint32
	ScoreCap int
	Autoplay bool
	Agent    string
	Train    int
	Rounds   int
	LogLevel zerolog.Level
	LogFile  string
}

// GameConfig turns the app settings into engine rules.
func (c AppConfig) GameConfig() game.Config {
	cfg := game.DefaultConfig()
	cfg.Grid = types.Grid{Width: c.Width, Height: c.Height}
	cfg.ScoreCap = c.ScoreCap
	cfg.PixelsPerCell = c.Scale
	return cfg
}

// ParseConfig reads flags from args; getenv supplies the defaults.
func ParseConfig(args []string, getenv func(string) string) (AppConfig, error) {
	env := envLookup{getenv: getenv}

	fs := flag.NewFlagSet("snake-matrix", flag.ContinueOnError)
	display := fs.String("display", env.String("SNAKE_DISPLAY", DisplayWindow), "window or terminal")
	width := fs.Int("width", env.Int("SNAKE_WIDTH", game.DefaultSide), "field width in cells")
	height := fs.Int("height", env.Int("SNAKE_HEIGHT", game.DefaultSide), "field height in cells")
	scale := fs.Int("scale", env.Int("SNAKE_SCALE", 1), "display pixels per cell")
	seed := fs.String("seed", env.String("SNAKE_SEED", "0"), "random seed in [0, 4294967295], 0 picks one")
	scoreCap := fs.Int("score-cap", env.Int("SNAKE_SCORE_CAP", 0), "score that wins a round, 0 for none")
	autoplay := fs.Bool("autoplay", env.Bool("SNAKE_AUTOPLAY", false), "let the autopilot play")
	agent := fs.String("agent", env.String("SNAKE_AGENT", ai.AgentQTable), "autopilot learner: qtable or dqn")
	train := fs.Int("train", env.Int("SNAKE_TRAIN", 0), "headless training rounds before playing")
	rounds := fs.Int("rounds", env.Int("SNAKE_ROUNDS", 0), "rounds to play, 0 until quit")
	logLevel := fs.String("log-level", env.String("LOG_LEVEL", "info"), "log level")
	logFile := fs.String("log-file", env.String("SNAKE_LOG_FILE", ""), "write logs to this file")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, fmt.Errorf("parse flags: %w", err)
	}
	if env.err != nil {
		return AppConfig{}, env.err
	}

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		return AppConfig{}, fmt.Errorf("log level: %w", err)
	}
	seedValue, err := parseSeed(*seed)
	if err != nil {
		return AppConfig{}, err
	}

	cfg := AppConfig{
		Display:  *display,
		Width:    *width,
		Height:   *height,
		Scale:    *scale,
		Seed:     seedValue,
		ScoreCap: *scoreCap,
		Autoplay: *autoplay,
		Agent:    *agent,
		Train:    *train,
		Rounds:   *rounds,
		LogLevel: level,
		LogFile:  *logFile,
	}
	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func (c AppConfig) validate() error {
	if c.Display != DisplayWindow && c.Display != DisplayTerminal {
		return fmt.Errorf("display %q is not %s or %s", c.Display, DisplayWindow, DisplayTerminal)
	}
	if c.Agent != ai.AgentQTable && c.Agent != ai.AgentDQN {
		return fmt.Errorf("agent %q is not %s or %s", c.Agent, ai.AgentQTable, ai.AgentDQN)
	}
	if c.Train < 0 || c.Rounds < 0 {
		return errors.New("train and rounds must not be negative")
	}
	if err := c.GameConfig().Validate(); err != nil {
		return fmt.Errorf("game: %w", err)
	}
	return nil
}

// envLookup parses environment defaults and keeps the first bad value.
type envLookup struct {
	getenv func(string) string
	err    error
}

func (e *envLookup) String(key, def string) string {
	if v := e.getenv(key); v != "" {
		return v
	}
	return def
}

func (e *envLookup) Int(key string, def int) int {
	v := e.getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (e *envLookup) Bool(key string, def bool) bool {
	v := e.getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

func (e *envLookup) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

// parseSeed accepts exactly the 32-bit range the engine takes; anything else
// is an error rather than a silently wrapped value.
func parseSeed(v string) (uint32, error) {
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("seed %q: %w", v, err)
	}
	return uint32(n), nil
}

// randomSeed draws a seed from the OS when none was configured.
func randomSeed() (uint32, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// resolveSeed keeps a configured seed and draws one otherwise.
func resolveSeed(seed uint32) (uint32, error) {
	if seed != 0 {
		return seed, nil
	}
	return randomSeed()
}
