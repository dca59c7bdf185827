package main

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"snake-matrix/game"
	"snake-matrix/game/types"
	"snake-matrix/ui"
)

const (
	BlinkCount    = 3
	BlinkInterval = 200 * time.Millisecond
	ScoreHold     = 2 * time.Second
)

// Display is where the runner draws frames and waits between ticks.
type Display interface {
	Show(m types.Matrix)
	Clear()
	Annotate(info ui.Info)
	// Wait returns ui.ErrQuit when the player leaves and ctx.Err() when
	// ctx ends first.
	Wait(ctx context.Context, d time.Duration) error
	Close() error
}

// TurnSource produces the turn for the next tick, or None to keep going.
type TurnSource interface {
	Turn() types.Direction
}

// finisher is implemented by turn sources that want to see the end of a round.
type finisher interface {
	Finish()
}

// Runner drives one Game round after round: it takes a turn, steps, shows the
// frame and waits the game's step length. When a round ends it blinks the
// last frame, holds the score and starts over.
type Runner struct {
	game    *game.Game
	turns   TurnSource
	display Display
	stats   *GameStats

	Brightness    game.Brightness
	Rounds        int // 0 plays until quit
	BlinkCount    int
	BlinkInterval time.Duration
	ScoreHold     time.Duration
	// MaxIdleTicks abandons a round that goes this long without eating; 0 never does.
	MaxIdleTicks int
	Autoplay     bool
}

func NewRunner(g *game.Game, turns TurnSource, display Display, stats *GameStats) *Runner {
	return &Runner{
		game:          g,
		turns:         turns,
		display:       display,
		stats:         stats,
		Brightness:    game.DefaultBrightness,
		BlinkCount:    BlinkCount,
		BlinkInterval: BlinkInterval,
		ScoreHold:     ScoreHold,
	}
}

// Run plays rounds until ctx ends, the player quits or Rounds are done.
// Quitting is not an error.
func (r *Runner) Run(ctx context.Context) error {
	for round := 1; r.Rounds == 0 || round <= r.Rounds; round++ {
		err := r.playRound(ctx, round)
		switch {
		case err == nil:
		case errors.Is(err, ui.ErrQuit), errors.Is(err, context.Canceled):
			log.Info().Int("round", round).Msg("stopped")
			return nil
		default:
			return err
		}
	}
	return nil
}

func (r *Runner) playRound(ctx context.Context, round int) error {
	id := uuid.New()
	start := time.Now()
	logger := log.With().Str("round_id", id.String()).Int("round", round).Logger()
	logger.Info().Msg("round started")

	res, err := r.play(ctx, round)
	if err != nil {
		return err
	}
	r.stats.AddGame(id, res.outcome, r.game.Score(), r.game.Ticks(), start, time.Now())

	rec, _ := r.stats.Last()
	ev := logger.Info()
	switch {
	case res.abandoned:
		ev = ev.Str("reason", "idle")
	case res.outcome == types.Lost:
		ev = ev.Stringer("collision", r.game.LastCollision())
	}
	ev.Stringer("outcome", rec.Outcome).
		Int("score", rec.Score).
		Int("ticks", rec.Ticks).
		Dur("duration", rec.EndTime.Sub(rec.StartTime)).
		Msg("round finished")

	if err := r.finale(ctx, round, res.outcome); err != nil {
		return err
	}
	r.game.Reset()
	return nil
}

// roundResult is how a round ended. An abandoned round is recorded as lost
// though the engine still reports it ongoing.
type roundResult struct {
	outcome   types.Status
	abandoned bool
}

// play runs ticks until the round is over. Every frame, the final one
// included, is held for the step length before anything else happens.
func (r *Runner) play(ctx context.Context, round int) (roundResult, error) {
	idle, score := 0, r.game.Score()
	for {
		status := r.game.Status()
		r.display.Annotate(r.info(round, status))
		r.display.Show(r.game.GameMatrix(r.Brightness))
		if err := r.display.Wait(ctx, r.game.StepLen()); err != nil {
			return roundResult{outcome: status}, err
		}
		if status != types.Ongoing {
			r.finish()
			return roundResult{outcome: status}, nil
		}
		if r.MaxIdleTicks > 0 && idle >= r.MaxIdleTicks {
			log.Warn().Int("round", round).Int("idle_ticks", idle).Msg("round abandoned")
			r.finish()
			return roundResult{outcome: types.Lost, abandoned: true}, nil
		}

		r.game.Step(r.turns.Turn())
		if r.game.Score() > score {
			score, idle = r.game.Score(), 0
		} else {
			idle++
		}
	}
}

func (r *Runner) finish() {
	if f, ok := r.turns.(finisher); ok {
		f.Finish()
	}
}

// finale blinks the final frame, then shows the score.
func (r *Runner) finale(ctx context.Context, round int, outcome types.Status) error {
	r.display.Annotate(r.info(round, outcome))
	last := r.game.GameMatrix(r.Brightness)
	for i := 0; i < r.BlinkCount; i++ {
		r.display.Clear()
		if err := r.display.Wait(ctx, r.BlinkInterval); err != nil {
			return err
		}
		r.display.Show(last)
		if err := r.display.Wait(ctx, r.BlinkInterval); err != nil {
			return err
		}
	}
	r.display.Clear()
	r.display.Show(r.game.ScoreMatrix())
	return r.display.Wait(ctx, r.ScoreHold)
}

func (r *Runner) info(round int, status types.Status) ui.Info {
	s := r.stats.Summary()
	return ui.Info{
		Round:    round,
		Score:    r.game.Score(),
		Level:    r.game.Level(),
		Status:   status,
		Games:    s.Games,
		Wins:     s.Wins,
		Best:     s.MaxScore,
		Average:  s.AverageScore,
		Autoplay: r.Autoplay,
	}
}
