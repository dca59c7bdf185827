// Package game is the snake engine: a deterministic, I/O-free simulation
// advanced one tick at a time by an outer loop that owns input, display and
// pacing.
package game

import (
	"fmt"
	"time"

	"snake-matrix/game/entity"
	"snake-matrix/game/manager"
	"snake-matrix/game/types"
)

// Game is one playing field. It is not safe for concurrent use; the loop
// that drives it owns it.
type Game struct {
	cfg           Config
	snake         *entity.Snake
	collisionMgr  *manager.CollisionManager
	foodMgr       *manager.FoodManager
	stateMgr      *manager.StateManager
	ticks         int
	lastCollision types.CollisionType
}

// New creates a game on the default 5x5 field. Any seed, including 0, is valid.
func New(seed uint32) *Game {
	g, err := NewWithConfig(DefaultConfig(), seed)
	if err != nil {
		panic(fmt.Sprintf("game: default config rejected: %v", err))
	}
	return g
}

// NewWithConfig creates a game with custom rules.
func NewWithConfig(cfg Config, seed uint32) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("game config: %w", err)
	}
	g := &Game{
		cfg:          cfg,
		collisionMgr: manager.NewCollisionManager(cfg.Grid),
		foodMgr:      manager.NewFoodManager(cfg.Grid, seed),
		stateMgr:     manager.NewStateManager(cfg.Speed, cfg.ScoreCap),
	}
	g.place()
	return g, nil
}

// Reset starts a new round in place. The random stream carries on from
// where the last round left it rather than being reseeded.
func (g *Game) Reset() {
	g.stateMgr.Reset()
	g.place()
}

func (g *Game) place() {
	g.snake = entity.NewSnake(g.cfg.Grid, g.cfg.initialBody(), types.Right)
	g.ticks = 0
	g.lastCollision = types.NoCollision
	if _, ok := g.foodMgr.Place(g.snake); !ok {
		// Validate leaves free cells next to the starting body.
		panic("game: no free cell for the first food")
	}
}

// Step advances the round by one tick. turn is applied unless it is None
// or reverses the heading. Once the round is over Step does nothing.
func (g *Game) Step(turn types.Direction) {
	if g.stateMgr.Status() != types.Ongoing {
		return
	}

	g.snake.SetDirection(turn)
	newHead := g.snake.NextHead()

	if c := g.collisionMgr.CheckCollision(newHead, g.snake); c != types.NoCollision {
		g.lastCollision = c
		g.stateMgr.Lose()
		return
	}
	g.ticks++

	food, ok := g.foodMgr.Food()
	if !ok || !g.collisionMgr.IsFoodCollision(newHead, food) {
		g.snake.Move(newHead, false)
		return
	}

	g.snake.Move(newHead, true)
	if g.stateMgr.Eat() {
		g.foodMgr.Clear()
		g.stateMgr.Win()
		return
	}
	if _, placed := g.foodMgr.Place(g.snake); !placed {
		g.stateMgr.Win()
	}
}

// Status returns the round state.
func (g *Game) Status() types.Status {
	return g.stateMgr.Status()
}

func (g *Game) Score() int {
	return g.stateMgr.Score()
}

// Level returns the current speed level, starting at 1.
func (g *Game) Level() int {
	return g.stateMgr.Level()
}

// StepLen is the delay the loop should wait between ticks.
func (g *Game) StepLen() time.Duration {
	return g.stateMgr.StepLen()
}

// StepLenMs is StepLen in whole milliseconds.
func (g *Game) StepLenMs() uint32 {
	return uint32(g.StepLen() / time.Millisecond)
}

func (g *Game) Grid() types.Grid {
	return g.cfg.Grid
}

func (g *Game) Head() types.Point {
	return g.snake.GetHead()
}

func (g *Game) Heading() types.Direction {
	return g.snake.Direction
}

// Body returns a copy of the snake, head first.
func (g *Game) Body() []types.Point {
	return g.snake.Body()
}

func (g *Game) Length() int {
	return g.snake.Len()
}

// Food returns the food cell; there is none after the field fills up.
func (g *Game) Food() (types.Point, bool) {
	return g.foodMgr.Food()
}

// Ticks counts the moves made this round.
func (g *Game) Ticks() int {
	return g.ticks
}

// LastCollision tells what ended a lost round.
func (g *Game) LastCollision() types.CollisionType {
	return g.lastCollision
}

// IsDanger reports whether the head moving into p next tick would lose the round.
func (g *Game) IsDanger(p types.Point) bool {
	return g.collisionMgr.IsDanger(p, g.snake)
}
