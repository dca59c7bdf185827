package game

import (
	"errors"
	"fmt"

	"snake-matrix/game/manager"
	"snake-matrix/game/types"
)

const (
	// DefaultSide matches the 5x5 LED matrix of the target board.
	DefaultSide = 5
	// DefaultInitialLength is a head plus one body cell.
	DefaultInitialLength = 2
	// minSide keeps room for the starting body and a food cell.
	minSide = 3
)

// Config fixes the field and the tunable rules of a Game.
type Config struct {
	Grid          types.Grid
	InitialLength int
	// ScoreCap ends the round as Won once reached; 0 means only a full field wins.
	ScoreCap int
	Speed    manager.SpeedPolicy
	// PixelsPerCell maps each field cell onto a square block of the display.
	PixelsPerCell int
}

// DefaultConfig is a 5x5 field, two-cell snake, no score cap and one pixel per cell.
func DefaultConfig() Config {
	return Config{
		Grid:          types.Grid{Width: DefaultSide, Height: DefaultSide},
		InitialLength: DefaultInitialLength,
		Speed:         manager.DefaultSpeedPolicy(),
		PixelsPerCell: 1,
	}
}

// Validate reports the first rule the config breaks.
func (c Config) Validate() error {
	if c.Grid.Width < minSide || c.Grid.Height < minSide {
		return fmt.Errorf("grid %dx%d is smaller than %dx%d", c.Grid.Width, c.Grid.Height, minSide, minSide)
	}
	// The body trails left of the centre cell.
	if maxLen := c.Grid.Center().X + 1; c.InitialLength < 1 || c.InitialLength > maxLen {
		return fmt.Errorf("initial length %d outside [1,%d] for width %d", c.InitialLength, maxLen, c.Grid.Width)
	}
	if c.ScoreCap < 0 {
		return fmt.Errorf("score cap %d is negative", c.ScoreCap)
	}
	if c.PixelsPerCell < 1 {
		return fmt.Errorf("pixels per cell %d is below 1", c.PixelsPerCell)
	}
	if c.Speed.Base <= 0 || c.Speed.Min <= 0 || c.Speed.Min > c.Speed.Base || c.Speed.Decrement < 0 {
		return errors.New("speed policy needs 0 < Min <= Base and a non-negative Decrement")
	}
	return nil
}

// initialBody is the head on the centre cell with the body trailing left.
func (c Config) initialBody() []types.Point {
	head := c.Grid.Center()
	body := make([]types.Point, c.InitialLength)
	for i := range body {
		body[i] = types.Point{X: head.X - i, Y: head.Y}
	}
	return body
}
