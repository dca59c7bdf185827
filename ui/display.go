// Package ui holds the displays the game loop draws on: a raylib window that
// mimics an LED matrix and a termbox view for plain terminals.
package ui

import (
	"errors"

	"snake-matrix/game/types"
)

// ErrQuit is returned by Wait once the player asked to leave.
var ErrQuit = errors.New("ui: quit requested")

// TurnSink receives turns from key presses. The loop reads them back later.
type TurnSink interface {
	Set(d types.Direction)
}

// Info is the text shown next to the matrix.
type Info struct {
	Round    int
	Score    int
	Level    int
	Status   types.Status
	Games    int
	Wins     int
	Best     int
	Average  float64
	Autoplay bool
}
