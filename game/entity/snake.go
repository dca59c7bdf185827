package entity

import (
	"fmt"

	"snake-matrix/game/types"
)

// Snake is the body of the player, head first. Cells live in a ring buffer
// sized to the grid, so the body never reallocates and can never outgrow
// the field. occupied mirrors the ring for constant-time lookups.
type Snake struct {
	Direction types.Direction

	grid     types.Grid
	cells    []types.Point
	occupied []bool
	head     int
	length   int
}

// NewSnake builds a snake from body (head first) moving in dir.
// The body must be on the grid, contiguous and free of repeats.
func NewSnake(grid types.Grid, body []types.Point, dir types.Direction) *Snake {
	if len(body) == 0 || len(body) > grid.Cells() {
		panic(fmt.Sprintf("entity: snake of length %d on %dx%d grid", len(body), grid.Width, grid.Height))
	}
	s := &Snake{
		Direction: dir,
		grid:      grid,
		cells:     make([]types.Point, grid.Cells()),
		occupied:  make([]bool, grid.Cells()),
	}
	for i, p := range body {
		idx := grid.Index(p)
		if s.occupied[idx] {
			panic(fmt.Sprintf("entity: body repeats cell %v", p))
		}
		if i > 0 && p.Manhattan(body[i-1]) != 1 {
			panic(fmt.Sprintf("entity: body cells %v and %v are not adjacent", body[i-1], p))
		}
		s.cells[i] = p
		s.occupied[idx] = true
	}
	s.length = len(body)
	return s
}

// Len returns the number of body cells.
func (s *Snake) Len() int {
	return s.length
}

// Free returns how many grid cells the body does not cover.
func (s *Snake) Free() int {
	return s.grid.Cells() - s.length
}

// At returns the i-th body cell, 0 being the head.
func (s *Snake) At(i int) types.Point {
	if i < 0 || i >= s.length {
		panic(fmt.Sprintf("entity: body index %d out of range [0,%d)", i, s.length))
	}
	return s.cells[(s.head+i)%len(s.cells)]
}

func (s *Snake) GetHead() types.Point {
	return s.At(0)
}

func (s *Snake) GetTail() types.Point {
	return s.At(s.length - 1)
}

// Body returns a copy of the body, head first.
func (s *Snake) Body() []types.Point {
	body := make([]types.Point, s.length)
	for i := range body {
		body[i] = s.At(i)
	}
	return body
}

// Contains reports whether p is one of the body cells.
func (s *Snake) Contains(p types.Point) bool {
	if !s.grid.Contains(p) {
		return false
	}
	return s.occupied[s.grid.Index(p)]
}

// SetDirection changes the heading. None and 180-degree reversals are
// ignored; the return value tells whether the heading was applied.
func (s *Snake) SetDirection(dir types.Direction) bool {
	if dir == types.None || dir == s.Direction.Opposite() {
		return false
	}
	s.Direction = dir
	return true
}

// NextHead returns the cell the head moves into on the current heading.
func (s *Snake) NextHead() types.Point {
	return s.GetHead().Step(s.Direction)
}

// Move prepends newHead. Without grow the tail cell is released first, so
// the head may take the cell the tail leaves.
func (s *Snake) Move(newHead types.Point, grow bool) {
	idx := s.grid.Index(newHead)
	if grow {
		if s.length == len(s.cells) {
			panic("entity: snake cannot grow past the grid")
		}
		s.length++
	} else {
		s.occupied[s.grid.Index(s.GetTail())] = false
	}
	s.head = (s.head - 1 + len(s.cells)) % len(s.cells)
	s.cells[s.head] = newHead
	s.occupied[idx] = true
}
