package entity

import (
	"reflect"
	"testing"

	"snake-matrix/game/types"
)

var grid5 = types.Grid{Width: 5, Height: 5}

func TestNewSnakeBody(t *testing.T) {
	s := NewSnake(grid5, []types.Point{{X: 2, Y: 2}, {X: 1, Y: 2}}, types.Right)
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if s.GetHead() != (types.Point{X: 2, Y: 2}) || s.GetTail() != (types.Point{X: 1, Y: 2}) {
		t.Errorf("head/tail = %v/%v", s.GetHead(), s.GetTail())
	}
	if s.Free() != 23 {
		t.Errorf("Free() = %d, want 23", s.Free())
	}
	if !s.Contains(types.Point{X: 1, Y: 2}) || s.Contains(types.Point{X: 3, Y: 2}) {
		t.Error("Contains disagrees with the body")
	}
	if s.Contains(types.Point{X: -1, Y: 2}) {
		t.Error("Contains should be false off the grid")
	}
}

func TestNewSnakeRejectsBrokenBody(t *testing.T) {
	cases := map[string][]types.Point{
		"empty":    {},
		"gap":      {{X: 2, Y: 2}, {X: 0, Y: 2}},
		"repeat":   {{X: 2, Y: 2}, {X: 1, Y: 2}, {X: 2, Y: 2}},
		"off grid": {{X: 0, Y: 0}, {X: -1, Y: 0}},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("expected panic for body %v", body)
				}
			}()
			NewSnake(grid5, body, types.Right)
		})
	}
}

func TestSetDirectionRejectsReversal(t *testing.T) {
	s := NewSnake(grid5, []types.Point{{X: 2, Y: 2}, {X: 1, Y: 2}}, types.Right)
	if s.SetDirection(types.Left) {
		t.Error("reversal was applied")
	}
	if s.SetDirection(types.None) {
		t.Error("None was applied")
	}
	if s.Direction != types.Right {
		t.Fatalf("Direction = %v, want right", s.Direction)
	}
	if !s.SetDirection(types.Up) || s.Direction != types.Up {
		t.Errorf("quarter turn not applied, Direction = %v", s.Direction)
	}
}

func TestMoveShiftsBody(t *testing.T) {
	s := NewSnake(grid5, []types.Point{{X: 2, Y: 2}, {X: 1, Y: 2}, {X: 0, Y: 2}}, types.Right)
	s.Move(types.Point{X: 3, Y: 2}, false)

	want := []types.Point{{X: 3, Y: 2}, {X: 2, Y: 2}, {X: 1, Y: 2}}
	if got := s.Body(); !reflect.DeepEqual(got, want) {
		t.Errorf("Body() = %v, want %v", got, want)
	}
	if s.Contains(types.Point{X: 0, Y: 2}) {
		t.Error("old tail still occupied")
	}
}

func TestMoveGrows(t *testing.T) {
	s := NewSnake(grid5, []types.Point{{X: 2, Y: 2}, {X: 1, Y: 2}}, types.Right)
	s.Move(types.Point{X: 3, Y: 2}, true)

	want := []types.Point{{X: 3, Y: 2}, {X: 2, Y: 2}, {X: 1, Y: 2}}
	if got := s.Body(); !reflect.DeepEqual(got, want) {
		t.Errorf("Body() = %v, want %v", got, want)
	}
}

func TestMoveIntoVacatedTail(t *testing.T) {
	// A 2x2 loop: the head chases the tail around the square.
	s := NewSnake(grid5, []types.Point{{X: 1, Y: 0}, {X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}, types.Down)
	s.Move(types.Point{X: 1, Y: 1}, false)

	want := []types.Point{{X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}, {X: 0, Y: 1}}
	if got := s.Body(); !reflect.DeepEqual(got, want) {
		t.Errorf("Body() = %v, want %v", got, want)
	}
	if !s.Contains(types.Point{X: 1, Y: 1}) {
		t.Error("head cell lost its occupancy")
	}
}

func TestRingWrapsManyTimes(t *testing.T) {
	grid := types.Grid{Width: 3, Height: 3}
	s := NewSnake(grid, []types.Point{{X: 1, Y: 0}, {X: 0, Y: 0}}, types.Right)
	loop := []types.Point{{X: 2, Y: 0}, {X: 2, Y: 1}, {X: 2, Y: 2}, {X: 1, Y: 2}, {X: 0, Y: 2}, {X: 0, Y: 1}, {X: 0, Y: 0}, {X: 1, Y: 0}}
	for i := 0; i < 5*len(loop); i++ {
		s.Move(loop[i%len(loop)], false)
		if s.Len() != 2 {
			t.Fatalf("length changed to %d", s.Len())
		}
		if s.GetHead().Manhattan(s.GetTail()) != 1 {
			t.Fatalf("body split: %v", s.Body())
		}
	}
	occupied := 0
	for i := 0; i < grid.Cells(); i++ {
		if s.Contains(grid.PointAt(i)) {
			occupied++
		}
	}
	if occupied != 2 {
		t.Errorf("occupancy table marks %d cells, want 2", occupied)
	}
}

func TestGrowPastGridPanics(t *testing.T) {
	grid := types.Grid{Width: 2, Height: 1}
	s := NewSnake(grid, []types.Point{{X: 0, Y: 0}, {X: 1, Y: 0}}, types.Left)
	defer func() {
		if recover() == nil {
			t.Error("expected panic when growing a full snake")
		}
	}()
	s.Move(types.Point{X: 1, Y: 0}, true)
}
