package types

import "fmt"

// Grid represents the game grid dimensions
type Grid struct {
	Width  int
	Height int
}

// Cells returns the number of cells on the grid.
func (g Grid) Cells() int {
	return g.Width * g.Height
}

// Contains reports whether p lies on the grid.
func (g Grid) Contains(p Point) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

// Index maps a point on the grid to its row-major cell index.
// Points off the grid are a programming error.
func (g Grid) Index(p Point) int {
	if !g.Contains(p) {
		panic(fmt.Sprintf("types: point %v outside %dx%d grid", p, g.Width, g.Height))
	}
	return p.Y*g.Width + p.X
}

// PointAt is the inverse of Index.
func (g Grid) PointAt(i int) Point {
	return Point{X: i % g.Width, Y: i / g.Width}
}

// Center returns the middle cell, rounding down on even sides.
func (g Grid) Center() Point {
	return Point{X: g.Width / 2, Y: g.Height / 2}
}

// Point is a cell on the grid. X is the column, Y the row (growing downward).
type Point struct {
	X, Y int
}

// Add returns p moved by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Step returns the neighbouring point in direction d.
func (p Point) Step(d Direction) Point {
	return p.Add(d.ToPoint())
}

// Manhattan returns the Manhattan distance between p and q.
func (p Point) Manhattan(q Point) int {
	return abs(p.X-q.X) + abs(p.Y-q.Y)
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Direction is a cardinal heading. None means "keep the current heading".
type Direction int

const (
	None Direction = iota
	Up
	Right
	Down
	Left
)

// ToPoint converts a Direction into a unit movement vector.
func (d Direction) ToPoint() Point {
	switch d {
	case Up:
		return Point{X: 0, Y: -1}
	case Right:
		return Point{X: 1, Y: 0}
	case Down:
		return Point{X: 0, Y: 1}
	case Left:
		return Point{X: -1, Y: 0}
	default:
		return Point{}
	}
}

// Opposite returns the 180 degree reversal of d.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Right:
		return Left
	case Down:
		return Up
	case Left:
		return Right
	default:
		return None
	}
}

// TurnLeft returns the heading after a quarter turn counter-clockwise.
func (d Direction) TurnLeft() Direction {
	switch d {
	case Up:
		return Left
	case Right:
		return Up
	case Down:
		return Right
	case Left:
		return Down
	default:
		return d
	}
}

// TurnRight returns the heading after a quarter turn clockwise.
func (d Direction) TurnRight() Direction {
	switch d {
	case Up:
		return Right
	case Right:
		return Down
	case Down:
		return Left
	case Left:
		return Up
	default:
		return d
	}
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	default:
		return "none"
	}
}

// Status is the engine's round state.
type Status int

const (
	Ongoing Status = iota
	Lost
	Won
)

// Terminal reports whether no further steps are accepted.
func (s Status) Terminal() bool {
	return s != Ongoing
}

func (s Status) String() string {
	switch s {
	case Lost:
		return "lost"
	case Won:
		return "won"
	default:
		return "ongoing"
	}
}

// CollisionType represents the type of collision
type CollisionType int

const (
	NoCollision CollisionType = iota
	WallCollision
	SelfCollision
)

func (c CollisionType) String() string {
	switch c {
	case WallCollision:
		return "wall"
	case SelfCollision:
		return "self"
	default:
		return "none"
	}
}

// Matrix is a grid of LED intensities, indexed [row][column].
type Matrix [][]uint8

// NewMatrix allocates a zeroed width x height matrix.
func NewMatrix(width, height int) Matrix {
	m := make(Matrix, height)
	for y := range m {
		m[y] = make([]uint8, width)
	}
	return m
}

// Width returns the number of columns.
func (m Matrix) Width() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Height returns the number of rows.
func (m Matrix) Height() int {
	return len(m)
}

// Scale maps every cell onto an n x n block, for panels with more pixels than cells.
func (m Matrix) Scale(n int) Matrix {
	if n <= 1 {
		return m
	}
	out := NewMatrix(m.Width()*n, m.Height()*n)
	for y, row := range m {
		for x, v := range row {
			for dy := 0; dy < n; dy++ {
				for dx := 0; dx < n; dx++ {
					out[y*n+dy][x*n+dx] = v
				}
			}
		}
	}
	return out
}

// Lit counts the non-zero cells.
func (m Matrix) Lit() int {
	n := 0
	for _, row := range m {
		for _, v := range row {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
