package game

import "snake-matrix/game/types"

// MaxBrightness is the top greyscale level of the LED matrix.
const MaxBrightness uint8 = 9

// Brightness holds the intensity for each kind of lit cell.
type Brightness struct {
	Head uint8
	Body uint8
	Food uint8
}

// DefaultBrightness keeps the food brightest and the body dim.
var DefaultBrightness = Brightness{Head: 6, Body: 3, Food: 9}

// GameMatrix renders the field as LED intensities sized to the display.
// Every call returns a fresh matrix.
func (g *Game) GameMatrix(b Brightness) types.Matrix {
	m := types.NewMatrix(g.cfg.Grid.Width, g.cfg.Grid.Height)
	for i := 1; i < g.snake.Len(); i++ {
		p := g.snake.At(i)
		m[p.Y][p.X] = clamp(b.Body)
	}
	head := g.snake.GetHead()
	m[head.Y][head.X] = clamp(b.Head)
	if food, ok := g.foodMgr.Food(); ok {
		m[food.Y][food.X] = clamp(b.Food)
	}
	return m.Scale(g.cfg.PixelsPerCell)
}

// ScoreMatrix renders the score as a bar: one lit cell per point in
// row-major order, so a 5x5 panel counts five points per row.
func (g *Game) ScoreMatrix() types.Matrix {
	grid := g.cfg.Grid
	m := types.NewMatrix(grid.Width, grid.Height)
	lit := min(g.Score(), grid.Cells())
	for i := 0; i < lit; i++ {
		p := grid.PointAt(i)
		m[p.Y][p.X] = MaxBrightness
	}
	return m.Scale(g.cfg.PixelsPerCell)
}

func clamp(v uint8) uint8 {
	if v > MaxBrightness {
		return MaxBrightness
	}
	return v
}
