package manager

import (
	"golang.org/x/exp/rand"

	"snake-matrix/game/entity"
	"snake-matrix/game/types"
)

// FoodManager places food on free cells. It owns the game's only random
// stream, so a seed fixes every placement for a given sequence of moves.
type FoodManager struct {
	grid types.Grid
	rng  *rand.Rand
	food types.Point
	has  bool
}

func NewFoodManager(grid types.Grid, seed uint32) *FoodManager {
	return &FoodManager{
		grid: grid,
		rng:  rand.New(rand.NewSource(uint64(seed))),
	}
}

// Place picks a uniformly random free cell and makes it the food.
// It returns false, leaving no food, when the snake covers the whole grid.
func (fm *FoodManager) Place(snake *entity.Snake) (types.Point, bool) {
	free := snake.Free()
	if free <= 0 {
		fm.has = false
		return types.Point{}, false
	}

	// Walk to the n-th free cell instead of retrying random cells, so a
	// nearly full field costs one draw.
	n := fm.rng.Intn(free)
	for i := 0; i < fm.grid.Cells(); i++ {
		p := fm.grid.PointAt(i)
		if snake.Contains(p) {
			continue
		}
		if n == 0 {
			fm.food, fm.has = p, true
			return p, true
		}
		n--
	}
	panic("manager: free cell count disagrees with the grid")
}

// Food returns the current food cell, if any.
func (fm *FoodManager) Food() (types.Point, bool) {
	return fm.food, fm.has
}

// Put places food on p without drawing from the random stream.
func (fm *FoodManager) Put(p types.Point) {
	fm.food, fm.has = p, true
}

// Clear removes the food without drawing a new cell.
func (fm *FoodManager) Clear() {
	fm.has = false
}
