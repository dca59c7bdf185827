package game

import (
	"reflect"
	"testing"

	"golang.org/x/exp/rand"

	"snake-matrix/game/entity"
	"snake-matrix/game/manager"
	"snake-matrix/game/types"
)

var directions = []types.Direction{types.None, types.Up, types.Right, types.Down, types.Left}

// scenario puts a hand-made snake and food on a default field.
func scenario(body []types.Point, dir types.Direction, food types.Point) *Game {
	g := New(1)
	g.snake = entity.NewSnake(g.cfg.Grid, body, dir)
	g.foodMgr.Put(food)
	return g
}

type snapshot struct {
	body    []types.Point
	food    types.Point
	hasFood bool
	score   int
	status  types.Status
}

func snap(g *Game) snapshot {
	food, ok := g.Food()
	return snapshot{body: g.Body(), food: food, hasFood: ok, score: g.Score(), status: g.Status()}
}

func checkInvariants(t *testing.T, g *Game) {
	t.Helper()
	body := g.Body()
	seen := map[types.Point]bool{}
	for i, p := range body {
		if !g.Grid().Contains(p) {
			t.Fatalf("body cell %v off the grid", p)
		}
		if i > 0 && p.Manhattan(body[i-1]) != 1 {
			t.Fatalf("cells %v and %v are not adjacent in %v", body[i-1], p, body)
		}
		if g.Status() == types.Ongoing && seen[p] {
			t.Fatalf("cell %v repeated in %v", p, body)
		}
		seen[p] = true
	}
	if len(body) != DefaultInitialLength+g.Score() {
		t.Fatalf("length %d with score %d", len(body), g.Score())
	}
	if food, ok := g.Food(); ok && seen[food] {
		t.Fatalf("food %v on the body %v", food, body)
	}
}

func TestNewInitialState(t *testing.T) {
	for _, seed := range []uint32{0, 1, 42, 0xFFFFFFFF} {
		g := New(seed)
		want := []types.Point{{X: 2, Y: 2}, {X: 1, Y: 2}}
		if got := g.Body(); !reflect.DeepEqual(got, want) {
			t.Errorf("seed %d: Body() = %v, want %v", seed, got, want)
		}
		if g.Heading() != types.Right {
			t.Errorf("seed %d: Heading() = %v, want right", seed, g.Heading())
		}
		if g.Score() != 0 || g.Status() != types.Ongoing {
			t.Errorf("seed %d: score/status = %d/%v", seed, g.Score(), g.Status())
		}
		if _, ok := g.Food(); !ok {
			t.Errorf("seed %d: no food placed", seed)
		}
		checkInvariants(t, g)
	}
}

func TestDeterminism(t *testing.T) {
	for _, seed := range []uint32{0, 7, 2024} {
		a, b := New(seed), New(seed)
		turns := rand.New(rand.NewSource(uint64(seed) + 1))
		for i := 0; i < 500; i++ {
			turn := directions[turns.Intn(len(directions))]
			a.Step(turn)
			b.Step(turn)
			if !reflect.DeepEqual(snap(a), snap(b)) {
				t.Fatalf("seed %d step %d: %+v != %+v", seed, i, snap(a), snap(b))
			}
			if a.Status().Terminal() {
				a.Reset()
				b.Reset()
			}
		}
	}
}

func TestInvariantsUnderRandomPlay(t *testing.T) {
	for seed := uint32(0); seed < 50; seed++ {
		g := New(seed)
		turns := rand.New(rand.NewSource(uint64(seed)))
		for i := 0; i < 300 && g.Status() == types.Ongoing; i++ {
			g.Step(directions[turns.Intn(len(directions))])
			checkInvariants(t, g)
		}
	}
}

func TestNoReversal(t *testing.T) {
	g := scenario([]types.Point{{X: 2, Y: 2}, {X: 1, Y: 2}}, types.Right, types.Point{X: 0, Y: 0})
	g.Step(types.Left)

	if g.Head() != (types.Point{X: 3, Y: 2}) {
		t.Errorf("Head() = %v, want (3,2)", g.Head())
	}
	if g.Heading() != types.Right {
		t.Errorf("Heading() = %v, want right", g.Heading())
	}
	if g.Status() != types.Ongoing {
		t.Errorf("Status() = %v, want ongoing", g.Status())
	}
}

func TestTurnApplied(t *testing.T) {
	g := scenario([]types.Point{{X: 2, Y: 2}, {X: 1, Y: 2}}, types.Right, types.Point{X: 0, Y: 0})
	g.Step(types.Up)

	want := []types.Point{{X: 2, Y: 1}, {X: 2, Y: 2}}
	if got := g.Body(); !reflect.DeepEqual(got, want) {
		t.Errorf("Body() = %v, want %v", got, want)
	}
}

func TestGrowthOnFood(t *testing.T) {
	g := scenario([]types.Point{{X: 2, Y: 2}, {X: 1, Y: 2}, {X: 0, Y: 2}}, types.Right, types.Point{X: 3, Y: 2})
	g.Step(types.None)

	if g.Length() != 4 {
		t.Errorf("Length() = %d, want 4", g.Length())
	}
	if g.Score() != 1 {
		t.Errorf("Score() = %d, want 1", g.Score())
	}
	want := []types.Point{{X: 3, Y: 2}, {X: 2, Y: 2}, {X: 1, Y: 2}, {X: 0, Y: 2}}
	if got := g.Body(); !reflect.DeepEqual(got, want) {
		t.Errorf("Body() = %v, want %v", got, want)
	}
	food, ok := g.Food()
	if !ok || g.snake.Contains(food) {
		t.Errorf("new food %v (placed %v) overlaps the body", food, ok)
	}
}

func TestBoundaryCollision(t *testing.T) {
	cases := []struct {
		name string
		body []types.Point
		dir  types.Direction
		turn types.Direction
	}{
		{"right edge", []types.Point{{X: 4, Y: 2}, {X: 3, Y: 2}}, types.Right, types.None},
		{"top edge", []types.Point{{X: 2, Y: 0}, {X: 2, Y: 1}}, types.Up, types.None},
		{"turn off left edge", []types.Point{{X: 0, Y: 3}, {X: 0, Y: 2}}, types.Down, types.Left},
		{"bottom edge", []types.Point{{X: 1, Y: 4}, {X: 0, Y: 4}}, types.Right, types.Down},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			g := scenario(c.body, c.dir, types.Point{X: 2, Y: 2})
			before := snap(g)
			g.Step(c.turn)

			if g.Status() != types.Lost {
				t.Fatalf("Status() = %v, want lost", g.Status())
			}
			if g.LastCollision() != types.WallCollision {
				t.Errorf("LastCollision() = %v, want wall", g.LastCollision())
			}
			after := snap(g)
			before.status = types.Lost
			if !reflect.DeepEqual(before, after) {
				t.Errorf("state changed on collision: %+v -> %+v", before, after)
			}
		})
	}
}

func TestSelfCollision(t *testing.T) {
	// Heading up with the body wrapped to the left; turning left hits (1,2).
	body := []types.Point{{X: 2, Y: 2}, {X: 2, Y: 3}, {X: 1, Y: 3}, {X: 1, Y: 2}, {X: 1, Y: 1}}
	g := scenario(body, types.Up, types.Point{X: 4, Y: 4})
	g.Step(types.Left)

	if g.Status() != types.Lost {
		t.Fatalf("Status() = %v, want lost", g.Status())
	}
	if g.LastCollision() != types.SelfCollision {
		t.Errorf("LastCollision() = %v, want self", g.LastCollision())
	}
	if !reflect.DeepEqual(g.Body(), body) {
		t.Errorf("Body() = %v, want unchanged %v", g.Body(), body)
	}
}

func TestChasingTailIsSafe(t *testing.T) {
	body := []types.Point{{X: 2, Y: 2}, {X: 2, Y: 3}, {X: 1, Y: 3}, {X: 1, Y: 2}}
	g := scenario(body, types.Up, types.Point{X: 4, Y: 4})
	g.Step(types.Left)

	if g.Status() != types.Ongoing {
		t.Fatalf("Status() = %v, want ongoing", g.Status())
	}
	want := []types.Point{{X: 1, Y: 2}, {X: 2, Y: 2}, {X: 2, Y: 3}, {X: 1, Y: 3}}
	if got := g.Body(); !reflect.DeepEqual(got, want) {
		t.Errorf("Body() = %v, want %v", got, want)
	}
}

func TestTerminalStateIsFrozen(t *testing.T) {
	g := scenario([]types.Point{{X: 4, Y: 2}, {X: 3, Y: 2}}, types.Right, types.Point{X: 0, Y: 0})
	g.Step(types.None)
	if g.Status() != types.Lost {
		t.Fatalf("Status() = %v, want lost", g.Status())
	}
	frozen := snap(g)
	for i := 0; i < 20; i++ {
		g.Step(directions[i%len(directions)])
		if !reflect.DeepEqual(snap(g), frozen) {
			t.Fatalf("step %d changed a finished round: %+v", i, snap(g))
		}
	}
}

func TestWinOnFullField(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Grid = types.Grid{Width: 3, Height: 3}
	g, err := NewWithConfig(cfg, 3)
	if err != nil {
		t.Fatal(err)
	}
	g.snake = entity.NewSnake(cfg.Grid, []types.Point{
		{X: 1, Y: 2}, {X: 0, Y: 2}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 0},
	}, types.Right)
	g.foodMgr.Put(types.Point{X: 2, Y: 2})

	g.Step(types.None)

	if g.Status() != types.Won {
		t.Fatalf("Status() = %v, want won", g.Status())
	}
	if g.Length() != 9 || g.Score() != 1 {
		t.Errorf("length/score = %d/%d, want 9/1", g.Length(), g.Score())
	}
	if _, ok := g.Food(); ok {
		t.Error("food still present on a full field")
	}
	frozen := snap(g)
	g.Step(types.Up)
	if !reflect.DeepEqual(snap(g), frozen) {
		t.Error("won round changed after another step")
	}
}

func TestScoreCapWins(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScoreCap = 1
	g, err := NewWithConfig(cfg, 5)
	if err != nil {
		t.Fatal(err)
	}
	g.foodMgr.Put(types.Point{X: 3, Y: 2})
	g.Step(types.None)

	if g.Status() != types.Won {
		t.Errorf("Status() = %v, want won", g.Status())
	}
	if _, ok := g.Food(); ok {
		t.Error("food placed after the cap was reached")
	}
}

func TestResetRestoresInvariants(t *testing.T) {
	g := scenario([]types.Point{{X: 2, Y: 2}, {X: 1, Y: 2}, {X: 0, Y: 2}}, types.Right, types.Point{X: 3, Y: 2})
	g.Step(types.None)
	g.foodMgr.Put(types.Point{X: 0, Y: 0})
	g.Step(types.None)
	g.Step(types.None)
	if g.Status() != types.Lost || g.Score() != 1 {
		t.Fatalf("setup: status/score = %v/%d", g.Status(), g.Score())
	}

	g.Reset()

	if g.Status() != types.Ongoing || g.Score() != 0 || g.Ticks() != 0 {
		t.Errorf("status/score/ticks = %v/%d/%d", g.Status(), g.Score(), g.Ticks())
	}
	want := []types.Point{{X: 2, Y: 2}, {X: 1, Y: 2}}
	if got := g.Body(); !reflect.DeepEqual(got, want) {
		t.Errorf("Body() = %v, want %v", got, want)
	}
	if g.Heading() != types.Right {
		t.Errorf("Heading() = %v, want right", g.Heading())
	}
	if g.LastCollision() != types.NoCollision {
		t.Errorf("LastCollision() = %v after reset", g.LastCollision())
	}
	checkInvariants(t, g)
}

func TestResetContinuesRandomStream(t *testing.T) {
	const seed = 31337
	cfg := DefaultConfig()
	start := entity.NewSnake(cfg.Grid, cfg.initialBody(), types.Right)
	ref := manager.NewFoodManager(cfg.Grid, seed)
	first, _ := ref.Place(start)
	second, _ := ref.Place(start)

	g := New(seed)
	if food, _ := g.Food(); food != first {
		t.Fatalf("first food = %v, want %v", food, first)
	}
	g.Reset()
	if food, _ := g.Food(); food != second {
		t.Errorf("food after reset = %v, want next draw %v", food, second)
	}
}

func TestStepLen(t *testing.T) {
	g := New(9)
	if g.StepLenMs() != 1000 {
		t.Errorf("StepLenMs() = %d, want 1000", g.StepLenMs())
	}
	for i := 0; i < 5; i++ {
		g.stateMgr.Eat()
	}
	if g.Level() != 2 || g.StepLenMs() != 800 {
		t.Errorf("level/step = %d/%d, want 2/800", g.Level(), g.StepLenMs())
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"default", func(*Config) {}, true},
		{"wide field", func(c *Config) { c.Grid = types.Grid{Width: 16, Height: 8} }, true},
		{"too small", func(c *Config) { c.Grid = types.Grid{Width: 2, Height: 5} }, false},
		{"zero length", func(c *Config) { c.InitialLength = 0 }, false},
		{"too long", func(c *Config) { c.InitialLength = 4 }, false},
		{"negative cap", func(c *Config) { c.ScoreCap = -1 }, false},
		{"zero scale", func(c *Config) { c.PixelsPerCell = 0 }, false},
		{"min above base", func(c *Config) { c.Speed.Min = 2 * c.Speed.Base }, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := DefaultConfig()
			c.mutate(&cfg)
			err := cfg.Validate()
			if (err == nil) != c.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, c.ok)
			}
			if _, err := NewWithConfig(cfg, 1); (err == nil) != c.ok {
				t.Errorf("NewWithConfig() = %v, want ok=%v", err, c.ok)
			}
		})
	}
}
