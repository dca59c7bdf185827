package ai

import (
	"golang.org/x/exp/rand"

	"snake-matrix/game"
	"snake-matrix/game/types"
)

// Action is a turn relative to the current heading.
type Action int

const (
	Straight Action = iota
	Left
	Right
	numActions
)

// Apply converts a relative action into an absolute turn for the engine.
func (a Action) Apply(heading types.Direction) types.Direction {
	switch a {
	case Left:
		return heading.TurnLeft()
	case Right:
		return heading.TurnRight()
	default:
		return heading
	}
}

// State is what the agent sees: where the food is relative to the head,
// which of the three reachable cells are deadly, and the heading.
type State struct {
	FoodDir [2]int
	Danger  [numActions]bool
	Heading types.Direction
}

// Observe reads the agent's view of g.
func Observe(g *game.Game) State {
	head := g.Head()
	heading := g.Heading()

	var s State
	s.Heading = heading
	for a := Straight; a < numActions; a++ {
		s.Danger[a] = g.IsDanger(head.Step(a.Apply(heading)))
	}
	if food, ok := g.Food(); ok {
		s.FoodDir = [2]int{sign(food.X - head.X), sign(food.Y - head.Y)}
	}
	return s
}

type QTable map[State][numActions]float64

// QLearning is a tabular Q-learning agent with its own random stream, so
// a seed fixes both exploration and training results.
type QLearning struct {
	QTable       QTable
	LearningRate float64
	Discount     float64
	Epsilon      float64
	MinEpsilon   float64
	EpsilonDecay float64
	TotalReward  float64
	GamesPlayed  int

	rng *rand.Rand
}

func NewQLearning(seed uint64) *QLearning {
	return &QLearning{
		QTable:       make(QTable),
		LearningRate: 0.1,
		Discount:     0.9,
		Epsilon:      0.1,
		MinEpsilon:   0.01,
		EpsilonDecay: 0.995,
		rng:          rand.New(rand.NewSource(seed)),
	}
}

// GetAction picks an action epsilon-greedily.
func (q *QLearning) GetAction(s State) Action {
	if q.rng.Float64() < q.Epsilon {
		return Action(q.rng.Intn(int(numActions)))
	}
	return q.getBestAction(s)
}

// getBestAction breaks ties towards Straight, then Left.
func (q *QLearning) getBestAction(s State) Action {
	values := q.QTable[s]
	best := Straight
	for a := Left; a < numActions; a++ {
		if values[a] > values[best] {
			best = a
		}
	}
	return best
}

// Update applies one Q-learning step. A terminal transition has no future value.
func (q *QLearning) Update(s State, a Action, reward float64, next State, terminal bool) {
	future := 0.0
	if !terminal {
		nextValues := q.QTable[next]
		future = nextValues[q.getBestAction(next)]
	}

	values := q.QTable[s]
	values[a] += q.LearningRate * (reward + q.Discount*future - values[a])
	q.QTable[s] = values
	q.TotalReward += reward
}

// EndEpisode decays exploration after a finished round.
func (q *QLearning) EndEpisode() {
	q.GamesPlayed++
	q.Epsilon *= q.EpsilonDecay
	if q.Epsilon < q.MinEpsilon {
		q.Epsilon = q.MinEpsilon
	}
}

func sign(x int) int {
	if x > 0 {
		return 1
	} else if x < 0 {
		return -1
	}
	return 0
}
