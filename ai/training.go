package ai

import (
	"fmt"

	"snake-matrix/game"
	"snake-matrix/game/types"
)

// TrainingStats summarises a headless training run.
type TrainingStats struct {
	Episodes     int
	Wins         int
	BestScore    int
	AverageScore float64
}

// stallFactor bounds how long an episode may go without eating, in
// multiples of the field size.
const stallFactor = 4

// Agent kinds NewLearner knows.
const (
	AgentQTable = "qtable"
	AgentDQN    = "dqn"
)

// NewLearner builds a fresh agent of the given kind.
func NewLearner(kind string, seed uint64) (Learner, error) {
	switch kind {
	case AgentQTable:
		return NewQLearning(seed), nil
	case AgentDQN:
		return NewDQN(seed)
	default:
		return nil, fmt.Errorf("unknown agent %q", kind)
	}
}

// Train plays episodes rounds with a fresh Q-table agent and returns it.
// The same config, episode count and seed always give the same agent.
func Train(cfg game.Config, episodes int, seed uint32) (TrainingStats, *QLearning, error) {
	agent := NewQLearning(uint64(seed))
	stats, err := TrainLearner(cfg, agent, episodes, seed)
	if err != nil {
		return TrainingStats{}, nil, err
	}
	return stats, agent, nil
}

// TrainLearner plays episodes rounds without a display, teaching agent.
func TrainLearner(cfg game.Config, agent Learner, episodes int, seed uint32) (TrainingStats, error) {
	g, err := game.NewWithConfig(cfg, seed)
	if err != nil {
		return TrainingStats{}, fmt.Errorf("training game: %w", err)
	}
	pilot := NewAutopilot(agent, g)
	stallLimit := stallFactor * cfg.Grid.Cells()

	var stats TrainingStats
	totalScore := 0
	for episode := 0; episode < episodes; episode++ {
		sinceFood, score := 0, 0
		for g.Status() == types.Ongoing && sinceFood < stallLimit {
			g.Step(pilot.Turn())
			if g.Score() > score {
				score, sinceFood = g.Score(), 0
			} else {
				sinceFood++
			}
		}
		pilot.Finish()

		stats.Episodes++
		totalScore += g.Score()
		if g.Score() > stats.BestScore {
			stats.BestScore = g.Score()
		}
		if g.Status() == types.Won {
			stats.Wins++
		}
		g.Reset()
	}
	if stats.Episodes > 0 {
		stats.AverageScore = float64(totalScore) / float64(stats.Episodes)
	}
	return stats, nil
}
