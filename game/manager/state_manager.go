package manager

import (
	"time"

	"snake-matrix/game/types"
)

// SpeedPolicy turns the score into a tick length. The level starts at 1 and
// rises every PointsPerLevel points; each level takes Decrement off Base,
// never going below Min.
type SpeedPolicy struct {
	Base           time.Duration
	Decrement      time.Duration
	Min            time.Duration
	PointsPerLevel int
}

// DefaultSpeedPolicy is one second per tick, 200ms faster every 5 points,
// bottoming out at 200ms.
func DefaultSpeedPolicy() SpeedPolicy {
	return SpeedPolicy{
		Base:           1000 * time.Millisecond,
		Decrement:      200 * time.Millisecond,
		Min:            200 * time.Millisecond,
		PointsPerLevel: 5,
	}
}

// Level returns the speed level reached at score.
func (p SpeedPolicy) Level(score int) int {
	if p.PointsPerLevel <= 0 {
		return 1
	}
	return 1 + score/p.PointsPerLevel
}

// StepLen returns the tick length at score.
func (p SpeedPolicy) StepLen(score int) time.Duration {
	d := p.Base - p.Decrement*time.Duration(p.Level(score)-1)
	if d < p.Min {
		return p.Min
	}
	return d
}

// StateManager tracks score and status for one round.
type StateManager struct {
	speed    SpeedPolicy
	scoreCap int
	score    int
	status   types.Status
}

// NewStateManager starts an ongoing round. A scoreCap of 0 disables the cap.
func NewStateManager(speed SpeedPolicy, scoreCap int) *StateManager {
	return &StateManager{
		speed:    speed,
		scoreCap: scoreCap,
		status:   types.Ongoing,
	}
}

// Eat records one food and reports whether the score cap was reached.
func (sm *StateManager) Eat() bool {
	sm.score++
	return sm.scoreCap > 0 && sm.score >= sm.scoreCap
}

func (sm *StateManager) Lose() {
	sm.status = types.Lost
}

func (sm *StateManager) Win() {
	sm.status = types.Won
}

func (sm *StateManager) Reset() {
	sm.score = 0
	sm.status = types.Ongoing
}

func (sm *StateManager) Score() int {
	return sm.score
}

func (sm *StateManager) Status() types.Status {
	return sm.status
}

func (sm *StateManager) Level() int {
	return sm.speed.Level(sm.score)
}

func (sm *StateManager) StepLen() time.Duration {
	return sm.speed.StepLen(sm.score)
}
