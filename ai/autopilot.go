package ai

import (
	"snake-matrix/game"
	"snake-matrix/game/types"
)

// Rewards for one transition.
const (
	RewardFood  = 1.0
	RewardWin   = 2.0
	RewardLoss  = -1.0
	RewardStep  = -0.01
	RewardStall = -1.0
)

// Learner is an agent the Autopilot can play with: it picks actions and
// learns from transitions, one episode per round.
type Learner interface {
	GetAction(s State) Action
	Update(s State, a Action, reward float64, next State, terminal bool)
	EndEpisode()
}

// Autopilot plays a Game with a Learner, learning as it goes.
type Autopilot struct {
	agent Learner
	game  *game.Game

	pending    bool
	lastState  State
	lastAction Action
	lastScore  int
}

func NewAutopilot(agent Learner, g *game.Game) *Autopilot {
	return &Autopilot{agent: agent, game: g}
}

// Turn learns from the previous tick and picks the next turn. It never
// returns a reversal of the current heading.
func (p *Autopilot) Turn() types.Direction {
	state := Observe(p.game)
	if p.pending {
		reward := RewardStep
		if p.game.Score() > p.lastScore {
			reward = RewardFood
		}
		p.agent.Update(p.lastState, p.lastAction, reward, state, false)
	}

	action := p.agent.GetAction(state)
	p.pending = true
	p.lastState, p.lastAction, p.lastScore = state, action, p.game.Score()
	return action.Apply(state.Heading)
}

// Finish closes the round: the last move gets the terminal reward. A round
// that is still ongoing was abandoned and counts as a stall.
func (p *Autopilot) Finish() {
	if p.pending {
		var reward float64
		switch p.game.Status() {
		case types.Won:
			reward = RewardWin
		case types.Lost:
			reward = RewardLoss
		default:
			reward = RewardStall
		}
		p.agent.Update(p.lastState, p.lastAction, reward, State{}, true)
		p.pending = false
	}
	p.agent.EndEpisode()
}
