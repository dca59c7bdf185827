package ai

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"snake-matrix/game/types"
)

const (
	DQNLearningRate   = 0.005
	DQNDiscount       = 0.95
	DQNInitialEpsilon = 1.0
	DQNEpsilonDecay   = 0.99
	DQNMinEpsilon     = 0.01

	BatchSize        = 32
	ReplayBufferSize = 5000
	HiddenLayerSize  = 16
	// InputFeatures: 3 danger flags, food up/right/down/left, heading one-hot.
	InputFeatures = 11
	GradientClip  = 0.5
	// Tau is the soft update rate of the target network.
	Tau = 0.01
)

// Transition is one step the agent took, stored for replay.
type Transition struct {
	State     []float64
	Action    Action
	Reward    float64
	NextState []float64
	Done      bool
}

// ReplayBuffer is a fixed-size ring of transitions.
type ReplayBuffer struct {
	buffer   []Transition
	position int
	size     int
}

func NewReplayBuffer(maxSize int) *ReplayBuffer {
	return &ReplayBuffer{buffer: make([]Transition, maxSize)}
}

func (rb *ReplayBuffer) Add(t Transition) {
	rb.buffer[rb.position] = t
	rb.position = (rb.position + 1) % len(rb.buffer)
	if rb.size < len(rb.buffer) {
		rb.size++
	}
}

// Sample draws n transitions with replacement.
func (rb *ReplayBuffer) Sample(rng *rand.Rand, n int) []Transition {
	batch := make([]Transition, n)
	for i := range batch {
		batch[i] = rb.buffer[rng.Intn(rb.size)]
	}
	return batch
}

func (rb *ReplayBuffer) Len() int {
	return rb.size
}

// qNetwork is a two-layer perceptron over a fixed batch of BatchSize rows.
// The graph is built once; inputs are rebound with Let on every run. The
// loss only looks at the cells selected by mask, so a run with a zero mask
// is a pure forward pass.
type qNetwork struct {
	g      *gorgonia.ExprGraph
	x      *gorgonia.Node
	y      *gorgonia.Node
	mask   *gorgonia.Node
	w1, b1 *gorgonia.Node
	w2, b2 *gorgonia.Node
	out    *gorgonia.Node
	loss   *gorgonia.Node
	vm     gorgonia.VM
}

func newQNetwork(rng *rand.Rand) (*qNetwork, error) {
	g := gorgonia.NewGraph()
	n := &qNetwork{g: g}
	actions := int(numActions)

	n.x = gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(BatchSize, InputFeatures), gorgonia.WithName("x"))
	n.y = gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(BatchSize, actions), gorgonia.WithName("y"))
	n.mask = gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(BatchSize, actions), gorgonia.WithName("mask"))
	n.w1 = gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(InputFeatures, HiddenLayerSize),
		gorgonia.WithName("w1"), gorgonia.WithValue(glorot(rng, InputFeatures, HiddenLayerSize)))
	n.b1 = gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(1, HiddenLayerSize),
		gorgonia.WithName("b1"), gorgonia.WithValue(zeros(1, HiddenLayerSize)))
	n.w2 = gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(HiddenLayerSize, actions),
		gorgonia.WithName("w2"), gorgonia.WithValue(glorot(rng, HiddenLayerSize, actions)))
	n.b2 = gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(1, actions),
		gorgonia.WithName("b2"), gorgonia.WithValue(zeros(1, actions)))

	hidden, err := gorgonia.Mul(n.x, n.w1)
	if err != nil {
		return nil, fmt.Errorf("hidden layer: %w", err)
	}
	if hidden, err = gorgonia.BroadcastAdd(hidden, n.b1, nil, []byte{0}); err != nil {
		return nil, fmt.Errorf("hidden bias: %w", err)
	}
	if hidden, err = gorgonia.Rectify(hidden); err != nil {
		return nil, fmt.Errorf("hidden activation: %w", err)
	}
	out, err := gorgonia.Mul(hidden, n.w2)
	if err != nil {
		return nil, fmt.Errorf("output layer: %w", err)
	}
	if n.out, err = gorgonia.BroadcastAdd(out, n.b2, nil, []byte{0}); err != nil {
		return nil, fmt.Errorf("output bias: %w", err)
	}

	diff, err := gorgonia.Sub(n.out, n.y)
	if err != nil {
		return nil, fmt.Errorf("loss: %w", err)
	}
	if diff, err = gorgonia.HadamardProd(diff, n.mask); err != nil {
		return nil, fmt.Errorf("loss mask: %w", err)
	}
	if diff, err = gorgonia.Square(diff); err != nil {
		return nil, fmt.Errorf("loss square: %w", err)
	}
	if n.loss, err = gorgonia.Mean(diff); err != nil {
		return nil, fmt.Errorf("loss mean: %w", err)
	}
	if _, err = gorgonia.Grad(n.loss, n.learnables()...); err != nil {
		return nil, fmt.Errorf("gradients: %w", err)
	}

	n.vm = gorgonia.NewTapeMachine(g, gorgonia.BindDualValues(n.learnables()...))
	return n, nil
}

func (n *qNetwork) learnables() gorgonia.Nodes {
	return gorgonia.Nodes{n.w1, n.b1, n.w2, n.b2}
}

// run feeds one batch through the network and returns a copy of the output.
// With a solver the gradients of the run are applied before the machine is
// reset.
func (n *qNetwork) run(states, targets, mask []float64, solver gorgonia.Solver) ([]float64, error) {
	actions := int(numActions)
	if err := gorgonia.Let(n.x, tensor.New(tensor.WithShape(BatchSize, InputFeatures), tensor.WithBacking(states))); err != nil {
		return nil, fmt.Errorf("bind states: %w", err)
	}
	if err := gorgonia.Let(n.y, tensor.New(tensor.WithShape(BatchSize, actions), tensor.WithBacking(targets))); err != nil {
		return nil, fmt.Errorf("bind targets: %w", err)
	}
	if err := gorgonia.Let(n.mask, tensor.New(tensor.WithShape(BatchSize, actions), tensor.WithBacking(mask))); err != nil {
		return nil, fmt.Errorf("bind mask: %w", err)
	}
	defer n.vm.Reset()

	if err := n.vm.RunAll(); err != nil {
		return nil, fmt.Errorf("run network: %w", err)
	}
	data, ok := n.out.Value().Data().([]float64)
	if !ok {
		return nil, fmt.Errorf("unexpected output %T", n.out.Value().Data())
	}
	q := make([]float64, len(data))
	copy(q, data)

	if solver != nil {
		if err := solver.Step(gorgonia.NodesToValueGrads(n.learnables())); err != nil {
			return nil, fmt.Errorf("solver step: %w", err)
		}
	}
	return q, nil
}

// weights returns the backing slices of the learnables, in learnables order.
func (n *qNetwork) weights() [][]float64 {
	var out [][]float64
	for _, node := range n.learnables() {
		out = append(out, node.Value().Data().([]float64))
	}
	return out
}

// DQN is a deep Q-network agent with experience replay and a softly
// updated target network. It keeps everything in memory.
type DQN struct {
	online *qNetwork
	target *qNetwork
	solver gorgonia.Solver
	replay *ReplayBuffer

	Discount     float64
	Epsilon      float64
	MinEpsilon   float64
	EpsilonDecay float64
	TotalReward  float64
	GamesPlayed  int

	rng *rand.Rand
}

func NewDQN(seed uint64) (*DQN, error) {
	rng := rand.New(rand.NewSource(seed))
	online, err := newQNetwork(rng)
	if err != nil {
		return nil, fmt.Errorf("online network: %w", err)
	}
	target, err := newQNetwork(rng)
	if err != nil {
		return nil, fmt.Errorf("target network: %w", err)
	}
	d := &DQN{
		online:       online,
		target:       target,
		solver:       gorgonia.NewAdamSolver(gorgonia.WithLearnRate(DQNLearningRate), gorgonia.WithClip(GradientClip)),
		replay:       NewReplayBuffer(ReplayBufferSize),
		Discount:     DQNDiscount,
		Epsilon:      DQNInitialEpsilon,
		MinEpsilon:   DQNMinEpsilon,
		EpsilonDecay: DQNEpsilonDecay,
		rng:          rng,
	}
	d.softUpdate(1)
	return d, nil
}

// QValues predicts the value of each action in s.
func (d *DQN) QValues(s State) ([numActions]float64, error) {
	var q [numActions]float64
	states := make([]float64, BatchSize*InputFeatures)
	encode(s, states[:InputFeatures])
	out, err := d.online.run(states, make([]float64, BatchSize*int(numActions)), make([]float64, BatchSize*int(numActions)), nil)
	if err != nil {
		return q, err
	}
	copy(q[:], out[:numActions])
	return q, nil
}

// GetAction picks an action epsilon-greedily. If the network fails it
// explores instead.
func (d *DQN) GetAction(s State) Action {
	if d.rng.Float64() < d.Epsilon {
		return Action(d.rng.Intn(int(numActions)))
	}
	q, err := d.QValues(s)
	if err != nil {
		log.Error().Err(err).Msg("dqn forward failed")
		return Action(d.rng.Intn(int(numActions)))
	}
	best := Straight
	for a := Left; a < numActions; a++ {
		if q[a] > q[best] {
			best = a
		}
	}
	return best
}

// Update stores the transition and, once the buffer holds a batch, trains
// on a sampled batch.
func (d *DQN) Update(s State, a Action, reward float64, next State, terminal bool) {
	d.TotalReward += reward
	d.replay.Add(Transition{
		State:     encoded(s),
		Action:    a,
		Reward:    reward,
		NextState: encoded(next),
		Done:      terminal,
	})
	if d.replay.Len() < BatchSize {
		return
	}
	if err := d.trainOnBatch(d.replay.Sample(d.rng, BatchSize)); err != nil {
		log.Error().Err(err).Msg("dqn training step failed")
	}
}

func (d *DQN) trainOnBatch(batch []Transition) error {
	actions := int(numActions)
	states := make([]float64, 0, BatchSize*InputFeatures)
	nexts := make([]float64, 0, BatchSize*InputFeatures)
	for _, t := range batch {
		states = append(states, t.State...)
		nexts = append(nexts, t.NextState...)
	}

	nextQ, err := d.target.run(nexts, make([]float64, BatchSize*actions), make([]float64, BatchSize*actions), nil)
	if err != nil {
		return fmt.Errorf("target values: %w", err)
	}

	targets := make([]float64, BatchSize*actions)
	mask := make([]float64, BatchSize*actions)
	for i, t := range batch {
		y := t.Reward
		if !t.Done {
			row := nextQ[i*actions : (i+1)*actions]
			best := row[0]
			for _, v := range row[1:] {
				best = math.Max(best, v)
			}
			y += d.Discount * best
		}
		targets[i*actions+int(t.Action)] = y
		mask[i*actions+int(t.Action)] = 1
	}

	if _, err := d.online.run(states, targets, mask, d.solver); err != nil {
		return fmt.Errorf("online step: %w", err)
	}
	d.softUpdate(Tau)
	return nil
}

// softUpdate moves the target weights tau of the way to the online ones.
func (d *DQN) softUpdate(tau float64) {
	online := d.online.weights()
	for i, target := range d.target.weights() {
		for j := range target {
			target[j] = tau*online[i][j] + (1-tau)*target[j]
		}
	}
}

// EndEpisode decays exploration after a finished round.
func (d *DQN) EndEpisode() {
	d.GamesPlayed++
	d.Epsilon = math.Max(d.MinEpsilon, d.Epsilon*d.EpsilonDecay)
}

func encoded(s State) []float64 {
	v := make([]float64, InputFeatures)
	encode(s, v)
	return v
}

// encode writes the feature vector of s into dst, which must be zeroed and
// InputFeatures long.
func encode(s State, dst []float64) {
	for a, danger := range s.Danger {
		if danger {
			dst[a] = 1
		}
	}
	if s.FoodDir[1] < 0 {
		dst[3] = 1
	}
	if s.FoodDir[0] > 0 {
		dst[4] = 1
	}
	if s.FoodDir[1] > 0 {
		dst[5] = 1
	}
	if s.FoodDir[0] < 0 {
		dst[6] = 1
	}
	if s.Heading >= types.Up && s.Heading <= types.Left {
		dst[6+int(s.Heading)] = 1
	}
}

// glorot draws a rows x cols matrix uniformly in the Glorot range from rng,
// so a seed fixes the initial weights.
func glorot(rng *rand.Rand, rows, cols int) *tensor.Dense {
	limit := math.Sqrt(6 / float64(rows+cols))
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * limit
	}
	return tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(data))
}

func zeros(rows, cols int) *tensor.Dense {
	return tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(make([]float64, rows*cols)))
}
