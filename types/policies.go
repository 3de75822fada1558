package types

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// RandomAgent picks uniformly among the actions available in each state
type RandomAgent struct {
	rand *rand.Rand
	step int
}

var _ BatchAgent = &RandomAgent{}
var _ BatchActor = &RandomAgent{}
var _ StepCounter = &RandomAgent{}

func NewRandomAgent() *RandomAgent {
	return NewRandomAgentWithSeed(uint64(time.Now().UnixNano()))
}

func NewRandomAgentWithSeed(seed uint64) *RandomAgent {
	return &RandomAgent{
		rand: rand.New(rand.NewSource(seed)),
	}
}

func (r *RandomAgent) SetStep(t int) {
	r.step = t
}

func (r *RandomAgent) BatchAct(obs []State) ([]Action, error) {
	actions := make([]Action, len(obs))
	for i, s := range obs {
		available := s.Actions()
		if len(available) == 0 {
			return nil, fmt.Errorf("no actions available in state %s", s.Hash())
		}
		actions[i] = available[r.rand.Intn(len(available))]
	}
	return actions, nil
}

func (r *RandomAgent) BatchActAndTrain(obs []State) ([]Action, error) {
	return r.BatchAct(obs)
}

func (r *RandomAgent) BatchObserveAndTrain(obs []State, _ []float64, _ []bool, _ []Info) error {
	r.step += len(obs)
	return nil
}

func (r *RandomAgent) Statistics() []Statistic {
	return []Statistic{{Name: "step", Value: float64(r.step)}}
}

// Transition stored in the replay buffer
type Transition struct {
	State     string  `json:"state"`
	Action    string  `json:"action"`
	Reward    float64 `json:"reward"`
	NextState string  `json:"next_state"`
	Done      bool    `json:"done"`
	Truncated bool    `json:"truncated"`
}

// TransitionBuffer is a bounded replay buffer, oldest transitions are dropped first
type TransitionBuffer struct {
	capacity    int
	transitions []Transition
}

var _ ReplayBuffer = &TransitionBuffer{}

func NewTransitionBuffer(capacity int) *TransitionBuffer {
	return &TransitionBuffer{
		capacity:    capacity,
		transitions: make([]Transition, 0),
	}
}

func (b *TransitionBuffer) Append(t Transition) {
	if b.capacity <= 0 {
		return
	}
	if len(b.transitions) == b.capacity {
		b.transitions = b.transitions[1:]
	}
	b.transitions = append(b.transitions, t)
}

func (b *TransitionBuffer) Len() int {
	return len(b.transitions)
}

func (b *TransitionBuffer) Save(path string) error {
	bs, err := json.Marshal(b.transitions)
	if err != nil {
		return err
	}
	return os.WriteFile(path, bs, 0644)
}

// SoftmaxQConfig configures a SoftmaxQAgent
type SoftmaxQConfig struct {
	Alpha          float64 // learning rate
	Gamma          float64 // discount
	Temperature    float64
	ReplayCapacity int
	Seed           uint64
}

// SoftmaxQAgent is a tabular Q learning agent sampling actions with a softmax over the Q values.
// Truncated episodes, marked with the reset key, are stored as truncated in the replay buffer.
type SoftmaxQAgent struct {
	QTable map[string]map[string]float64
	config SoftmaxQConfig
	rand   rand.Source

	step      int
	updates   int
	lastState []State
	lastAct   []Action
	buffer    *TransitionBuffer
}

var _ BatchAgent = &SoftmaxQAgent{}
var _ BatchActor = &SoftmaxQAgent{}
var _ Saver = &SoftmaxQAgent{}
var _ StepCounter = &SoftmaxQAgent{}
var _ ReplayBufferHolder = &SoftmaxQAgent{}

func NewSoftmaxQAgent(config SoftmaxQConfig) *SoftmaxQAgent {
	if config.Temperature <= 0 {
		config.Temperature = 1
	}
	seed := config.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &SoftmaxQAgent{
		QTable: make(map[string]map[string]float64),
		config: config,
		rand:   rand.NewSource(seed),
		buffer: NewTransitionBuffer(config.ReplayCapacity),
	}
}

func (s *SoftmaxQAgent) SetStep(t int) {
	s.step = t
}

func (s *SoftmaxQAgent) ReplayBuffer() ReplayBuffer {
	return s.buffer
}

func (s *SoftmaxQAgent) values(state State, actions []Action) []float64 {
	stateHash := state.Hash()
	if _, ok := s.QTable[stateHash]; !ok {
		s.QTable[stateHash] = make(map[string]float64)
	}
	vals := make([]float64, len(actions))
	for i, a := range actions {
		aName := a.Hash()
		if _, ok := s.QTable[stateHash][aName]; !ok {
			s.QTable[stateHash][aName] = 0
		}
		vals[i] = s.QTable[stateHash][aName]
	}
	return vals
}

func (s *SoftmaxQAgent) sample(state State) (Action, error) {
	actions := state.Actions()
	if len(actions) == 0 {
		return nil, fmt.Errorf("no actions available in state %s", state.Hash())
	}
	vals := s.values(state, actions)

	max := math.Inf(-1)
	for _, v := range vals {
		if v > max {
			max = v
		}
	}
	weights := make([]float64, len(actions))
	for i, v := range vals {
		weights[i] = math.Exp((v - max) / s.config.Temperature)
	}
	i, ok := sampleuv.NewWeighted(weights, s.rand).Take()
	if !ok {
		return nil, fmt.Errorf("could not sample an action in state %s", state.Hash())
	}
	return actions[i], nil
}

func (s *SoftmaxQAgent) BatchActAndTrain(obs []State) ([]Action, error) {
	actions := make([]Action, len(obs))
	for i, state := range obs {
		a, err := s.sample(state)
		if err != nil {
			return nil, err
		}
		actions[i] = a
	}
	s.lastState = obs
	s.lastAct = actions
	return actions, nil
}

// BatchAct picks the action with the highest Q value
func (s *SoftmaxQAgent) BatchAct(obs []State) ([]Action, error) {
	actions := make([]Action, len(obs))
	for i, state := range obs {
		available := state.Actions()
		if len(available) == 0 {
			return nil, fmt.Errorf("no actions available in state %s", state.Hash())
		}
		vals := s.values(state, available)
		best := 0
		for j, v := range vals {
			if v > vals[best] {
				best = j
			}
		}
		actions[i] = available[best]
	}
	return actions, nil
}

func (s *SoftmaxQAgent) maxValue(stateHash string) float64 {
	max := 0.0
	first := true
	for _, v := range s.QTable[stateHash] {
		if first || v > max {
			max = v
			first = false
		}
	}
	return max
}

// BatchObserveAndTrain updates the Q values of the last state action pairs.
// obs holds the observations after reset, so the ended episodes only use the reward.
func (s *SoftmaxQAgent) BatchObserveAndTrain(obs []State, rewards []float64, dones []bool, infos []Info) error {
	if len(s.lastState) != len(rewards) {
		return fmt.Errorf("observed %d rewards for %d actions", len(rewards), len(s.lastState))
	}
	for i := range rewards {
		stateHash := s.lastState[i].Hash()
		actionKey := s.lastAct[i].Hash()
		truncated := infos[i].Truncated()

		target := rewards[i]
		nextHash := ""
		// obs[i] is the next state only when the episode continues
		if !dones[i] && !truncated {
			nextHash = obs[i].Hash()
			target += s.config.Gamma * s.maxValue(nextHash)
		}
		cur := s.QTable[stateHash][actionKey]
		s.QTable[stateHash][actionKey] = (1-s.config.Alpha)*cur + s.config.Alpha*target
		s.updates += 1

		s.buffer.Append(Transition{
			State:     stateHash,
			Action:    actionKey,
			Reward:    rewards[i],
			NextState: nextHash,
			Done:      dones[i],
			Truncated: truncated,
		})
	}
	s.step += len(rewards)
	return nil
}

func (s *SoftmaxQAgent) Statistics() []Statistic {
	return []Statistic{
		{Name: "states", Value: float64(len(s.QTable))},
		{Name: "updates", Value: float64(s.updates)},
		{Name: "replay", Value: float64(s.buffer.Len())},
	}
}

// Save writes the Q table as json to dir/qtable.json
func (s *SoftmaxQAgent) Save(dir string) error {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}
	bs, err := json.Marshal(s.QTable)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "qtable.json"), bs, 0644)
}

// Load reads back a Q table written by Save
func (s *SoftmaxQAgent) Load(dir string) error {
	bs, err := os.ReadFile(filepath.Join(dir, "qtable.json"))
	if err != nil {
		return err
	}
	qTable := make(map[string]map[string]float64)
	if err := json.Unmarshal(bs, &qTable); err != nil {
		return err
	}
	s.QTable = qTable
	return nil
}
