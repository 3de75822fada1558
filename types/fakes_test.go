package types

import (
	"errors"
	"path/filepath"
	"strconv"
)

type testState struct {
	id string
}

func (s *testState) Hash() string {
	return s.id
}

func (s *testState) Actions() []Action {
	return []Action{testAction("a"), testAction("b")}
}

type testAction string

func (a testAction) Hash() string {
	return string(a)
}

// scriptedEnv replays the rewards and done flags, cycling over the script
type scriptedEnv struct {
	n       int
	rewards [][]float64
	dones   [][]bool
	infos   bool // return infos, otherwise nil infos

	steps   int
	failAt  int // step call that fails, 0 never
	failErr error

	resets int
	masks  [][]bool
	closed int
}

var _ VectorEnv = &scriptedEnv{}

func (e *scriptedEnv) NumEnvs() int {
	return e.n
}

func (e *scriptedEnv) obs() []State {
	out := make([]State, e.n)
	for i := range out {
		out[i] = &testState{id: strconv.Itoa(i) + ":" + strconv.Itoa(e.steps)}
	}
	return out
}

func (e *scriptedEnv) Reset() ([]State, error) {
	e.resets += 1
	return e.obs(), nil
}

func (e *scriptedEnv) ResetMasked(mask []bool) ([]State, error) {
	m := make([]bool, len(mask))
	copy(m, mask)
	e.masks = append(e.masks, m)
	return e.obs(), nil
}

func (e *scriptedEnv) Step(actions []Action) (*BatchStep, error) {
	e.steps += 1
	if e.failAt == e.steps {
		return nil, e.failErr
	}
	i := (e.steps - 1) % len(e.dones)
	rewards := make([]float64, e.n)
	if len(e.rewards) > 0 {
		copy(rewards, e.rewards[(e.steps-1)%len(e.rewards)])
	}
	dones := make([]bool, e.n)
	copy(dones, e.dones[i])
	var infos []Info
	if e.infos {
		infos = make([]Info, e.n)
		for j := range infos {
			infos[j] = Info{"step": e.steps}
		}
	}
	return &BatchStep{
		Observations: e.obs(),
		Rewards:      rewards,
		Dones:        dones,
		Infos:        infos,
	}, nil
}

func (e *scriptedEnv) Close() error {
	e.closed += 1
	return nil
}

// unsizedEnv does not expose the number of instances
type unsizedEnv struct {
	closed int
}

func (e *unsizedEnv) Reset() ([]State, error) { return nil, nil }
func (e *unsizedEnv) ResetMasked([]bool) ([]State, error) { return nil, nil }
func (e *unsizedEnv) Step([]Action) (*BatchStep, error) { return nil, errors.New("not stepped") }
func (e *unsizedEnv) Close() error { e.closed += 1; return nil }

type recordingAgent struct {
	step    int
	stepSet bool
	calls   int
	panicAt int

	observed []int
	infos    [][]Info
	dones    [][]bool
	saved    []string
}

var _ BatchAgent = &recordingAgent{}
var _ BatchActor = &recordingAgent{}
var _ Saver = &recordingAgent{}
var _ StepCounter = &recordingAgent{}

func (a *recordingAgent) SetStep(t int) {
	a.step = t
	a.stepSet = true
}

func (a *recordingAgent) BatchAct(obs []State) ([]Action, error) {
	actions := make([]Action, len(obs))
	for i := range actions {
		actions[i] = testAction("a")
	}
	return actions, nil
}

func (a *recordingAgent) BatchActAndTrain(obs []State) ([]Action, error) {
	a.calls += 1
	if a.panicAt == a.calls {
		panic("agent exploded")
	}
	return a.BatchAct(obs)
}

func (a *recordingAgent) BatchObserveAndTrain(obs []State, rewards []float64, dones []bool, infos []Info) error {
	a.observed = append(a.observed, len(obs))
	a.infos = append(a.infos, infos)
	d := make([]bool, len(dones))
	copy(d, dones)
	a.dones = append(a.dones, d)
	return nil
}

func (a *recordingAgent) Statistics() []Statistic {
	return []Statistic{{Name: "calls", Value: float64(a.calls)}}
}

func (a *recordingAgent) Save(dir string) error {
	a.saved = append(a.saved, filepath.Base(dir))
	return nil
}

type fakeEvaluator struct {
	env      VectorEnv
	score    float64
	maxScore float64
	calls    []int
	episodes [][]int
}

var _ Evaluator = &fakeEvaluator{}

func (e *fakeEvaluator) EvaluateIfNecessary(t int, episodes []int) (float64, bool, error) {
	e.calls = append(e.calls, t)
	e.episodes = append(e.episodes, episodes)
	if e.score > e.maxScore {
		e.maxScore = e.score
	}
	return e.score, true, nil
}

func (e *fakeEvaluator) MaxScore() float64 {
	return e.maxScore
}

func (e *fakeEvaluator) Env() VectorEnv {
	return e.env
}

type recordingLogger struct {
	infos  []string
	errors []string
}

func (l *recordingLogger) Infof(format string, args ...interface{}) {
	l.infos = append(l.infos, format)
}

func (l *recordingLogger) Errorf(format string, args ...interface{}) {
	l.errors = append(l.errors, format)
}
