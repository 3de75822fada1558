package types

import (
	"context"
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/zeu5/batch-rl-train/util"
)

// TrainingReturnsFile is the file, inside the output directory, where the
// mean of the recent returns is appended when SaveTrainingR is set
const TrainingReturnsFile = "training_r.txt"

// DefaultReturnWindowSize is used when TrainConfig.ReturnWindowSize is not set
const DefaultReturnWindowSize = 100

// TrainConfig contains the options of a training run. Zero values mean unset.
type TrainConfig struct {
	LogInterval   int // cadence of progress logs and results file writes
	MaxEpisodeLen int // force reset episodes after this many steps
	EvalInterval  int
	Evaluator     Evaluator
	StepOffset    int // initial value of the global step counter
	// stop training once the evaluator max score reaches this value
	SuccessfulScore  *float64
	StepHooks        []StepHook
	ReturnWindowSize int
	SaveTrainingR    bool
	Logger           Logger
}

// Score is a helper to fill TrainConfig.SuccessfulScore
func Score(v float64) *float64 {
	return &v
}

func (c *TrainConfig) validate() error {
	if c.LogInterval < 0 || c.MaxEpisodeLen < 0 || c.EvalInterval < 0 || c.ReturnWindowSize < 0 {
		return configError("intervals and sizes cannot be negative")
	}
	if (c.SaveTrainingR || c.EvalInterval > 0) && c.LogInterval == 0 {
		return configError("log interval must be set when saving training returns or evaluating")
	}
	return nil
}

// Trainer drives the step/observe cycles of a batch agent against a vector env
type Trainer struct {
	agent   BatchAgent
	env     VectorEnv
	steps   int
	outdir  string
	config  *TrainConfig
	logger  Logger
	numEnvs int

	t       int
	book    *episodeBook
	returns *ReturnWindow
}

// NewTrainer validates the configuration and the environment
func NewTrainer(agent BatchAgent, env VectorEnv, steps int, outdir string, config *TrainConfig) (*Trainer, error) {
	if config == nil {
		config = &TrainConfig{}
	}
	logger := config.Logger
	if logger == nil {
		logger = DefaultLogger()
	}
	sizer, ok := env.(Sizer)
	if !ok {
		logger.Errorf("Please pass a vector environment exposing the number of instances. You passed: %T", env)
		return nil, configError("environment %T does not expose the number of instances", env)
	}
	numEnvs := sizer.NumEnvs()
	if numEnvs < 1 {
		logger.Errorf("Vector environment %T has %d instances", env, numEnvs)
		return nil, configError("environment %T has %d instances", env, numEnvs)
	}
	if steps <= 0 {
		return nil, configError("total steps must be positive, got %d", steps)
	}
	if err := config.validate(); err != nil {
		logger.Errorf("Invalid training configuration: %s", err)
		return nil, err
	}
	windowSize := config.ReturnWindowSize
	if windowSize == 0 {
		windowSize = DefaultReturnWindowSize
	}

	return &Trainer{
		agent:   agent,
		env:     env,
		steps:   steps,
		outdir:  outdir,
		config:  config,
		logger:  logger,
		numEnvs: numEnvs,

		t:       config.StepOffset,
		book:    newEpisodeBook(numEnvs),
		returns: NewReturnWindow(windowSize),
	}, nil
}

// Step returns the current value of the global step counter
func (tr *Trainer) Step() int {
	return tr.t
}

// RecentReturns returns the returns in the recent returns window, oldest first
func (tr *Trainer) RecentReturns() []float64 {
	return tr.returns.Values()
}

// EpisodeCounts returns the completed episodes per instance slot
func (tr *Trainer) EpisodeCounts() []int {
	out := make([]int, len(tr.book.idx))
	copy(out, tr.book.idx)
	return out
}

// Run the training loop. On every exit path the agent is checkpointed and the
// environments are closed. Errors and panics are propagated unchanged.
func (tr *Trainer) Run(ctx context.Context) (err error) {
	if sc, ok := tr.agent.(StepCounter); ok {
		sc.SetStep(tr.config.StepOffset)
	}

	finished := false
	defer func() {
		r := recover()
		if r == nil && finished {
			return
		}
		if serr := SaveAgent(tr.agent, tr.t, tr.outdir, SuffixExcept, tr.logger); serr != nil {
			tr.logger.Errorf("Could not save the agent before exiting: %s", serr)
		}
		tr.closeEnvs()
		if r != nil {
			panic(r)
		}
	}()

	obs, err := tr.env.Reset()
	if err != nil {
		return err
	}

	for tr.t < tr.steps {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var stop bool
		obs, stop, err = tr.iterate(obs)
		if err != nil {
			return err
		}
		if stop {
			break
		}
	}

	finished = true
	saveErr := SaveAgent(tr.agent, tr.t, tr.outdir, SuffixFinish, tr.logger)
	tr.closeEnvs()
	return saveErr
}

// one step/observe cycle, returns the observations for the next one
// and whether the successful score was reached
func (tr *Trainer) iterate(obs []State) ([]State, bool, error) {
	actions, err := tr.agent.BatchActAndTrain(obs)
	if err != nil {
		return nil, false, err
	}
	step, err := tr.env.Step(actions)
	if err != nil {
		return nil, false, err
	}
	if err := tr.checkBatch(step); err != nil {
		return nil, false, err
	}

	resets := tr.book.resetMask(tr.config.MaxEpisodeLen)
	for i, reset := range resets {
		if step.Infos[i] == nil {
			step.Infos[i] = make(Info)
		}
		step.Infos[i][InfoResetKey] = reset
	}
	mask := continuationMask(step.Dones, resets)

	nextObs, err := tr.env.ResetMasked(mask)
	if err != nil {
		return nil, false, err
	}
	if err := tr.agent.BatchObserveAndTrain(nextObs, step.Rewards, step.Dones, step.Infos); err != nil {
		return nil, false, err
	}

	tr.book.record(step.Rewards, mask, tr.returns)
	tr.t += tr.numEnvs

	if err := runStepHooks(tr.config.StepHooks, tr.env, tr.agent, tr.t); err != nil {
		return nil, false, err
	}

	logStep := tr.config.LogInterval > 0 && tr.t%tr.config.LogInterval == 0
	if tr.config.SaveTrainingR && logStep {
		if err := tr.writeTrainingReturns(); err != nil {
			return nil, false, err
		}
	}

	if tr.config.EvalInterval > 0 && logStep {
		tr.logProgress()
		if ev := tr.config.Evaluator; ev != nil {
			if _, _, err := ev.EvaluateIfNecessary(tr.t, tr.book.episodes()); err != nil {
				return nil, false, err
			}
			if tr.config.SuccessfulScore != nil && ev.MaxScore() >= *tr.config.SuccessfulScore {
				tr.logger.Infof("Reached the successful score %v at step %d", *tr.config.SuccessfulScore, tr.t)
				return nextObs, true, nil
			}
		}
	}
	return nextObs, false, nil
}

func (tr *Trainer) checkBatch(step *BatchStep) error {
	n := tr.numEnvs
	if step == nil {
		return fmt.Errorf("environment returned no step result")
	}
	if len(step.Rewards) != n || len(step.Dones) != n {
		return fmt.Errorf("environment returned %d rewards and %d done flags for %d instances", len(step.Rewards), len(step.Dones), n)
	}
	if step.Infos == nil {
		step.Infos = make([]Info, n)
	}
	if len(step.Infos) != n {
		return fmt.Errorf("environment returned %d infos for %d instances", len(step.Infos), n)
	}
	return nil
}

// appends <t>\t<mean> to the results file, nothing is written while the window is empty
func (tr *Trainer) writeTrainingReturns() error {
	mean, ok := tr.returns.Mean()
	if !ok {
		return nil
	}
	return util.AppendRow(filepath.Join(tr.outdir, TrainingReturnsFile), strconv.Itoa(tr.t), util.FormatFloat(mean))
}

func (tr *Trainer) logProgress() {
	avg := "n/a"
	if mean, ok := tr.returns.Mean(); ok {
		avg = util.FormatFloat(mean)
	}
	tr.logger.Infof("outdir:%s, step:%d, avg_r:%s, episode:%d", tr.outdir, tr.t, avg, tr.book.completed())
	tr.logger.Infof("statistics: %s", FormatStatistics(tr.agent.Statistics()))
}

func (tr *Trainer) closeEnvs() {
	if err := tr.env.Close(); err != nil {
		tr.logger.Errorf("Could not close the environment: %s", err)
	}
	if tr.config.Evaluator == nil {
		return
	}
	evalEnv := tr.config.Evaluator.Env()
	if evalEnv == nil || sameEnv(evalEnv, tr.env) {
		return
	}
	if err := evalEnv.Close(); err != nil {
		tr.logger.Errorf("Could not close the evaluation environment: %s", err)
	}
}

// interface equality panics on uncomparable dynamic types
func sameEnv(a, b VectorEnv) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// FormatStatistics prints the statistics as [(name, value), ...]
func FormatStatistics(stats []Statistic) string {
	parts := make([]string, len(stats))
	for i, s := range stats {
		parts[i] = fmt.Sprintf("(%s, %s)", s.Name, util.FormatFloat(s.Value))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// TrainAgentBatch trains the agent in the vector environment for the given number
// of total steps, see Trainer.Run
func TrainAgentBatch(ctx context.Context, agent BatchAgent, env VectorEnv, steps int, outdir string, config *TrainConfig) error {
	tr, err := NewTrainer(agent, env, steps, outdir, config)
	if err != nil {
		return err
	}
	return tr.Run(ctx)
}
