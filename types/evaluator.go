package types

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/zeu5/batch-rl-train/util"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Evaluator periodically evaluates the agent being trained
type Evaluator interface {
	// EvaluateIfNecessary evaluates the agent if it is due at step t.
	// episodes holds, per instance slot, the number of training episodes so far.
	// Returns the score and whether an evaluation was run.
	EvaluateIfNecessary(t int, episodes []int) (float64, bool, error)
	// MaxScore is the best score seen so far
	MaxScore() float64
	// Env used for evaluation, closed by the training loop if distinct
	Env() VectorEnv
}

// ScoresFile is written by the BatchEvaluator inside the output directory
const ScoresFile = "scores.txt"

// BestAgentDir is where the BatchEvaluator saves the best agent
const BestAgentDir = "best"

var scoresHeader = []string{"steps", "episodes", "elapsed", "mean", "median", "stdev", "max", "min"}

// EvaluationScores summarizes the returns of the evaluation episodes
type EvaluationScores struct {
	Mean   float64
	Median float64
	Stdev  float64
	Max    float64
	Min    float64
}

// NewEvaluationScores computes the summary, the returns are not modified
func NewEvaluationScores(returns []float64) EvaluationScores {
	if len(returns) == 0 {
		return EvaluationScores{}
	}
	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	stdev := 0.0
	if len(sorted) > 1 {
		stdev = stat.StdDev(sorted, nil)
	}
	return EvaluationScores{
		Mean:   stat.Mean(sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Stdev:  stdev,
		Max:    floats.Max(sorted),
		Min:    floats.Min(sorted),
	}
}

// BatchEvaluatorConfig configures a BatchEvaluator
type BatchEvaluatorConfig struct {
	Agent         BatchActor
	Env           VectorEnv
	NRuns         int // number of evaluation episodes
	EvalInterval  int
	Outdir        string
	MaxEpisodeLen int
	StepOffset    int
	// save the agent to <outdir>/best whenever the max score improves
	SaveBestSoFarAgent bool
	Logger             Logger
}

// BatchEvaluator runs evaluation episodes on a vector environment every EvalInterval steps
type BatchEvaluator struct {
	config    *BatchEvaluatorConfig
	logger    Logger
	numEnvs   int
	maxScore  float64
	prevEvalT int
	start     time.Time
}

var _ Evaluator = &BatchEvaluator{}

// NewBatchEvaluator writes the scores file header and returns the evaluator
func NewBatchEvaluator(config *BatchEvaluatorConfig) (*BatchEvaluator, error) {
	logger := config.Logger
	if logger == nil {
		logger = DefaultLogger()
	}
	if config.EvalInterval <= 0 || config.NRuns <= 0 {
		return nil, configError("evaluation interval and runs must be positive, got %d and %d", config.EvalInterval, config.NRuns)
	}
	sizer, ok := config.Env.(Sizer)
	if !ok || sizer.NumEnvs() < 1 {
		return nil, configError("evaluation environment %T does not expose the number of instances", config.Env)
	}
	if err := util.EnsureDir(config.Outdir); err != nil {
		return nil, err
	}
	if err := util.AppendRow(filepath.Join(config.Outdir, ScoresFile), scoresHeader...); err != nil {
		return nil, err
	}
	return &BatchEvaluator{
		config:    config,
		logger:    logger,
		numEnvs:   sizer.NumEnvs(),
		maxScore:  math.Inf(-1),
		prevEvalT: config.StepOffset - config.StepOffset%config.EvalInterval,
		start:     time.Now(),
	}, nil
}

func (e *BatchEvaluator) MaxScore() float64 {
	return e.maxScore
}

func (e *BatchEvaluator) Env() VectorEnv {
	return e.config.Env
}

func (e *BatchEvaluator) EvaluateIfNecessary(t int, episodes []int) (float64, bool, error) {
	if t < e.prevEvalT+e.config.EvalInterval {
		return 0, false, nil
	}
	score, err := e.evaluateAndUpdateMaxScore(t, episodes)
	if err != nil {
		return 0, false, err
	}
	e.prevEvalT = t - t%e.config.EvalInterval
	return score, true, nil
}

func (e *BatchEvaluator) evaluateAndUpdateMaxScore(t int, episodes []int) (float64, error) {
	returns, err := RunEvaluationEpisodes(e.config.Agent, e.config.Env, e.numEnvs, e.config.NRuns, e.config.MaxEpisodeLen)
	if err != nil {
		return 0, err
	}
	scores := NewEvaluationScores(returns)

	total := 0
	for _, ep := range episodes {
		total += ep
	}
	elapsed := time.Since(e.start).Seconds()
	row := []string{
		strconv.Itoa(t),
		strconv.Itoa(total),
		util.FormatFloat(elapsed),
		util.FormatFloat(scores.Mean),
		util.FormatFloat(scores.Median),
		util.FormatFloat(scores.Stdev),
		util.FormatFloat(scores.Max),
		util.FormatFloat(scores.Min),
	}
	if err := util.AppendRow(filepath.Join(e.config.Outdir, ScoresFile), row...); err != nil {
		return 0, err
	}

	if scores.Mean > e.maxScore {
		e.logger.Infof("The best score is updated %v -> %v", e.maxScore, scores.Mean)
		e.maxScore = scores.Mean
		if e.config.SaveBestSoFarAgent {
			if err := e.saveBest(); err != nil {
				return 0, err
			}
		}
	}
	return scores.Mean, nil
}

func (e *BatchEvaluator) saveBest() error {
	saver, ok := e.config.Agent.(Saver)
	if !ok {
		return nil
	}
	dir := filepath.Join(e.config.Outdir, BestAgentDir)
	if err := saver.Save(dir); err != nil {
		return fmt.Errorf("saving best agent to %s: %w", dir, err)
	}
	e.logger.Infof("Saved the best agent to %s", dir)
	return nil
}

// RunEvaluationEpisodes runs nRuns episodes with the actor, without training, and
// returns their returns. Episodes end on done or after maxEpisodeLen steps (if set).
// Instances keep running until enough episodes are collected; the returns of the
// first nRuns episodes to end are kept.
func RunEvaluationEpisodes(actor BatchActor, env VectorEnv, numEnvs int, nRuns int, maxEpisodeLen int) ([]float64, error) {
	obs, err := env.Reset()
	if err != nil {
		return nil, err
	}
	book := newEpisodeBook(numEnvs)
	window := NewReturnWindow(nRuns)
	for window.Len() < nRuns {
		actions, err := actor.BatchAct(obs)
		if err != nil {
			return nil, err
		}
		step, err := env.Step(actions)
		if err != nil {
			return nil, err
		}
		if len(step.Rewards) != numEnvs || len(step.Dones) != numEnvs {
			return nil, fmt.Errorf("environment returned %d rewards and %d done flags for %d instances", len(step.Rewards), len(step.Dones), numEnvs)
		}
		resets := book.resetMask(maxEpisodeLen)
		mask := continuationMask(step.Dones, resets)

		// only record as many episodes as still needed
		for i := range mask {
			if !mask[i] && window.Len() >= nRuns {
				mask[i] = true
			}
			book.returns[i] += step.Rewards[i]
			book.lens[i] += 1
			if !mask[i] {
				book.idx[i] += 1
				window.Append(book.returns[i])
				book.returns[i] = 0
				book.lens[i] = 0
			}
		}
		if window.Len() >= nRuns {
			break
		}
		obs, err = env.ResetMasked(mask)
		if err != nil {
			return nil, err
		}
	}
	return window.Values(), nil
}
