package types

import (
	"context"

	"github.com/zeu5/batch-rl-train/util"
)

// EvaluationAgent is a batch agent that can also act greedily for evaluation
type EvaluationAgent interface {
	BatchAgent
	BatchActor
}

// EvaluationConfig configures TrainAgentBatchWithEvaluation
type EvaluationConfig struct {
	EvalNRuns          int
	EvalInterval       int
	MaxEpisodeLen      int
	StepOffset         int
	EvalMaxEpisodeLen  int       // defaults to MaxEpisodeLen
	EvalEnv            VectorEnv // defaults to the training env
	ReturnWindowSize   int
	LogInterval        int
	SuccessfulScore    *float64
	StepHooks          []StepHook
	SaveBestSoFarAgent bool
	SaveTrainingR      bool
	Logger             Logger
}

// TrainAgentBatchWithEvaluation trains the agent while regularly evaluating it
// with a BatchEvaluator
func TrainAgentBatchWithEvaluation(ctx context.Context, agent EvaluationAgent, env VectorEnv, steps int, outdir string, config *EvaluationConfig) error {
	if err := util.EnsureDir(outdir); err != nil {
		return err
	}
	evalEnv := config.EvalEnv
	if evalEnv == nil {
		evalEnv = env
	}
	evalMaxEpisodeLen := config.EvalMaxEpisodeLen
	if evalMaxEpisodeLen == 0 {
		evalMaxEpisodeLen = config.MaxEpisodeLen
	}
	logInterval := config.LogInterval
	if logInterval == 0 {
		logInterval = config.EvalInterval
	}

	evaluator, err := NewBatchEvaluator(&BatchEvaluatorConfig{
		Agent:              agent,
		Env:                evalEnv,
		NRuns:              config.EvalNRuns,
		EvalInterval:       config.EvalInterval,
		Outdir:             outdir,
		MaxEpisodeLen:      evalMaxEpisodeLen,
		StepOffset:         config.StepOffset,
		SaveBestSoFarAgent: config.SaveBestSoFarAgent,
		Logger:             config.Logger,
	})
	if err != nil {
		return err
	}

	return TrainAgentBatch(ctx, agent, env, steps, outdir, &TrainConfig{
		LogInterval:      logInterval,
		MaxEpisodeLen:    config.MaxEpisodeLen,
		EvalInterval:     config.EvalInterval,
		Evaluator:        evaluator,
		StepOffset:       config.StepOffset,
		SuccessfulScore:  config.SuccessfulScore,
		StepHooks:        config.StepHooks,
		ReturnWindowSize: config.ReturnWindowSize,
		SaveTrainingR:    config.SaveTrainingR,
		Logger:           config.Logger,
	})
}
