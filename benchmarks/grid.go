package benchmarks

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/zeu5/batch-rl-train/grid"
	"github.com/zeu5/batch-rl-train/redisstats"
	"github.com/zeu5/batch-rl-train/status"
	"github.com/zeu5/batch-rl-train/types"
	"github.com/zeu5/batch-rl-train/util"
)

// GridTrainConfig contains the parameters of a grid training run
type GridTrainConfig struct {
	RunID   string
	Outdir  string
	Steps   int
	NumEnvs int

	// grid
	Height   int
	Width    int
	Grids    int
	Parallel bool

	// agent
	Agent types.SoftmaxQConfig

	// loop
	LogInterval      int
	MaxEpisodeLen    int
	EvalInterval     int
	EvalRuns         int
	StepOffset       int
	SuccessfulScore  *float64
	ReturnWindowSize int
	SaveTrainingR    bool

	// outputs
	Progress   bool
	StatusPort int
	RedisAddr  string
	AskReplay  bool
}

// Printable returns the configuration as text, stored next to the results
func (c *GridTrainConfig) Printable() string {
	score := "unset"
	if c.SuccessfulScore != nil {
		score = fmt.Sprintf("%v", *c.SuccessfulScore)
	}
	return fmt.Sprintf("Run: %s\nSteps: %d\nEnvs: %d (parallel: %t)\nGrid: %dx%dx%d\n"+
		"Alpha: %v, Gamma: %v, Temperature: %v, Replay: %d\n"+
		"LogInterval: %d, MaxEpisodeLen: %d, EvalInterval: %d, EvalRuns: %d\n"+
		"StepOffset: %d, SuccessfulScore: %s, ReturnWindow: %d",
		c.RunID, c.Steps, c.NumEnvs, c.Parallel, c.Height, c.Width, c.Grids,
		c.Agent.Alpha, c.Agent.Gamma, c.Agent.Temperature, c.Agent.ReplayCapacity,
		c.LogInterval, c.MaxEpisodeLen, c.EvalInterval, c.EvalRuns,
		c.StepOffset, score, c.ReturnWindowSize)
}

// GridTrain trains a SoftmaxQAgent on a batch of grids, evaluating it on a
// separate batch, and plots the results
func GridTrain(ctx context.Context, cfg *GridTrainConfig) error {
	if err := util.EnsureDir(cfg.Outdir); err != nil {
		return err
	}
	if err := util.AppendToFile(path.Join(cfg.Outdir, "config.txt"), cfg.Printable()); err != nil {
		return err
	}

	stopProfiling, err := startProfiling(cfg.Outdir)
	if err != nil {
		return err
	}
	defer stopProfiling()

	env := grid.NewGridVectorEnv(cfg.NumEnvs, cfg.Parallel, cfg.Height, cfg.Width, cfg.Grids)
	evalEnv := grid.NewGridVectorEnv(cfg.NumEnvs, cfg.Parallel, cfg.Height, cfg.Width, cfg.Grids)
	agent := types.NewSoftmaxQAgent(cfg.Agent)

	hooks := make([]types.StepHook, 0)
	if cfg.Progress {
		hooks = append(hooks, types.NewProgressHook(os.Stdout, cfg.Steps, cfg.LogInterval))
	}
	if cfg.StatusPort > 0 {
		server := status.NewServer(cfg.RunID, cfg.StatusPort, cfg.Steps, cfg.LogInterval)
		server.Start(ctx)
		defer server.Shutdown()
		hooks = append(hooks, server)
	}
	if cfg.RedisAddr != "" {
		client := redisstats.NewClient(cfg.RedisAddr)
		defer client.Close()
		hooks = append(hooks, redisstats.NewPublisher(client, "batch-rl-train", cfg.RunID, cfg.LogInterval))
	}

	err = types.TrainAgentBatchWithEvaluation(ctx, agent, env, cfg.Steps, cfg.Outdir, &types.EvaluationConfig{
		EvalNRuns:          cfg.EvalRuns,
		EvalInterval:       cfg.EvalInterval,
		MaxEpisodeLen:      cfg.MaxEpisodeLen,
		StepOffset:         cfg.StepOffset,
		EvalEnv:            evalEnv,
		ReturnWindowSize:   cfg.ReturnWindowSize,
		LogInterval:        cfg.LogInterval,
		SuccessfulScore:    cfg.SuccessfulScore,
		StepHooks:          hooks,
		SaveBestSoFarAgent: true,
		SaveTrainingR:      cfg.SaveTrainingR,
	})
	fmt.Println("")
	if cfg.AskReplay {
		prompter := types.NewTerminalPrompter(os.Stdin, os.Stdout)
		if _, rerr := types.ConfirmAndSaveReplayBuffer(agent, cfg.Steps, cfg.Outdir, "", prompter, nil); rerr != nil {
			fmt.Println("could not save the replay buffer: ", rerr)
		}
	}
	if err != nil {
		return err
	}
	plotResults(cfg.Outdir)
	return nil
}

func plotResults(outdir string) {
	if p, err := types.PlotTrainingReturns(outdir); err == nil {
		fmt.Println("Plotted training returns to ", p)
	} else {
		fmt.Println("could not plot training returns: ", err)
	}
	if p, err := types.PlotEvaluationScores(outdir); err == nil {
		fmt.Println("Plotted evaluation scores to ", p)
	} else {
		fmt.Println("could not plot evaluation scores: ", err)
	}
}

func GridTrainCommand() *cobra.Command {
	cfg := &GridTrainConfig{}
	var successfulScore float64

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Train a softmax Q agent on batched grids",
		RunE: func(cmd *cobra.Command, args []string) error {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt) // channel for interrupts from os
			defer signal.Stop(sigCh)

			doneCh := make(chan struct{}) // channel for done signal from application
			defer close(doneCh)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go func() {
				select {
				case <-sigCh:
				case <-doneCh:
				}
				cancel()
			}()

			cfg.RunID = uuid.New().String()
			cfg.Outdir = path.Join(saveFile, cfg.RunID)
			cfg.Steps = steps
			cfg.NumEnvs = numEnvs
			cfg.LogInterval = logInterval
			if cmd.Flags().Changed("successful-score") || os.Getenv(EnvPrefix+"SUCCESSFUL_SCORE") != "" {
				cfg.SuccessfulScore = types.Score(successfulScore)
			}
			fmt.Printf("Run %s, saving to %s\n", cfg.RunID, cfg.Outdir)
			return GridTrain(ctx, cfg)
		},
	}
	flags := cmd.PersistentFlags()
	flags.IntVar(&cfg.Height, "height", envInt("HEIGHT", 5), "Height of each grid")
	flags.IntVar(&cfg.Width, "width", envInt("WIDTH", 5), "Width of each grid")
	flags.IntVar(&cfg.Grids, "grids", envInt("GRIDS", 2), "Number of grids")
	flags.BoolVar(&cfg.Parallel, "parallel", envBool("PARALLEL", false), "Step the environment instances concurrently")

	flags.Float64Var(&cfg.Agent.Alpha, "alpha", envFloat("ALPHA", 0.1), "Learning rate")
	flags.Float64Var(&cfg.Agent.Gamma, "gamma", envFloat("GAMMA", 0.99), "Discount factor")
	flags.Float64Var(&cfg.Agent.Temperature, "temperature", envFloat("TEMPERATURE", 0.1), "Softmax temperature")
	flags.IntVar(&cfg.Agent.ReplayCapacity, "replay-capacity", envInt("REPLAY_CAPACITY", 10000), "Capacity of the replay buffer")

	flags.IntVar(&cfg.MaxEpisodeLen, "max-episode-len", envInt("MAX_EPISODE_LEN", 100), "Maximum episode length, 0 to disable")
	flags.IntVar(&cfg.EvalInterval, "eval-interval", envInt("EVAL_INTERVAL", 10000), "Interval of evaluation")
	flags.IntVar(&cfg.EvalRuns, "eval-runs", envInt("EVAL_RUNS", 10), "Number of episodes for each evaluation")
	flags.IntVar(&cfg.StepOffset, "step-offset", envInt("STEP_OFFSET", 0), "Time step from which training starts")
	flags.Float64Var(&successfulScore, "successful-score", envFloat("SUCCESSFUL_SCORE", 0), "Stop training once the evaluation score reaches this value")
	flags.IntVar(&cfg.ReturnWindowSize, "return-window-size", envInt("RETURN_WINDOW_SIZE", types.DefaultReturnWindowSize), "Number of recent returns averaged in the logs")
	flags.BoolVar(&cfg.SaveTrainingR, "save-training-r", envBool("SAVE_TRAINING_R", true), "Save the mean recent return to "+types.TrainingReturnsFile)

	flags.BoolVar(&cfg.Progress, "progress", envBool("PROGRESS", true), "Print the progress to the terminal")
	flags.IntVar(&cfg.StatusPort, "status-port", envInt("STATUS_PORT", 0), "Serve the training status on this port, 0 to disable")
	flags.StringVar(&cfg.RedisAddr, "redis", envString("REDIS", ""), "Publish the training status to this redis server")
	flags.BoolVar(&cfg.AskReplay, "ask-replay", envBool("ASK_REPLAY", false), "Ask to save the replay buffer at the end")
	return cmd
}

func PlotCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plot [OUTDIR]",
		Short: "Plot the training returns and evaluation scores of a run",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			plotResults(args[0])
		},
	}
}
