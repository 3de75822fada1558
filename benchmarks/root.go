package benchmarks

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	steps       int
	saveFile    string
	numEnvs     int
	logInterval int
	cpuprofile  string
	memprofile  string
)

// EnvPrefix of the environment variables overriding the flag defaults
const EnvPrefix = "BATCHRL_"

// loads the first .env file found, missing files are not an error
func loadDotEnv() {
	for _, envFile := range []string{
		".env",
		"../.env",
	} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
}

func envInt(name string, def int) int {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func envFloat(name string, def float64) float64 {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envString(name string, def string) string {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		return v
	}
	return def
}

func envBool(name string, def bool) bool {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func GetRootCommand() *cobra.Command {
	loadDotEnv()

	rootCommand := &cobra.Command{
		Use:          "batch-rl-train",
		Short:        "Train agents against batched environments",
		SilenceUsage: true,
	}
	rootCommand.PersistentFlags().IntVar(&steps, "steps", envInt("STEPS", 100000), "Number of total time steps for training")
	rootCommand.PersistentFlags().StringVarP(&saveFile, "save", "s", envString("SAVE", "results"), "Save the result data in the specified folder")
	rootCommand.PersistentFlags().IntVarP(&numEnvs, "num-envs", "n", envInt("NUM_ENVS", 4), "Number of parallel environment instances")
	rootCommand.PersistentFlags().IntVar(&logInterval, "log-interval", envInt("LOG_INTERVAL", 1000), "Interval, in steps, of the progress logs")
	rootCommand.PersistentFlags().StringVar(&cpuprofile, "cpuprofile", envString("CPUPROFILE", ""), "Write a cpu profile to this file in the save folder")
	rootCommand.PersistentFlags().StringVar(&memprofile, "memprofile", envString("MEMPROFILE", ""), "Write a memory profile to this file in the save folder")
	// adding the subcommands here
	rootCommand.AddCommand(GridTrainCommand())
	rootCommand.AddCommand(PlotCommand())
	return rootCommand
}
