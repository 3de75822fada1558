package main

import (
	"fmt"
	"os"

	"github.com/zeu5/batch-rl-train/benchmarks"
)

// main entry point to the training commands
func main() {
	rootCommand := benchmarks.GetRootCommand()
	if err := rootCommand.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
