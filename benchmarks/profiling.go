package benchmarks

import (
	"fmt"
	"os"
	"path"
	"runtime"
	"runtime/pprof"
)

// startProfiling starts the cpu profile if requested, the returned function
// stops it and writes the memory profile
func startProfiling(outdir string) (func(), error) {
	stop := func() {}
	if cpuprofile != "" {
		cpuProfPath := path.Join(outdir, cpuprofile)
		fmt.Println("Profiling CPU to ", cpuProfPath)
		f, err := os.Create(cpuProfPath)
		if err != nil {
			return stop, fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return stop, fmt.Errorf("could not start CPU profile: %w", err)
		}
		stop = func() {
			pprof.StopCPUProfile()
			f.Close()
		}
	}

	return func() {
		stop()
		if memprofile == "" {
			return
		}
		memProfPath := path.Join(outdir, memprofile)
		fmt.Println("Profiling Memory to ", memProfPath)
		f, err := os.Create(memProfPath)
		if err != nil {
			fmt.Println("could not create memory profile: ", err)
			return
		}
		defer f.Close()
		runtime.GC() // get up-to-date statistics
		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Println("could not write memory profile: ", err)
		}
	}, nil
}
