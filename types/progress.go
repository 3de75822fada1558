package types

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gosuri/uilive"
)

// ProgressHook prints the training progress on a single, continuously
// updated, terminal line
type ProgressHook struct {
	totalSteps int
	frequency  int
	started    time.Time

	writer *uilive.Writer
}

var _ StepHook = &ProgressHook{}

// NewProgressHook prints every frequency steps to out
func NewProgressHook(out io.Writer, totalSteps, frequency int) *ProgressHook {
	if frequency < 1 {
		frequency = 1
	}
	writer := uilive.New()
	writer.Out = out
	return &ProgressHook{
		totalSteps: totalSteps,
		frequency:  frequency,
		writer:     writer,
	}
}

func (p *ProgressHook) OnStep(_ VectorEnv, agent BatchAgent, step int) error {
	if p.started.IsZero() {
		p.started = time.Now()
	}
	if step%p.frequency != 0 && step < p.totalSteps {
		return nil
	}
	fmt.Fprintln(p.writer, p.line(agent, step))
	return p.writer.Flush()
}

func (p *ProgressHook) line(agent BatchAgent, step int) string {
	padding := len(strconv.Itoa(p.totalSteps))
	percent := float32(step) / float32(p.totalSteps) * 100
	return fmt.Sprintf("Steps:%*d/%d [%5.1f%%] || Elapsed: %s || %s",
		padding, step, p.totalSteps, percent, time.Since(p.started).Truncate(time.Second), FormatStatistics(agent.Statistics()))
}
