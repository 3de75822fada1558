package types

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ReplayBufferExt is the extension of the replay buffer checkpoint files
const ReplayBufferExt = "json"

// ReplayBufferPath returns <outdir>/<t><suffix>.replay.<ext>
func ReplayBufferPath(outdir string, t int, suffix string) string {
	return filepath.Join(outdir, fmt.Sprintf("%d%s.replay.%s", t, suffix, ReplayBufferExt))
}

func agentReplayBuffer(agent BatchAgent) (ReplayBuffer, bool) {
	h, ok := agent.(ReplayBufferHolder)
	if !ok {
		return nil, false
	}
	rb := h.ReplayBuffer()
	return rb, rb != nil
}

// SaveReplayBuffer writes the replay buffer of the agent, if it has one.
// Returns the path written to, empty if nothing was saved.
func SaveReplayBuffer(agent BatchAgent, t int, outdir string, suffix string, logger Logger) (string, error) {
	if logger == nil {
		logger = DefaultLogger()
	}
	rb, ok := agentReplayBuffer(agent)
	if !ok {
		return "", nil
	}
	filename := ReplayBufferPath(outdir, t, suffix)
	if err := rb.Save(filename); err != nil {
		return "", errors.Wrapf(err, "saving replay buffer to %s", filename)
	}
	logger.Infof("Saved the current replay buffer to %s", filename)
	return filename, nil
}

// Prompter asks a yes/no question
type Prompter interface {
	AskYesNo(question string) (bool, error)
}

// TerminalPrompter asks on Out and reads the answer from In
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

var _ Prompter = &TerminalPrompter{}

func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{
		In:     in,
		Out:    out,
		reader: bufio.NewReader(in),
	}
}

// AskYesNo repeats the question until the answer is y or n
func (p *TerminalPrompter) AskYesNo(question string) (bool, error) {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	for {
		fmt.Fprintf(p.Out, "%s [y/n] ", question)
		line, err := p.reader.ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		switch answer {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		if err != nil {
			return false, err
		}
	}
}

// ConfirmAndSaveReplayBuffer asks before saving a non empty replay buffer
func ConfirmAndSaveReplayBuffer(agent BatchAgent, t int, outdir string, suffix string, prompter Prompter, logger Logger) (string, error) {
	rb, ok := agentReplayBuffer(agent)
	if !ok || rb.Len() == 0 {
		return "", nil
	}
	yes, err := prompter.AskYesNo(fmt.Sprintf("Replay buffer has %d transitions. Do you save them to a file?", rb.Len()))
	if err != nil || !yes {
		return "", err
	}
	return SaveReplayBuffer(agent, t, outdir, suffix, logger)
}
