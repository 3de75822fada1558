package types

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	SuffixExcept = "_except"
	SuffixFinish = "_finish"
)

// ErrConfiguration is the cause of every error raised because of an invalid
// training setup
var ErrConfiguration = errors.New("configuration error")

func configError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrConfiguration, format, args...)
}

// AgentDir is the directory an agent is saved to at step t
func AgentDir(outdir string, t int, suffix string) string {
	return filepath.Join(outdir, fmt.Sprintf("%d%s", t, suffix))
}

// SaveAgent persists the agent to <outdir>/<t><suffix> if it implements Saver
func SaveAgent(agent BatchAgent, t int, outdir string, suffix string, logger Logger) error {
	if logger == nil {
		logger = DefaultLogger()
	}
	saver, ok := agent.(Saver)
	if !ok {
		logger.Infof("Agent %T cannot be saved, skipping checkpoint at step %d", agent, t)
		return nil
	}
	dir := AgentDir(outdir, t, suffix)
	if err := saver.Save(dir); err != nil {
		return errors.Wrapf(err, "saving agent to %s", dir)
	}
	logger.Infof("Saved the agent to %s", dir)
	return nil
}
