package types

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// SerialVectorEnv batches single environments and steps them one after the other
type SerialVectorEnv struct {
	envs    []Env
	lastObs []State
	// runs fn for every instance, serially or concurrently
	each func(n int, fn func(i int) error) error
}

var _ VectorEnv = &SerialVectorEnv{}
var _ Sizer = &SerialVectorEnv{}

func NewSerialVectorEnv(envs ...Env) *SerialVectorEnv {
	return &SerialVectorEnv{
		envs:    envs,
		lastObs: make([]State, len(envs)),
		each:    serialEach,
	}
}

// ParallelVectorEnv steps each instance in its own goroutine
type ParallelVectorEnv struct {
	*SerialVectorEnv
}

var _ VectorEnv = &ParallelVectorEnv{}
var _ Sizer = &ParallelVectorEnv{}

func NewParallelVectorEnv(envs ...Env) *ParallelVectorEnv {
	s := NewSerialVectorEnv(envs...)
	s.each = parallelEach
	return &ParallelVectorEnv{SerialVectorEnv: s}
}

func serialEach(n int, fn func(i int) error) error {
	for i := 0; i < n; i++ {
		if err := fn(i); err != nil {
			return err
		}
	}
	return nil
}

func parallelEach(n int, fn func(i int) error) error {
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			return fn(i)
		})
	}
	return g.Wait()
}

func (v *SerialVectorEnv) NumEnvs() int {
	return len(v.envs)
}

func (v *SerialVectorEnv) Reset() ([]State, error) {
	err := v.each(len(v.envs), func(i int) error {
		s, err := v.envs[i].Reset()
		if err != nil {
			return fmt.Errorf("resetting instance %d: %w", i, err)
		}
		v.lastObs[i] = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return v.observations(), nil
}

func (v *SerialVectorEnv) ResetMasked(mask []bool) ([]State, error) {
	if len(mask) != len(v.envs) {
		return nil, fmt.Errorf("reset mask has %d entries for %d instances", len(mask), len(v.envs))
	}
	err := v.each(len(v.envs), func(i int) error {
		if mask[i] {
			return nil
		}
		s, err := v.envs[i].Reset()
		if err != nil {
			return fmt.Errorf("resetting instance %d: %w", i, err)
		}
		v.lastObs[i] = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return v.observations(), nil
}

func (v *SerialVectorEnv) Step(actions []Action) (*BatchStep, error) {
	n := len(v.envs)
	if len(actions) != n {
		return nil, fmt.Errorf("got %d actions for %d instances", len(actions), n)
	}
	step := &BatchStep{
		Observations: make([]State, n),
		Rewards:      make([]float64, n),
		Dones:        make([]bool, n),
		Infos:        make([]Info, n),
	}
	err := v.each(n, func(i int) error {
		s, r, done, info, err := v.envs[i].Step(actions[i])
		if err != nil {
			return fmt.Errorf("stepping instance %d: %w", i, err)
		}
		if info == nil {
			info = make(Info)
		}
		v.lastObs[i] = s
		step.Observations[i] = s
		step.Rewards[i] = r
		step.Dones[i] = done
		step.Infos[i] = info
		return nil
	})
	if err != nil {
		return nil, err
	}
	return step, nil
}

// Close closes every instance that holds resources, returning the first error
func (v *SerialVectorEnv) Close() error {
	var first error
	for _, e := range v.envs {
		if c, ok := e.(EnvCloser); ok {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

func (v *SerialVectorEnv) observations() []State {
	out := make([]State, len(v.lastObs))
	copy(out, v.lastObs)
	return out
}
