package types

// State of the system that the agent observes
type State interface {
	// Indexed by the Hash
	// Should be deterministic
	Hash() string
	// Actions possible from the state
	Actions() []Action
}

// And Action that the agent can take
type Action interface {
	// Index of the action
	// Should be deterministic
	Hash() string
}

// Info carries per-instance extra information returned by a step.
// The training loop adds the "reset" key to mark truncated episodes.
type Info map[string]interface{}

// InfoResetKey is set to true in the Info of an instance whose episode
// was truncated because it reached the maximum episode length
const InfoResetKey = "reset"

// Truncated reports whether the episode of this instance was force reset
func (i Info) Truncated() bool {
	if i == nil {
		return false
	}
	r, ok := i[InfoResetKey].(bool)
	return ok && r
}

// BatchStep is the result of stepping all the instances of a vector environment.
// All slices are indexed by the instance slot.
type BatchStep struct {
	Observations []State
	Rewards      []float64
	Dones        []bool
	Infos        []Info
}

// VectorEnv simulates N independent environment instances in lockstep
type VectorEnv interface {
	// Reset all the instances
	Reset() ([]State, error)
	// ResetMasked resets the instances where mask is false.
	// The returned batch contains, for the other instances, the observation
	// of the last step.
	ResetMasked(mask []bool) ([]State, error)
	// Step all the instances with one action each
	Step(actions []Action) (*BatchStep, error)
	// Close releases the instances
	Close() error
}

// Sizer is implemented by vector environments that expose the number of instances
type Sizer interface {
	NumEnvs() int
}

// Env is a single environment instance that can be batched with a vector env adapter
type Env interface {
	Reset() (State, error)
	// Step returns the next state, the reward, whether the episode ended and extra info
	Step(Action) (State, float64, bool, Info, error)
}

// EnvCloser is implemented by single environments that hold resources
type EnvCloser interface {
	Close() error
}
