package types

// BatchAgent is trained against a vector environment
type BatchAgent interface {
	// BatchActAndTrain selects one action per instance in training mode
	BatchActAndTrain(obs []State) ([]Action, error)
	// BatchObserveAndTrain delivers the outcome of the last step.
	// obs are the observations after the selective reset.
	BatchObserveAndTrain(obs []State, rewards []float64, dones []bool, infos []Info) error
	// Statistics reported when logging progress
	Statistics() []Statistic
}

// Statistic is a named value reported by an agent
type Statistic struct {
	Name  string
	Value float64
}

// BatchActor selects actions without training, used for evaluation
type BatchActor interface {
	BatchAct(obs []State) ([]Action, error)
}

// StepCounter is implemented by agents that keep their own step counter
type StepCounter interface {
	SetStep(int)
}

// Saver is implemented by agents that can be persisted to a directory
type Saver interface {
	Save(dir string) error
}

// ReplayBuffer owned by an agent
type ReplayBuffer interface {
	Len() int
	Save(path string) error
}

// ReplayBufferHolder is implemented by agents that own a replay buffer
type ReplayBufferHolder interface {
	ReplayBuffer() ReplayBuffer
}
