package types

// StepHook is invoked once per training iteration, after the agent observed the step
type StepHook interface {
	OnStep(env VectorEnv, agent BatchAgent, step int) error
}

// StepHookFunc adapts a function to a StepHook
type StepHookFunc func(VectorEnv, BatchAgent, int) error

var _ StepHook = StepHookFunc(nil)

func (f StepHookFunc) OnStep(env VectorEnv, agent BatchAgent, step int) error {
	return f(env, agent, step)
}

// runs the hooks in registration order, stops at the first error
func runStepHooks(hooks []StepHook, env VectorEnv, agent BatchAgent, step int) error {
	for _, h := range hooks {
		if err := h.OnStep(env, agent, step); err != nil {
			return err
		}
	}
	return nil
}
