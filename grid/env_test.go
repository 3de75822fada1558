package grid

import (
	"testing"

	"github.com/zeu5/batch-rl-train/types"
)

func stepAll(t *testing.T, g *GridEnvironment, moves ...*Movement) (types.State, float64, bool) {
	var s types.State
	var r float64
	var done bool
	var err error
	for _, m := range moves {
		s, r, done, _, err = g.Step(m)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
	}
	return s, r, done
}

func TestGridMoves(t *testing.T) {
	g := NewGridEnvironment(3, 3, 2)
	s, _, done := stepAll(t, g, MovementDown, MovementLeft)
	if s.Hash() != "(0, 0, 0)" || done {
		t.Errorf("moves out of the grid should be ignored, at %s", s.Hash())
	}
	s, _, _ = stepAll(t, g, NextGridMovement)
	if s.Hash() != "(0, 0, 0)" {
		t.Errorf("next only moves from the exit, at %s", s.Hash())
	}
	s, _, _ = stepAll(t, g, MovementUp, MovementUp, MovementUp, MovementRight, MovementRight, MovementRight)
	if s.Hash() != "(2, 2, 0)" {
		t.Errorf("expected the exit (2, 2, 0), at %s", s.Hash())
	}
	s, r, done := stepAll(t, g, NextGridMovement)
	if s.Hash() != "(0, 0, 1)" || done || r != 0 {
		t.Errorf("expected to be at the start of the next grid, at %s", s.Hash())
	}
	s, r, done = stepAll(t, g, MovementUp, MovementUp, MovementRight, MovementRight)
	if !done || r != 1 {
		t.Errorf("reaching the goal %s should end the episode with reward 1", s.Hash())
	}

	if s, _ := g.Reset(); s.Hash() != "(0, 0, 0)" {
		t.Errorf("reset should return the start, got %s", s.Hash())
	}
}

func TestGridDoors(t *testing.T) {
	g := NewGridEnvironment(5, 5, 2, Door{From: Position{0, 0, 0}, To: Position{4, 3, 1}})
	s, _, done := stepAll(t, g, NextGridMovement)
	if s.Hash() != "(4, 3, 1)" || done {
		t.Errorf("expected to go through the door, at %s", s.Hash())
	}
	_, r, done := stepAll(t, g, MovementRight)
	if !done || r != g.GoalReward {
		goal := g.Goal()
		t.Errorf("expected to reach goal %s", goal.Hash())
	}
}

type unknownAction struct{}

func (unknownAction) Hash() string { return "unknown" }

func TestGridUnknownAction(t *testing.T) {
	g := NewGridEnvironment(2, 2, 1)
	if _, _, _, _, err := g.Step(unknownAction{}); err == nil {
		t.Errorf("expected an error for an unknown action")
	}
}

func TestGridActions(t *testing.T) {
	if n := len((&Position{0, 0, 0}).Actions()); n != 4 {
		t.Errorf("expected 4 actions in the corner, got %d", n)
	}
	if n := len((&Position{1, 1, 0}).Actions()); n != len(AllMovements) {
		t.Errorf("expected all actions in the middle, got %d", n)
	}
}

func TestGridVectorEnv(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		v := NewGridVectorEnv(3, parallel, 3, 3, 1)
		if v.(types.Sizer).NumEnvs() != 3 {
			t.Errorf("expected 3 instances")
		}
		obs, err := v.Reset()
		if err != nil || len(obs) != 3 {
			t.Fatalf("unexpected reset: %v %v", obs, err)
		}
		step, err := v.Step([]types.Action{MovementUp, MovementRight, NoMovement})
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		hashes := []string{"(1, 0, 0)", "(0, 1, 0)", "(0, 0, 0)"}
		for i, h := range hashes {
			if step.Observations[i].Hash() != h {
				t.Errorf("instance %d: expected %s, got %s", i, h, step.Observations[i].Hash())
			}
			if step.Infos[i]["position"] != h {
				t.Errorf("instance %d: position info missing", i)
			}
		}
	}
}
