package grid

import (
	"fmt"

	"github.com/zeu5/batch-rl-train/types"
)

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// GridEnvironment is a stack of grids. The agent starts in the corner (0, 0) of the
// first grid, "Next" moves to the following grid from the exit cell. Reaching the
// exit cell of the last grid ends the episode with GoalReward.
type GridEnvironment struct {
	Height int
	Width  int
	Grids  int
	CurPos *Position
	Doors  []Door

	GoalReward float64
	StepReward float64
}

type Door struct {
	From Position
	To   Position
}

var _ types.Env = &GridEnvironment{}

func NewGridEnvironment(height, width, grids int, doors ...Door) *GridEnvironment {
	return &GridEnvironment{
		Height:     height,
		Width:      width,
		Grids:      grids,
		CurPos:     &Position{0, 0, 0},
		Doors:      doors,
		GoalReward: 1,
	}
}

// Exit is the cell of each grid from which "Next" moves to the following grid
func (g *GridEnvironment) Exit() (int, int) {
	return min(10, g.Height-1), min(10, g.Width-1)
}

// Goal is the exit cell of the last grid
func (g *GridEnvironment) Goal() Position {
	i, j := g.Exit()
	return Position{I: i, J: j, K: g.Grids - 1}
}

func (g *GridEnvironment) Reset() (types.State, error) {
	g.CurPos = &Position{0, 0, 0}
	return g.CurPos, nil
}

func (g *GridEnvironment) Step(a types.Action) (types.State, float64, bool, types.Info, error) {
	movement, ok := a.(*Movement)
	if !ok {
		return nil, 0, false, nil, fmt.Errorf("unknown grid action %v", a)
	}
	newPos := g.move(movement)
	g.CurPos = newPos
	info := types.Info{"position": newPos.Hash()}
	if newPos.Eq(g.Goal()) {
		return newPos, g.GoalReward, true, info, nil
	}
	return newPos, g.StepReward, false, info, nil
}

func (g *GridEnvironment) move(movement *Movement) *Position {
	newPos := &Position{I: g.CurPos.I, J: g.CurPos.J, K: g.CurPos.K}
	if movement.Direction == "Next" {
		for _, d := range g.Doors {
			if d.From.Eq(*g.CurPos) {
				newPos.I = d.To.I
				newPos.J = d.To.J
				newPos.K = d.To.K
				return newPos
			}
		}
	}

	switch movement.Direction {
	case "Nothing":
	case "Up":
		newPos.I = min(g.Height-1, g.CurPos.I+1)
	case "Down":
		newPos.I = max(0, g.CurPos.I-1)
	case "Left":
		newPos.J = max(0, g.CurPos.J-1)
	case "Right":
		newPos.J = min(g.Width-1, g.CurPos.J+1)
	case "Next":
		exitI, exitJ := g.Exit()
		if g.CurPos.I == exitI && g.CurPos.J == exitJ && g.CurPos.K < g.Grids-1 {
			newPos.I = 0
			newPos.J = 0
			newPos.K = g.CurPos.K + 1
		}
	}
	return newPos
}

// NewGridVectorEnv builds n identical grids batched in a vector env
func NewGridVectorEnv(n int, parallel bool, height, width, grids int, doors ...Door) types.VectorEnv {
	envs := make([]types.Env, n)
	for i := range envs {
		envs[i] = NewGridEnvironment(height, width, grids, doors...)
	}
	if parallel {
		return types.NewParallelVectorEnv(envs...)
	}
	return types.NewSerialVectorEnv(envs...)
}

type Position struct {
	I int
	J int
	K int
}

var _ types.State = &Position{}

func (p *Position) Hash() string {
	return fmt.Sprintf("(%d, %d, %d)", p.I, p.J, p.K)
}

func (p *Position) Eq(other Position) bool {
	return p.I == other.I && p.J == other.J && p.K == other.K
}

func (p *Position) Actions() []types.Action {
	if p.I == 0 && p.J == 0 {
		return []types.Action{NoMovement, NextGridMovement, MovementUp, MovementRight}
	} else if p.I == 0 {
		return []types.Action{NoMovement, NextGridMovement, MovementUp, MovementRight, MovementLeft}
	} else if p.J == 0 {
		return []types.Action{NoMovement, NextGridMovement, MovementUp, MovementRight, MovementDown}
	}
	return AllMovements
}

type Movement struct {
	Direction string
}

var _ types.Action = &Movement{}

func (m *Movement) Hash() string {
	return m.Direction
}

var (
	MovementUp                      = &Movement{"Up"}
	MovementDown                    = &Movement{"Down"}
	MovementLeft                    = &Movement{"Left"}
	MovementRight                   = &Movement{"Right"}
	NoMovement                      = &Movement{"Nothing"}
	NextGridMovement                = &Movement{"Next"}
	AllMovements     []types.Action = []types.Action{
		MovementUp,
		MovementDown,
		MovementLeft,
		MovementRight,
		NoMovement,
		NextGridMovement,
	}
)
