package battle

import "github.com/vovakirdan/skirmish/internal/core"

// Result is the outcome of a victory evaluation.
type Result int

const (
	ResultNone Result = iota
	ResultPlayer1Wins
	ResultPlayer2Wins
	ResultDraw
)

// String returns a human-readable name for the result.
func (r Result) String() string {
	switch r {
	case ResultNone:
		return "none"
	case ResultPlayer1Wins:
		return "player1_wins"
	case ResultPlayer2Wins:
		return "player2_wins"
	case ResultDraw:
		return "draw"
	default:
		return "unknown"
	}
}

// Winner returns the winning side, or SideNone for draws and open games.
func (r Result) Winner() core.Side {
	switch r {
	case ResultPlayer1Wins:
		return core.Player1
	case ResultPlayer2Wins:
		return core.Player2
	default:
		return core.SideNone
	}
}

// WinFor returns the result in which side wins.
func WinFor(side core.Side) Result {
	switch side {
	case core.Player1:
		return ResultPlayer1Wins
	case core.Player2:
		return ResultPlayer2Wins
	default:
		return ResultNone
	}
}

// VictoryState is the read-only view victory conditions evaluate.
type VictoryState struct {
	Turn      int
	Player1   int // Live units
	Player2   int
	Unbounded bool
}

// Evaluation is what a single condition concludes.
type Evaluation struct {
	Result          Result
	EnableUnbounded bool
}

// Condition is a named pure predicate over a VictoryState.
type Condition struct {
	Name  string
	Check func(VictoryState) Evaluation
}

// Verdict is the combined outcome of evaluating an ordered condition list.
type Verdict struct {
	Result          Result
	Condition       string // Name of the condition that produced Result
	EnableUnbounded bool
}

// Evaluate runs conditions in order; the first non-none result wins.
// Latch requests from every condition evaluated up to that point are kept.
func Evaluate(conds []Condition, st VictoryState) Verdict {
	var v Verdict
	for _, c := range conds {
		e := c.Check(st)
		if e.EnableUnbounded {
			v.EnableUnbounded = true
		}
		if e.Result != ResultNone {
			v.Result = e.Result
			v.Condition = c.Name
			return v
		}
	}
	return v
}

// Condition names.
const (
	ConditionUnitCount         = "unit_count"
	ConditionAnnihilation      = "annihilation"
	ConditionUnboundedMovement = "unbounded_movement"
	ConditionStalemate         = "stalemate"
)

// ConditionsFor builds the ordered condition list enabled by rules.
func ConditionsFor(rules Rules) []Condition {
	var conds []Condition
	if rules.UnitCountCondition {
		conds = append(conds,
			Condition{Name: ConditionUnitCount, Check: unitCount},
			Condition{Name: ConditionAnnihilation, Check: annihilation},
		)
	}
	if rules.UnboundedMovement {
		conds = append(conds, Condition{
			Name:  ConditionUnboundedMovement,
			Check: unboundedAfter(rules.UnboundedMovementTurn),
		})
	}
	if rules.Stalemate {
		conds = append(conds, Condition{
			Name:  ConditionStalemate,
			Check: stalemateAfter(rules.StalemateTurn),
		})
	}
	return conds
}

// unitCount awards the win to the only side with units left.
func unitCount(st VictoryState) Evaluation {
	switch {
	case st.Player1 == 0 && st.Player2 > 0:
		return Evaluation{Result: ResultPlayer2Wins}
	case st.Player2 == 0 && st.Player1 > 0:
		return Evaluation{Result: ResultPlayer1Wins}
	}
	return Evaluation{}
}

// annihilation declares a draw when both armies are gone at once.
func annihilation(st VictoryState) Evaluation {
	if st.Player1 == 0 && st.Player2 == 0 {
		return Evaluation{Result: ResultDraw}
	}
	return Evaluation{}
}

func unboundedAfter(turn int) func(VictoryState) Evaluation {
	return func(st VictoryState) Evaluation {
		return Evaluation{EnableUnbounded: !st.Unbounded && st.Turn >= turn}
	}
}

// stalemateAfter settles the battle by unit count once the turn threshold is
// reached; equal counts are a draw.
func stalemateAfter(turn int) func(VictoryState) Evaluation {
	return func(st VictoryState) Evaluation {
		if st.Turn < turn {
			return Evaluation{}
		}
		e := Evaluation{EnableUnbounded: !st.Unbounded}
		switch {
		case st.Player1 > st.Player2:
			e.Result = ResultPlayer1Wins
		case st.Player2 > st.Player1:
			e.Result = ResultPlayer2Wins
		default:
			e.Result = ResultDraw
		}
		return e
	}
}
