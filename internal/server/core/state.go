package core

import "chessrules/internal/rules"

// State is the API view of a game's progress, folding the winner into the result
type State int

const (
	StateOngoing State = iota
	StateCheck
	StateWhiteWins
	StateBlackWins
	StateStalemate
	StateDraw
)

func (s State) String() string {
	switch s {
	case StateCheck:
		return "check"
	case StateWhiteWins:
		return "white wins"
	case StateBlackWins:
		return "black wins"
	case StateStalemate:
		return "stalemate"
	case StateDraw:
		return "draw"
	case StateOngoing:
		return "ongoing"
	default:
		return "unknown"
	}
}

// Over reports whether no further moves are accepted
func (s State) Over() bool {
	return s >= StateWhiteWins
}

// StateOf maps an engine position to its API state
func StateOf(gs *rules.GameState) State {
	switch gs.Status {
	case rules.Check:
		return StateCheck
	case rules.Checkmate:
		if winner, _ := gs.Winner(); winner == rules.White {
			return StateWhiteWins
		}
		return StateBlackWins
	case rules.Stalemate:
		return StateStalemate
	case rules.Draw:
		return StateDraw
	default:
		return StateOngoing
	}
}

// ParseState is the inverse of State.String, used when loading stored games
func ParseState(s string) (State, bool) {
	for st := StateOngoing; st <= StateDraw; st++ {
		if st.String() == s {
			return st, true
		}
	}
	return StateOngoing, false
}
