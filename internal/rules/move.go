package rules

import (
	"fmt"
	"strings"
)

type MoveFlags uint8

const (
	FlagCapture MoveFlags = 1 << iota
	FlagEnPassant
	FlagCastle
	FlagDoublePush
)

// Move is produced by move generation and consumed by ApplyMove.
// Callers building a move from user input only need From, To and Promotion.
type Move struct {
	From      Square
	To        Square
	Promotion Kind
	Flags     MoveFlags
}

func (m Move) IsCapture() bool    { return m.Flags&FlagCapture != 0 }
func (m Move) IsEnPassant() bool  { return m.Flags&FlagEnPassant != 0 }
func (m Move) IsCastle() bool     { return m.Flags&FlagCastle != 0 }
func (m Move) IsDoublePush() bool { return m.Flags&FlagDoublePush != 0 }

// sameInput compares the fields a caller supplies, ignoring derived flags
func (m Move) sameInput(o Move) bool {
	return m.From == o.From && m.To == o.To && m.Promotion == o.Promotion
}

// String returns UCI long algebraic notation: e2e4, e7e8q
func (m Move) String() string {
	s := m.From.String() + m.To.String()
	if m.Promotion != NoKind {
		s += string(m.Promotion.Letter())
	}
	return s
}

// ParseMove parses UCI notation. Flags are left empty; ApplyMove derives them.
func ParseMove(s string) (Move, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("invalid move %q: expected 4 or 5 characters", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return Move{}, fmt.Errorf("invalid move %q: %w", s, err)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return Move{}, fmt.Errorf("invalid move %q: %w", s, err)
	}

	m := Move{From: from, To: to}
	if len(s) == 5 {
		kind, ok := ParsePromotion(s[4])
		if !ok {
			return Move{}, fmt.Errorf("invalid move %q: bad promotion piece %q", s, s[4])
		}
		m.Promotion = kind
	}
	return m, nil
}
