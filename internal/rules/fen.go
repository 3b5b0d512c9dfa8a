package rules

import (
	"strconv"
	"strings"
)

const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN builds a GameState from Forsyth-Edwards Notation. The position is checked
// against the board invariants and its status is computed before it is returned.
// Castling rights whose king or rook is not on its home square are dropped.
func ParseFEN(fen string) (*GameState, error) {
	parts := strings.Fields(fen)
	if len(parts) != 6 {
		return nil, malformed("expected 6 FEN fields, got %d", len(parts))
	}

	s := &GameState{EnPassant: NoSquare}

	ranks := strings.Split(parts[0], "/")
	if len(ranks) != 8 {
		return nil, malformed("expected 8 ranks, got %d", len(ranks))
	}
	for i, row := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(row); j++ {
			ch := row[j]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			if file >= 8 {
				return nil, malformed("too many squares in rank %d", rank+1)
			}
			p, ok := pieceFromLetter(ch)
			if !ok {
				return nil, malformed("unknown piece %q in rank %d", ch, rank+1)
			}
			s.Board.set(SquareAt(file, rank), p)
			file++
		}
		if file != 8 {
			return nil, malformed("rank %d has %d files", rank+1, file)
		}
	}

	switch parts[1] {
	case "w":
		s.SideToMove = White
	case "b":
		s.SideToMove = Black
	default:
		return nil, malformed("side to move must be 'w' or 'b'")
	}

	if parts[2] != "-" {
		for j := 0; j < len(parts[2]); j++ {
			switch parts[2][j] {
			case 'K':
				s.Castling |= WhiteKingside
			case 'Q':
				s.Castling |= WhiteQueenside
			case 'k':
				s.Castling |= BlackKingside
			case 'q':
				s.Castling |= BlackQueenside
			default:
				return nil, malformed("invalid castling field %q", parts[2])
			}
		}
	}

	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return nil, malformed("invalid en-passant square %q", parts[3])
		}
		s.EnPassant = sq
	}

	var err error
	if s.HalfmoveClock, err = strconv.Atoi(parts[4]); err != nil || s.HalfmoveClock < 0 {
		return nil, malformed("invalid halfmove clock %q", parts[4])
	}
	if s.FullmoveNumber, err = strconv.Atoi(parts[5]); err != nil || s.FullmoveNumber < 1 {
		return nil, malformed("invalid fullmove number %q", parts[5])
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	s.dropStaleCastling()
	s.updateStatus()

	return s, nil
}

// Validate checks the structural invariants of the position
func (s *GameState) Validate() error {
	for _, c := range []Color{White, Black} {
		if n := s.Board.Count(Piece{c, King}); n != 1 {
			return malformed("%s has %d kings", c.Name(), n)
		}
	}

	for f := 0; f < 8; f++ {
		for _, rank := range []int{0, 7} {
			if p, ok := s.Board.At(SquareAt(f, rank)); ok && p.Kind == Pawn {
				return malformed("pawn on back rank at %s", SquareAt(f, rank))
			}
		}
	}

	if s.IsInCheck(s.SideToMove.Opposite()) {
		return malformed("%s is in check but it is %s's turn", s.SideToMove.Opposite().Name(), s.SideToMove.Name())
	}

	if s.EnPassant != NoSquare {
		// The target sits behind a pawn of the side that just moved
		mover := s.SideToMove.Opposite()
		wantRank := mover.homeRank() + 2*mover.forward()
		pawn, _ := s.Board.At(s.EnPassant.Offset(0, mover.forward()))
		if s.EnPassant.Rank() != wantRank || pawn != (Piece{mover, Pawn}) || !s.Board.isEmpty(s.EnPassant) {
			return malformed("invalid en-passant target %s", s.EnPassant)
		}
	}

	return nil
}

func (s *GameState) dropStaleCastling() {
	for _, r := range castleRules {
		king, _ := s.Board.At(r.king)
		rook, _ := s.Board.At(r.rook)
		if king != (Piece{r.color, King}) || rook != (Piece{r.color, Rook}) {
			s.Castling &^= r.right
		}
	}
}

// FEN serializes the state
func (s *GameState) FEN() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			p, ok := s.Board.At(SquareAt(file, rank))
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(p.Letter())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	sb.WriteString(s.SideToMove.String())
	sb.WriteByte(' ')
	sb.WriteString(s.Castling.String())
	sb.WriteByte(' ')
	sb.WriteString(s.EnPassant.String())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(s.HalfmoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(s.FullmoveNumber))

	return sb.String()
}
