// Package rules is the chess rules engine: board representation, legal move generation,
// check detection and game termination. It performs no I/O and keeps no global state;
// one GameState is one game and must be used by one goroutine at a time.
package rules

import "strings"

type CastlingRights uint8

const (
	WhiteKingside CastlingRights = 1 << iota
	WhiteQueenside
	BlackKingside
	BlackQueenside

	NoCastling  CastlingRights = 0
	AllCastling                = WhiteKingside | WhiteQueenside | BlackKingside | BlackQueenside
)

func (c CastlingRights) Has(r CastlingRights) bool {
	return c&r == r
}

// String returns the FEN castling field
func (c CastlingRights) String() string {
	if c == NoCastling {
		return "-"
	}
	var sb strings.Builder
	for _, r := range []struct {
		right  CastlingRights
		letter byte
	}{{WhiteKingside, 'K'}, {WhiteQueenside, 'Q'}, {BlackKingside, 'k'}, {BlackQueenside, 'q'}} {
		if c.Has(r.right) {
			sb.WriteByte(r.letter)
		}
	}
	return sb.String()
}

type Status uint8

const (
	InProgress Status = iota
	Check
	Checkmate
	Stalemate
	Draw
)

func (s Status) String() string {
	switch s {
	case Check:
		return "check"
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case Draw:
		return "draw"
	default:
		return "in progress"
	}
}

// Over reports whether the game has ended
func (s Status) Over() bool {
	return s == Checkmate || s == Stalemate || s == Draw
}

type DrawReason uint8

const (
	NoDraw DrawReason = iota
	FiftyMoveRule
	InsufficientMaterial
)

func (d DrawReason) String() string {
	switch d {
	case FiftyMoveRule:
		return "fifty-move rule"
	case InsufficientMaterial:
		return "insufficient material"
	default:
		return "none"
	}
}

// fiftyMoveLimit is the halfmove clock value at which the game is drawn
const fiftyMoveLimit = 100

// GameState is the complete position plus the status derived from it.
// It holds no pointers, so copies are independent and == compares bit for bit.
type GameState struct {
	Board          Board
	SideToMove     Color
	Castling       CastlingRights
	EnPassant      Square
	HalfmoveClock  int
	FullmoveNumber int
	Status         Status
	DrawReason     DrawReason
}

// NewGame returns the standard starting position with White to move
func NewGame() *GameState {
	s := &GameState{
		SideToMove:     White,
		Castling:       AllCastling,
		EnPassant:      NoSquare,
		FullmoveNumber: 1,
		Status:         InProgress,
	}

	backRank := [8]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for f, kind := range backRank {
		s.Board.set(SquareAt(f, 0), Piece{White, kind})
		s.Board.set(SquareAt(f, 1), Piece{White, Pawn})
		s.Board.set(SquareAt(f, 6), Piece{Black, Pawn})
		s.Board.set(SquareAt(f, 7), Piece{Black, kind})
	}

	return s
}

// Clone returns an independent copy
func (s *GameState) Clone() *GameState {
	c := *s
	return &c
}

// IsInCheck reports whether c's king is attacked
func (s *GameState) IsInCheck(c Color) bool {
	king := s.Board.KingSquare(c)
	if king == NoSquare {
		return false
	}
	return s.Board.IsAttacked(king, c.Opposite())
}

// Winner returns the winning colour after checkmate
func (s *GameState) Winner() (Color, bool) {
	if s.Status != Checkmate {
		return White, false
	}
	return s.SideToMove.Opposite(), true
}

// ApplyMove validates m against the legal moves of the side to move and plays it.
// Only From, To and Promotion of m are considered. On error the state is untouched.
func (s *GameState) ApplyMove(m Move) (Status, error) {
	if s.Status.Over() {
		return s.Status, &IllegalMoveError{Move: m, Reason: "game is over: " + s.Status.String()}
	}

	for _, legal := range s.LegalMoves() {
		if legal.sameInput(m) {
			s.play(legal)
			s.updateStatus()
			return s.Status, nil
		}
	}

	return s.Status, &IllegalMoveError{Move: m, Reason: s.rejectReason(m)}
}

func (s *GameState) rejectReason(m Move) string {
	p, ok := s.Board.At(m.From)
	switch {
	case !ok:
		return "no piece on " + m.From.String()
	case p.Color != s.SideToMove:
		return "it is " + s.SideToMove.Name() + "'s turn"
	}
	if p.Kind == Pawn && m.Promotion == NoKind && m.To.Rank() == s.SideToMove.Opposite().homeRank() {
		return "promotion piece required"
	}
	return p.Kind.String() + " cannot move to " + m.To.String()
}

// play applies a generated move without validation
func (s *GameState) play(m Move) {
	b := &s.Board
	mover := s.SideToMove
	p := b.squares[m.From]

	if m.IsEnPassant() {
		b.clear(SquareAt(m.To.File(), m.From.Rank()))
	}
	if m.IsCastle() {
		rank := mover.homeRank()
		rookFrom, rookTo := SquareAt(7, rank), SquareAt(5, rank)
		if m.To.File() == 2 {
			rookFrom, rookTo = SquareAt(0, rank), SquareAt(3, rank)
		}
		b.set(rookTo, b.squares[rookFrom])
		b.clear(rookFrom)
	}

	if m.Promotion != NoKind {
		p.Kind = m.Promotion
	}
	b.clear(m.From)
	b.set(m.To, p)

	if p.Kind == King {
		if mover == White {
			s.Castling &^= WhiteKingside | WhiteQueenside
		} else {
			s.Castling &^= BlackKingside | BlackQueenside
		}
	}
	// A move from or to a rook corner ends that right, covering rook moves and rook captures
	s.Castling &^= cornerRights(m.From) | cornerRights(m.To)

	s.EnPassant = NoSquare
	if m.IsDoublePush() {
		s.EnPassant = SquareAt(m.From.File(), m.From.Rank()+mover.forward())
	}

	if p.Kind == Pawn || m.Promotion != NoKind || m.IsCapture() {
		s.HalfmoveClock = 0
	} else {
		s.HalfmoveClock++
	}
	if mover == Black {
		s.FullmoveNumber++
	}
	s.SideToMove = mover.Opposite()
}

func cornerRights(sq Square) CastlingRights {
	switch sq {
	case H1:
		return WhiteKingside
	case A1:
		return WhiteQueenside
	case H8:
		return BlackKingside
	case A8:
		return BlackQueenside
	}
	return NoCastling
}

func (s *GameState) updateStatus() {
	inCheck := s.IsInCheck(s.SideToMove)
	hasMove := s.hasLegalMove()

	s.DrawReason = NoDraw
	switch {
	case !hasMove && inCheck:
		s.Status = Checkmate
	case !hasMove:
		s.Status = Stalemate
	case s.HalfmoveClock >= fiftyMoveLimit:
		s.Status = Draw
		s.DrawReason = FiftyMoveRule
	case s.Board.insufficientMaterial():
		s.Status = Draw
		s.DrawReason = InsufficientMaterial
	case inCheck:
		s.Status = Check
	default:
		s.Status = InProgress
	}
}
