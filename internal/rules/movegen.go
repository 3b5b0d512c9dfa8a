package rules

// castleRule describes one castling option by its start and end squares
type castleRule struct {
	right  CastlingRights
	color  Color
	king   Square
	rook   Square
	kingTo Square
	empty  []Square // between king and rook
	safe   []Square // king start, transit and destination
}

var castleRules = [4]castleRule{
	{WhiteKingside, White, E1, H1, G1, []Square{F1, G1}, []Square{E1, F1, G1}},
	{WhiteQueenside, White, E1, A1, C1, []Square{B1, C1, D1}, []Square{E1, D1, C1}},
	{BlackKingside, Black, E8, H8, G8, []Square{F8, G8}, []Square{E8, F8, G8}},
	{BlackQueenside, Black, E8, A8, C8, []Square{B8, C8, D8}, []Square{E8, D8, C8}},
}

// LegalMoves returns every move of the side to move that does not leave its own king in check.
// An empty result means checkmate or stalemate, told apart by IsInCheck.
func (s *GameState) LegalMoves() []Move {
	pseudo := s.pseudoLegalMoves()
	legal := pseudo[:0]
	for _, m := range pseudo {
		if s.isLegal(m) {
			legal = append(legal, m)
		}
	}
	return legal
}

// LegalMovesFrom returns the legal moves of the piece on from
func (s *GameState) LegalMovesFrom(from Square) []Move {
	var moves []Move
	for _, m := range s.LegalMoves() {
		if m.From == from {
			moves = append(moves, m)
		}
	}
	return moves
}

func (s *GameState) hasLegalMove() bool {
	for _, m := range s.pseudoLegalMoves() {
		if s.isLegal(m) {
			return true
		}
	}
	return false
}

// isLegal plays m on a scratch copy and checks the mover's king
func (s *GameState) isLegal(m Move) bool {
	scratch := *s
	scratch.play(m)
	return !scratch.IsInCheck(s.SideToMove)
}

func (s *GameState) pseudoLegalMoves() []Move {
	moves := make([]Move, 0, 48)
	for i, p := range s.Board.squares {
		if p.IsZero() || p.Color != s.SideToMove {
			continue
		}
		from := Square(i)
		switch p.Kind {
		case Pawn:
			moves = s.appendPawnMoves(moves, from)
		case Knight:
			moves = s.appendSteps(moves, from, knightOffsets[:])
		case King:
			moves = s.appendSteps(moves, from, kingOffsets[:])
		case Bishop:
			moves = s.appendSlides(moves, from, diagonalDirs[:])
		case Rook:
			moves = s.appendSlides(moves, from, straightDirs[:])
		case Queen:
			moves = s.appendSlides(moves, from, diagonalDirs[:])
			moves = s.appendSlides(moves, from, straightDirs[:])
		}
	}
	return s.appendCastles(moves)
}

func (s *GameState) appendSteps(moves []Move, from Square, offsets [][2]int) []Move {
	for _, d := range offsets {
		to := from.Offset(d[0], d[1])
		if !to.Valid() {
			continue
		}
		target, occupied := s.Board.At(to)
		switch {
		case !occupied:
			moves = append(moves, Move{From: from, To: to})
		case target.Color != s.SideToMove:
			moves = append(moves, Move{From: from, To: to, Flags: FlagCapture})
		}
	}
	return moves
}

func (s *GameState) appendSlides(moves []Move, from Square, dirs [][2]int) []Move {
	for _, d := range dirs {
		for to := from.Offset(d[0], d[1]); to.Valid(); to = to.Offset(d[0], d[1]) {
			target, occupied := s.Board.At(to)
			if !occupied {
				moves = append(moves, Move{From: from, To: to})
				continue
			}
			if target.Color != s.SideToMove {
				moves = append(moves, Move{From: from, To: to, Flags: FlagCapture})
			}
			break
		}
	}
	return moves
}

func (s *GameState) appendPawnMoves(moves []Move, from Square) []Move {
	us := s.SideToMove
	dir := us.forward()
	startRank := us.homeRank() + dir
	lastRank := us.Opposite().homeRank()

	add := func(to Square, flags MoveFlags) {
		if to.Rank() == lastRank {
			for _, k := range promotionKinds {
				moves = append(moves, Move{From: from, To: to, Promotion: k, Flags: flags})
			}
			return
		}
		moves = append(moves, Move{From: from, To: to, Flags: flags})
	}

	if one := from.Offset(0, dir); one.Valid() && s.Board.isEmpty(one) {
		add(one, 0)
		if two := one.Offset(0, dir); from.Rank() == startRank && s.Board.isEmpty(two) {
			add(two, FlagDoublePush)
		}
	}

	for _, df := range [2]int{-1, 1} {
		to := from.Offset(df, dir)
		if !to.Valid() {
			continue
		}
		if target, ok := s.Board.At(to); ok && target.Color != us {
			add(to, FlagCapture)
		} else if to == s.EnPassant {
			add(to, FlagCapture|FlagEnPassant)
		}
	}

	return moves
}

func (s *GameState) appendCastles(moves []Move) []Move {
	them := s.SideToMove.Opposite()
	for _, r := range castleRules {
		if r.color != s.SideToMove || !s.Castling.Has(r.right) {
			continue
		}
		if king, _ := s.Board.At(r.king); king != (Piece{r.color, King}) {
			continue
		}
		if rook, _ := s.Board.At(r.rook); rook != (Piece{r.color, Rook}) {
			continue
		}
		if !s.allEmpty(r.empty) || s.anyAttacked(r.safe, them) {
			continue
		}
		moves = append(moves, Move{From: r.king, To: r.kingTo, Flags: FlagCastle})
	}
	return moves
}

func (s *GameState) allEmpty(squares []Square) bool {
	for _, sq := range squares {
		if !s.Board.isEmpty(sq) {
			return false
		}
	}
	return true
}

func (s *GameState) anyAttacked(squares []Square, by Color) bool {
	for _, sq := range squares {
		if s.Board.IsAttacked(sq, by) {
			return true
		}
	}
	return false
}
