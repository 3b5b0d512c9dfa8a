package rules

// Direction offsets as {file, rank} deltas
var (
	knightOffsets = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingOffsets   = [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	diagonalDirs  = [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	straightDirs  = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
)

// IsAttacked reports whether any piece of colour by attacks sq.
// Pawns attack diagonally only; pins are ignored.
func (b *Board) IsAttacked(sq Square, by Color) bool {
	if !sq.Valid() {
		return false
	}
	return b.pawnAttacks(sq, by) ||
		b.stepAttacks(sq, Piece{by, Knight}, knightOffsets[:]) ||
		b.stepAttacks(sq, Piece{by, King}, kingOffsets[:]) ||
		b.rayAttacks(sq, by, Bishop, diagonalDirs[:]) ||
		b.rayAttacks(sq, by, Rook, straightDirs[:])
}

func (b *Board) pawnAttacks(sq Square, by Color) bool {
	pawn := Piece{by, Pawn}
	// An attacking pawn stands one rank behind the target from its own point of view
	back := -by.forward()
	for _, df := range [2]int{-1, 1} {
		if p, ok := b.At(sq.Offset(df, back)); ok && p == pawn {
			return true
		}
	}
	return false
}

func (b *Board) stepAttacks(sq Square, attacker Piece, offsets [][2]int) bool {
	for _, d := range offsets {
		if p, ok := b.At(sq.Offset(d[0], d[1])); ok && p == attacker {
			return true
		}
	}
	return false
}

// rayAttacks looks along each direction for the first piece; a slider of the given kind
// or a queen of colour by is an attacker
func (b *Board) rayAttacks(sq Square, by Color, slider Kind, dirs [][2]int) bool {
	for _, d := range dirs {
		for to := sq.Offset(d[0], d[1]); to.Valid(); to = to.Offset(d[0], d[1]) {
			p, ok := b.At(to)
			if !ok {
				continue
			}
			if p.Color == by && (p.Kind == slider || p.Kind == Queen) {
				return true
			}
			break
		}
	}
	return false
}
