package rules

import (
	"fmt"
	"strings"
)

// Board maps the 64 squares to optional pieces. It is a plain value; assigning it copies it.
type Board struct {
	squares [64]Piece
}

// At returns the piece on sq and whether the square is occupied
func (b *Board) At(sq Square) (Piece, bool) {
	if !sq.Valid() {
		return Piece{}, false
	}
	p := b.squares[sq]
	return p, !p.IsZero()
}

func (b *Board) set(sq Square, p Piece) {
	b.squares[sq] = p
}

func (b *Board) clear(sq Square) {
	b.squares[sq] = Piece{}
}

func (b *Board) isEmpty(sq Square) bool {
	return b.squares[sq].IsZero()
}

// KingSquare returns the square of c's king, NoSquare if there is none
func (b *Board) KingSquare(c Color) Square {
	king := Piece{c, King}
	for sq, p := range b.squares {
		if p == king {
			return Square(sq)
		}
	}
	return NoSquare
}

// Count returns how many of the given piece are on the board
func (b *Board) Count(p Piece) int {
	n := 0
	for _, q := range b.squares {
		if q == p {
			n++
		}
	}
	return n
}

// Rows returns a read-only snapshot indexed [rank][file], rank 0 being White's back rank
func (b *Board) Rows() [8][8]Piece {
	var rows [8][8]Piece
	for sq, p := range b.squares {
		rows[sq/8][sq%8] = p
	}
	return rows
}

// ASCII renders the board with FEN letters, White at the bottom
func (b *Board) ASCII() string {
	return b.render(func(p Piece) string { return string(p.Letter()) }, ".")
}

// Glyphs renders the board with unicode chess symbols, White at the bottom
func (b *Board) Glyphs() string {
	return b.render(Piece.Glyph, "·")
}

func (b *Board) render(symbol func(Piece) string, empty string) string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")

	for r := 7; r >= 0; r-- {
		sb.WriteString(fmt.Sprintf("%d ", r+1))
		for f := 0; f < 8; f++ {
			if p, ok := b.At(SquareAt(f, r)); ok {
				sb.WriteString(symbol(p))
			} else {
				sb.WriteString(empty)
			}
			sb.WriteByte(' ')
		}
		sb.WriteString(fmt.Sprintf(" %d\n", r+1))
	}
	sb.WriteString("  a b c d e f g h")

	return sb.String()
}

// insufficientMaterial reports a dead position: bare kings, a single minor piece,
// or only bishops that all stand on one square colour
func (b *Board) insufficientMaterial() bool {
	minors, knights := 0, 0
	var bishopsOn [2]int
	for i, p := range b.squares {
		switch p.Kind {
		case NoKind, King:
		case Knight:
			minors++
			knights++
		case Bishop:
			minors++
			if Square(i).IsLight() {
				bishopsOn[1]++
			} else {
				bishopsOn[0]++
			}
		default:
			return false
		}
	}
	if minors <= 1 {
		return true
	}
	return knights == 0 && (bishopsOn[0] == 0 || bishopsOn[1] == 0)
}
