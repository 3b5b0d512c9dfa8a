package rules

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opposite() Color {
	return c ^ 1
}

// String returns the FEN side letter
func (c Color) String() string {
	if c == Black {
		return "b"
	}
	return "w"
}

func (c Color) Name() string {
	if c == Black {
		return "black"
	}
	return "white"
}

// forward is the rank direction pawns of this colour advance in
func (c Color) forward() int {
	if c == Black {
		return -1
	}
	return 1
}

// homeRank is the back rank of the colour
func (c Color) homeRank() int {
	if c == Black {
		return 7
	}
	return 0
}

type Kind uint8

const (
	NoKind Kind = iota
	King
	Queen
	Rook
	Bishop
	Knight
	Pawn
)

var kindNames = [...]string{"none", "king", "queen", "rook", "bishop", "knight", "pawn"}

var kindLetters = [...]byte{0, 'k', 'q', 'r', 'b', 'n', 'p'}

func (k Kind) String() string {
	if int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Letter returns the lowercase FEN letter, 0 for NoKind
func (k Kind) Letter() byte {
	if int(k) >= len(kindLetters) {
		return 0
	}
	return kindLetters[k]
}

// promotionKinds lists the promotion choices in the order they are generated
var promotionKinds = [...]Kind{Queen, Rook, Bishop, Knight}

// ParsePromotion maps a UCI promotion suffix to a kind
func ParsePromotion(ch byte) (Kind, bool) {
	switch ch {
	case 'q', 'Q':
		return Queen, true
	case 'r', 'R':
		return Rook, true
	case 'b', 'B':
		return Bishop, true
	case 'n', 'N':
		return Knight, true
	}
	return NoKind, false
}

// Piece is a value: two pieces of the same colour and kind are interchangeable.
// The zero value is an empty square.
type Piece struct {
	Color Color
	Kind  Kind
}

func (p Piece) IsZero() bool {
	return p.Kind == NoKind
}

// Letter returns the FEN letter, uppercase for White
func (p Piece) Letter() byte {
	l := p.Kind.Letter()
	if l != 0 && p.Color == White {
		l -= 'a' - 'A'
	}
	return l
}

var glyphs = map[Piece]string{
	{White, King}:   "♔",
	{White, Queen}:  "♕",
	{White, Rook}:   "♖",
	{White, Bishop}: "♗",
	{White, Knight}: "♘",
	{White, Pawn}:   "♙",
	{Black, King}:   "♚",
	{Black, Queen}:  "♛",
	{Black, Rook}:   "♜",
	{Black, Bishop}: "♝",
	{Black, Knight}: "♞",
	{Black, Pawn}:   "♟",
}

// Glyph returns the unicode chess symbol for the piece, empty for the zero Piece
func (p Piece) Glyph() string {
	return glyphs[p]
}

func (p Piece) String() string {
	if p.IsZero() {
		return "empty"
	}
	return p.Color.Name() + " " + p.Kind.String()
}

func pieceFromLetter(ch byte) (Piece, bool) {
	color := White
	if ch >= 'a' && ch <= 'z' {
		color = Black
		ch -= 'a' - 'A'
	}
	switch ch {
	case 'K':
		return Piece{color, King}, true
	case 'Q':
		return Piece{color, Queen}, true
	case 'R':
		return Piece{color, Rook}, true
	case 'B':
		return Piece{color, Bishop}, true
	case 'N':
		return Piece{color, Knight}, true
	case 'P':
		return Piece{color, Pawn}, true
	}
	return Piece{}, false
}
