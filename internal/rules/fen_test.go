package rules

import (
	"errors"
	"strings"
	"testing"
)

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartingFEN,
		kiwipeteFEN,
		endgameFEN,
		mirrorFEN,
		promoFEN,
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
	}

	for _, fen := range fens {
		s := mustParseFEN(t, fen)
		if got := s.FEN(); got != fen {
			t.Errorf("FEN() = %q, want %q", got, fen)
		}
	}
}

func TestNewGameMatchesStartingFEN(t *testing.T) {
	parsed := mustParseFEN(t, StartingFEN)
	if *parsed != *NewGame() {
		t.Fatalf("ParseFEN(StartingFEN) differs from NewGame()")
	}
	if got := NewGame().FEN(); got != StartingFEN {
		t.Fatalf("NewGame().FEN() = %q, want %q", got, StartingFEN)
	}
}

func TestFENAfterMoves(t *testing.T) {
	s := NewGame()
	playAll(t, s, "e2e4", "c7c5", "g1f3")
	want := "rnbqkbnr/pp1ppppp/8/2p5/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2"
	if got := s.FEN(); got != want {
		t.Fatalf("FEN() = %q, want %q", got, want)
	}
}

func TestParseFENRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		{"too few fields", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -"},
		{"seven ranks", "rnbqkbnr/pppppppp/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"long rank", "rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"short rank", "rnbqkbnr/ppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"unknown piece", "rnbqkbnr/ppppxppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"bad side", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1"},
		{"bad castling", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KX - 0 1"},
		{"bad halfmove", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - -1 1"},
		{"zero fullmove", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 0"},
		{"missing king", "8/8/8/8/8/8/8/K7 w - - 0 1"},
		{"two kings", "k6k/8/8/8/8/8/8/K7 w - - 0 1"},
		{"pawn on back rank", "P3k3/8/8/8/8/8/8/4K3 w - - 0 1"},
		{"opponent in check", "4k3/4R3/8/8/8/8/8/4K3 w - - 0 1"},
		{"en passant wrong rank", "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e4 0 1"},
		{"en passant without pawn", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq e3 0 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFEN(tt.fen)
			if !errors.Is(err, ErrMalformedState) {
				t.Fatalf("ParseFEN() error = %v, want ErrMalformedState", err)
			}
		})
	}
}

func TestParseFENDropsStaleCastling(t *testing.T) {
	s := mustParseFEN(t, "r3k3/8/8/8/8/8/8/4K2R w KQkq - 0 1")
	if got := s.Castling.String(); got != "Kq" {
		t.Fatalf("Castling = %s, want Kq", got)
	}
}

func TestParseFENComputesStatus(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want Status
	}{
		{"mated", "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", Checkmate},
		{"stalemated", "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", Stalemate},
		{"checked", "4k3/8/8/8/8/8/4r3/4K3 w - - 0 1", Check},
		{"quiet", StartingFEN, InProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustParseFEN(t, tt.fen).Status; got != tt.want {
				t.Fatalf("Status = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRender(t *testing.T) {
	s := NewGame()

	ascii := strings.Split(s.Board.ASCII(), "\n")
	if ascii[0] != "  a b c d e f g h" {
		t.Fatalf("ASCII() header = %q", ascii[0])
	}
	if !strings.HasPrefix(ascii[1], "8 r n b q k b n r") {
		t.Fatalf("ASCII() top rank = %q", ascii[1])
	}
	if !strings.Contains(s.Board.ASCII(), "1 R N B Q K B N R") {
		t.Fatalf("ASCII() missing white back rank:\n%s", s.Board.ASCII())
	}

	glyphs := s.Board.Glyphs()
	if !strings.Contains(glyphs, "♔") || !strings.Contains(glyphs, "♚") {
		t.Fatalf("Glyphs() missing kings:\n%s", glyphs)
	}
	if !strings.Contains(glyphs, "a b c d e f g h") {
		t.Fatalf("Glyphs() missing file labels:\n%s", glyphs)
	}
}

func TestPieceGlyph(t *testing.T) {
	tests := []struct {
		piece Piece
		want  string
	}{
		{Piece{White, King}, "♔"},
		{Piece{White, Pawn}, "♙"},
		{Piece{Black, Queen}, "♛"},
		{Piece{Black, Knight}, "♞"},
	}
	for _, tt := range tests {
		if got := tt.piece.Glyph(); got != tt.want {
			t.Errorf("%v.Glyph() = %q, want %q", tt.piece, got, tt.want)
		}
	}
}
