package rules

import (
	"sort"
	"testing"
)

const (
	kiwipeteFEN = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	endgameFEN  = "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1"
	mirrorFEN   = "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1"
	promoFEN    = "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8"
)

func perft(s *GameState, depth int) int {
	moves := s.LegalMoves()
	if depth == 1 {
		return len(moves)
	}
	nodes := 0
	for _, m := range moves {
		next := *s
		next.play(m)
		nodes += perft(&next, depth-1)
	}
	return nodes
}

func mustParseFEN(t *testing.T, fen string) *GameState {
	t.Helper()
	s, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q) error = %v", fen, err)
	}
	return s
}

func uciStrings(moves []Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.String()
	}
	sort.Strings(out)
	return out
}

func TestStartingPositionHasTwentyMoves(t *testing.T) {
	s := NewGame()
	moves := s.LegalMoves()
	if len(moves) != 20 {
		t.Fatalf("len(LegalMoves()) = %d, want 20: %v", len(moves), uciStrings(moves))
	}

	pawnMoves, knightMoves := 0, 0
	for _, m := range moves {
		p, _ := s.Board.At(m.From)
		switch p.Kind {
		case Pawn:
			pawnMoves++
		case Knight:
			knightMoves++
		default:
			t.Errorf("unexpected mover %v for %s", p, m)
		}
	}
	if pawnMoves != 16 || knightMoves != 4 {
		t.Fatalf("pawn/knight moves = %d/%d, want 16/4", pawnMoves, knightMoves)
	}
}

func TestPerft(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		nodes []int // by depth, starting at 1
	}{
		{"start", StartingFEN, []int{20, 400, 8902}},
		{"kiwipete", kiwipeteFEN, []int{48, 2039, 97862}},
		{"endgame", endgameFEN, []int{14, 191, 2812}},
		{"mirror", mirrorFEN, []int{6, 264, 9467}},
		{"promotion", promoFEN, []int{44, 1486, 62379}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustParseFEN(t, tt.fen)
			for i, want := range tt.nodes {
				depth := i + 1
				if depth == 3 && testing.Short() {
					break
				}
				if got := perft(s, depth); got != want {
					t.Fatalf("perft(%d) = %d, want %d", depth, got, want)
				}
			}
		})
	}
}

func TestLegalMovesFrom(t *testing.T) {
	s := NewGame()

	got := uciStrings(s.LegalMovesFrom(G1))
	want := []string{"g1f3", "g1h3"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("LegalMovesFrom(g1) = %v, want %v", got, want)
	}

	if moves := s.LegalMovesFrom(E4); len(moves) != 0 {
		t.Fatalf("LegalMovesFrom(empty square) = %v, want none", moves)
	}
	if moves := s.LegalMovesFrom(E7); len(moves) != 0 {
		t.Fatalf("LegalMovesFrom(opponent pawn) = %v, want none", moves)
	}
}

func TestPinnedPieceCannotMove(t *testing.T) {
	s := mustParseFEN(t, "4k3/4r3/8/8/8/8/4B3/4K3 w - - 0 1")
	if moves := s.LegalMovesFrom(E2); len(moves) != 0 {
		t.Fatalf("pinned bishop moves = %v, want none", uciStrings(moves))
	}
}

func TestCheckMustBeAnswered(t *testing.T) {
	// Rook e7 checks along the e-file; only king moves or the d2 bishop block
	s := mustParseFEN(t, "4k3/4r3/8/8/8/8/3B4/4K3 w - - 0 1")
	if !s.IsInCheck(White) || s.Status != Check {
		t.Fatalf("IsInCheck/Status = %v/%v, want true/check", s.IsInCheck(White), s.Status)
	}
	for _, m := range s.LegalMoves() {
		next := *s
		next.play(m)
		if next.IsInCheck(White) {
			t.Errorf("move %s leaves white in check", m)
		}
	}
	got := uciStrings(s.LegalMovesFrom(D2))
	if len(got) != 1 || got[0] != "d2e3" {
		t.Fatalf("bishop moves = %v, want [d2e3]", got)
	}
}

func TestPawnAttacksDiagonallyOnly(t *testing.T) {
	s := mustParseFEN(t, "4k3/8/8/8/8/4p3/8/4K3 w - - 0 1")
	if s.Board.IsAttacked(E2, Black) {
		t.Fatalf("pawn on e3 should not attack e2")
	}
	if !s.Board.IsAttacked(D2, Black) || !s.Board.IsAttacked(F2, Black) {
		t.Fatalf("pawn on e3 should attack d2 and f2")
	}
}

func TestCastlingGeneration(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want []string
	}{
		{"both sides", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", []string{"e1c1", "e1g1"}},
		{"transit attacked", "r3k2r/8/8/8/8/8/5r2/R3K2R w KQkq - 0 1", []string{"e1c1"}},
		{"b-file attack does not matter", "r3k2r/8/8/8/8/8/1r6/R3K2R w KQkq - 0 1", []string{"e1c1", "e1g1"}},
		{"in check", "r3k2r/8/8/8/8/8/4r3/R3K2R w KQkq - 0 1", nil},
		{"blocked", "r3k2r/8/8/8/8/8/8/RN2K1NR w KQkq - 0 1", nil},
		{"no rights", "r3k2r/8/8/8/8/8/8/R3K2R w kq - 0 1", nil},
		{"black", "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", []string{"e8c8", "e8g8"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustParseFEN(t, tt.fen)
			var got []string
			for _, m := range s.LegalMoves() {
				if m.IsCastle() {
					got = append(got, m.String())
				}
			}
			sort.Strings(got)
			if len(got) != len(tt.want) {
				t.Fatalf("castles = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("castles = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestPromotionChoices(t *testing.T) {
	s := mustParseFEN(t, "8/P7/8/8/8/8/8/k3K3 w - - 0 1")
	got := uciStrings(s.LegalMovesFrom(A7))
	want := []string{"a7a8b", "a7a8n", "a7a8q", "a7a8r"}
	if len(got) != len(want) {
		t.Fatalf("promotions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("promotions = %v, want %v", got, want)
		}
	}
}
