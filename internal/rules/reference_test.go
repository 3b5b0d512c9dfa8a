package rules

import (
	"sort"
	"testing"

	"github.com/notnil/chess"
)

func referenceGame(t *testing.T, fen string) *chess.Game {
	t.Helper()
	opt, err := chess.FEN(fen)
	if err != nil {
		t.Fatalf("chess.FEN(%q) error = %v", fen, err)
	}
	return chess.NewGame(opt, chess.UseNotation(chess.UCINotation{}))
}

func referenceMoves(g *chess.Game) map[string]*chess.Move {
	pos := g.Position()
	moves := make(map[string]*chess.Move)
	for _, m := range g.ValidMoves() {
		moves[chess.UCINotation{}.Encode(pos, m)] = m
	}
	return moves
}

// Walks games from several positions and compares the legal move set after every ply
// with github.com/notnil/chess.
func TestMovesAgreeWithNotnilChess(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		seed int
	}{
		{"start", StartingFEN, 3},
		{"start alternate", StartingFEN, 11},
		{"kiwipete", kiwipeteFEN, 5},
		{"endgame", endgameFEN, 7},
		{"mirror", mirrorFEN, 2},
		{"promotion", promoFEN, 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ours := mustParseFEN(t, tt.fen)
			ref := referenceGame(t, tt.fen)

			for ply := 0; ply < 120; ply++ {
				got := uciStrings(ours.LegalMoves())
				want := referenceMoves(ref)

				if len(got) != len(want) {
					keys := make([]string, 0, len(want))
					for k := range want {
						keys = append(keys, k)
					}
					sort.Strings(keys)
					t.Fatalf("ply %d %s: moves = %v, reference = %v", ply, ours.FEN(), got, keys)
				}
				for _, uci := range got {
					if _, ok := want[uci]; !ok {
						t.Fatalf("ply %d %s: move %s not in reference set", ply, ours.FEN(), uci)
					}
				}

				if len(got) == 0 || ours.Status.Over() || ref.Outcome() != chess.NoOutcome {
					return
				}

				pick := got[(ply*tt.seed+tt.seed)%len(got)]
				playAll(t, ours, pick)
				if err := ref.Move(want[pick]); err != nil {
					t.Fatalf("reference Move(%s) error = %v", pick, err)
				}
			}
		})
	}
}
