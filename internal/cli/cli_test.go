package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"chessrules/internal/rules"
)

func newTestRegistry() (*Session, *Registry, *bytes.Buffer) {
	var out bytes.Buffer
	s := NewSession(&out)
	return s, NewRegistry(s), &out
}

func run(r *Registry, out *bytes.Buffer, lines ...string) string {
	out.Reset()
	for _, line := range lines {
		r.Execute(line)
	}
	return out.String()
}

func TestPlayAndUndo(t *testing.T) {
	s, r, out := newTestRegistry()

	got := run(r, out, "e2e4", "move e7e5")
	if !strings.Contains(got, "white: e2e4") || !strings.Contains(got, "black: e7e5") {
		t.Fatalf("moves not echoed:\n%s", got)
	}
	if len(s.Moves()) != 2 {
		t.Fatalf("moves = %v, want 2", s.Moves())
	}

	run(r, out, "undo 2")
	if fen := s.State().FEN(); fen != rules.StartingFEN {
		t.Errorf("after undo FEN = %q", fen)
	}

	got = run(r, out, "undo")
	if !strings.Contains(got, "nothing to undo") {
		t.Errorf("expected undo failure, got:\n%s", got)
	}
	if err := s.Undo(1); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo err = %v", err)
	}
}

func TestIllegalMoveLeavesState(t *testing.T) {
	s, r, out := newTestRegistry()
	before := *s.State()

	got := run(r, out, "e2e5")
	if !strings.Contains(got, "illegal move e2e5") {
		t.Errorf("output = %q", got)
	}
	if *s.State() != before {
		t.Error("state changed after illegal move")
	}
	if len(s.Moves()) != 0 {
		t.Error("illegal move recorded")
	}
}

func TestFoolsMate(t *testing.T) {
	s, r, out := newTestRegistry()

	got := run(r, out, "f2f3", "e7e5", "g2g4", "d8h4")
	if !strings.Contains(got, "Checkmate: black wins") {
		t.Fatalf("no checkmate line:\n%s", got)
	}
	if s.State().Status != rules.Checkmate {
		t.Fatalf("status = %v", s.State().Status)
	}

	got = run(r, out, "a2a3")
	if !strings.Contains(got, "game is over") {
		t.Errorf("move after mate accepted:\n%s", got)
	}

	// undo reopens the game
	run(r, out, "undo")
	if s.State().Status.Over() {
		t.Error("game still over after undo")
	}
}

func TestResumeAndLegalMoves(t *testing.T) {
	const fen = "4k3/8/8/8/8/8/8/4K2R w K - 0 1"
	s, r, out := newTestRegistry()

	run(r, out, "resume "+fen)
	if got := s.State().FEN(); got != fen {
		t.Fatalf("FEN = %q, want %q", got, fen)
	}

	got := run(r, out, "moves e1")
	if !strings.Contains(got, "e1g1") {
		t.Errorf("castling missing from e1 moves:\n%s", got)
	}
	if !strings.Contains(got, "[K]") {
		t.Errorf("origin square not marked:\n%s", got)
	}

	got = run(r, out, "resume not a fen")
	if !strings.Contains(got, "Error:") {
		t.Errorf("bad FEN accepted:\n%s", got)
	}
	if s.State().FEN() != fen {
		t.Error("failed resume replaced the game")
	}
}

func TestLegalMoveCount(t *testing.T) {
	_, r, out := newTestRegistry()

	tests := []struct {
		line string
		want string
	}{
		{"moves", "20 legal move(s)"},
		{"moves b1", "2 legal move(s): b1a3 b1c3"},
		{"moves e4", "No legal moves"},
		{"moves z9", "invalid square"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := run(r, out, tt.line); !strings.Contains(got, tt.want) {
				t.Errorf("%q output missing %q:\n%s", tt.line, tt.want, got)
			}
		})
	}
}

func TestThemeAndGlyphs(t *testing.T) {
	s, r, out := newTestRegistry()

	got := run(r, out, "theme purple")
	if !strings.Contains(got, "invalid theme") {
		t.Errorf("unknown theme accepted:\n%s", got)
	}

	run(r, out, "theme brown")
	if s.Theme() != ThemeBrown {
		t.Fatalf("theme = %s", s.Theme())
	}
	got = run(r, out, "board")
	if !strings.Contains(got, themes[ThemeBrown].darkBg) {
		t.Error("board not drawn with theme colors")
	}

	got = run(r, out, "theme off", "glyphs", "board")
	if !strings.Contains(got, "♔") || strings.Contains(got, "\033[") {
		t.Errorf("plain glyph board expected:\n%s", got)
	}
}

func TestHistory(t *testing.T) {
	_, r, out := newTestRegistry()

	got := run(r, out, "resume 4k3/8/8/8/8/8/4P3/4K3 b - - 0 7", "e8d7", "e2e4", "d7c6", "history")
	for _, want := range []string{
		"7. ... e8d7",
		"8. e2e4 d7c6",
		"Current FEN: 8/8/2k5/8/4P3/8/8/4K3 w - - 1 9",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("history missing %q:\n%s", want, got)
		}
	}
}

func TestCommandDispatch(t *testing.T) {
	s, r, out := newTestRegistry()

	got := run(r, out, "frobnicate")
	if !strings.Contains(got, "Unknown command: frobnicate") {
		t.Errorf("output = %q", got)
	}

	got = run(r, out, "help undo")
	if !strings.Contains(got, "Usage: undo [count]") {
		t.Errorf("help output = %q", got)
	}

	run(r, out, "")
	if s.Done() {
		t.Fatal("empty line ended the session")
	}
	run(r, out, "exit")
	if !s.Done() {
		t.Error("exit did not end the session")
	}
}
