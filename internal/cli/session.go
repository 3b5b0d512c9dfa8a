// Package cli implements a local two-player terminal game over the rules engine.
package cli

import (
	"errors"
	"fmt"
	"io"

	"chessrules/internal/rules"
)

var ErrNothingToUndo = errors.New("nothing to undo")

// Session is one hot-seat game plus the display preferences of the terminal
type Session struct {
	out     io.Writer
	start   *rules.GameState
	state   *rules.GameState
	history []rules.GameState // position before each played move
	moves   []rules.Move
	theme   Theme
	glyphs  bool
	done    bool
}

// NewSession starts a game from the standard position, writing all output to out
func NewSession(out io.Writer) *Session {
	s := &Session{out: out, theme: ThemeOff}
	s.Reset(rules.NewGame())
	return s
}

// Reset replaces the current game with one starting at state
func (s *Session) Reset(state *rules.GameState) {
	s.start = state.Clone()
	s.state = state.Clone()
	s.history = nil
	s.moves = nil
}

// State returns the live position; callers must not modify it
func (s *Session) State() *rules.GameState {
	return s.state
}

func (s *Session) Moves() []rules.Move {
	return s.moves
}

// Done reports whether the user asked to leave
func (s *Session) Done() bool {
	return s.done
}

func (s *Session) Theme() Theme {
	return s.theme
}

// Play applies m for the side to move and records it for undo
func (s *Session) Play(m rules.Move) (rules.Status, error) {
	before := *s.state
	status, err := s.state.ApplyMove(m)
	if err != nil {
		return status, err
	}
	s.history = append(s.history, before)
	s.moves = append(s.moves, m)
	return status, nil
}

// Undo takes back the last count plies
func (s *Session) Undo(count int) error {
	if count < 1 {
		return fmt.Errorf("undo count must be positive")
	}
	if count > len(s.history) {
		return fmt.Errorf("%w: %d move(s) played", ErrNothingToUndo, len(s.history))
	}
	keep := len(s.history) - count
	restored := s.history[keep]
	s.state = &restored
	s.history = s.history[:keep]
	s.moves = s.moves[:keep]
	return nil
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// colorize wraps text in color unless the board theme is off
func (s *Session) colorize(color, text string) string {
	if s.theme == ThemeOff {
		return text
	}
	return color + text + Reset
}

func (s *Session) showBoard(marked map[rules.Square]bool) {
	s.printf("\n%s\n\n", renderBoard(&s.state.Board, s.theme, s.glyphs, marked))
}

func (s *Session) showTurn() {
	if line := statusLine(s.state); line != "" {
		color := Yellow
		if s.state.Status.Over() {
			color = Green
		}
		s.printf("%s\n", s.colorize(color, line))
	}
	if s.state.Status.Over() {
		s.printf("Start a new game with 'new' or 'resume <FEN>'.\n")
		return
	}
	s.printf("%s to move\n", s.state.SideToMove.Name())
}
