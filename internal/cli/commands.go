package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"chessrules/internal/rules"
)

func (r *Registry) registerGameCommands() {
	r.Register(&Command{
		Name:        "new",
		ShortName:   "n",
		Description: "Start a new game from the standard position",
		Usage:       "new",
		Handler:     newHandler,
	})
	r.Register(&Command{
		Name:        "resume",
		ShortName:   "r",
		Description: "Start from a FEN position",
		Usage:       "resume <FEN>",
		Handler:     resumeHandler,
	})
	r.Register(&Command{
		Name:        "move",
		ShortName:   "m",
		Description: "Play a move in UCI notation",
		Usage:       "move <from><to>[promotion], e.g. move e2e4, move e7e8q",
		Handler:     moveHandler,
	})
	r.Register(&Command{
		Name:        "moves",
		ShortName:   "l",
		Description: "List legal moves, optionally for one square",
		Usage:       "moves [square]",
		Handler:     legalMovesHandler,
	})
	r.Register(&Command{
		Name:        "undo",
		ShortName:   "u",
		Description: "Take back moves (default 1)",
		Usage:       "undo [count]",
		Handler:     undoHandler,
	})
	r.Register(&Command{
		Name:        "history",
		ShortName:   "h",
		Description: "Show the move list and FEN",
		Usage:       "history",
		Handler:     historyHandler,
	})
}

func (r *Registry) registerDisplayCommands() {
	r.Register(&Command{
		Name:        "board",
		ShortName:   "b",
		Description: "Show the board",
		Usage:       "board",
		Handler:     boardHandler,
	})
	r.Register(&Command{
		Name:        "theme",
		ShortName:   "t",
		Description: "Set the board color theme",
		Usage:       "theme <off|brown|green|gray>",
		Handler:     themeHandler,
	})
	r.Register(&Command{
		Name:        "glyphs",
		ShortName:   "g",
		Description: "Toggle unicode piece symbols",
		Usage:       "glyphs",
		Handler:     glyphsHandler,
	})
}

func newHandler(s *Session, args []string) error {
	s.Reset(rules.NewGame())
	s.printf("New game started.\n")
	s.showBoard(nil)
	s.showTurn()
	return nil
}

func resumeHandler(s *Session, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: resume <FEN>")
	}
	state, err := rules.ParseFEN(strings.Join(args, " "))
	if err != nil {
		return err
	}
	s.Reset(state)
	s.printf("Resumed from %s\n", state.FEN())
	s.showBoard(nil)
	s.showTurn()
	return nil
}

func moveHandler(s *Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: move <from><to>[promotion]")
	}
	m, err := rules.ParseMove(args[0])
	if err != nil {
		return err
	}

	mover := s.state.SideToMove
	if _, err := s.Play(m); err != nil {
		return err
	}

	s.printf("%s: %s\n", mover.Name(), m)
	s.showBoard(map[rules.Square]bool{m.From: true, m.To: true})
	s.showTurn()
	return nil
}

func legalMovesHandler(s *Session, args []string) error {
	var moves []rules.Move
	var marked map[rules.Square]bool

	if len(args) > 0 {
		from, err := rules.ParseSquare(strings.ToLower(args[0]))
		if err != nil {
			return err
		}
		moves = s.state.LegalMovesFrom(from)
		marked = map[rules.Square]bool{from: true}
		for _, m := range moves {
			marked[m.To] = true
		}
	} else {
		moves = s.state.LegalMoves()
	}

	if len(moves) == 0 {
		s.printf("No legal moves\n")
		return nil
	}

	names := make([]string, len(moves))
	for i, m := range moves {
		names[i] = m.String()
	}
	sort.Strings(names)

	if marked != nil {
		s.showBoard(marked)
	}
	s.printf("%d legal move(s): %s\n", len(names), strings.Join(names, " "))
	return nil
}

func undoHandler(s *Session, args []string) error {
	count := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid count: %s", args[0])
		}
		count = n
	}
	if err := s.Undo(count); err != nil {
		return err
	}
	s.printf("Took back %d move(s)\n", count)
	s.showBoard(nil)
	s.showTurn()
	return nil
}

func historyHandler(s *Session, args []string) error {
	s.printf("Starting FEN: %s\n", s.start.FEN())
	if len(s.moves) > 0 {
		s.printf("%s", formatHistory(s.start, s.moves))
	}
	s.printf("Current FEN: %s\n", s.state.FEN())
	s.printf("Status: %s\n", s.state.Status)
	return nil
}

func boardHandler(s *Session, args []string) error {
	s.showBoard(nil)
	s.showTurn()
	return nil
}

func themeHandler(s *Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: theme <off|brown|green|gray>")
	}
	t, err := ParseTheme(args[0])
	if err != nil {
		return err
	}
	s.theme = t
	s.printf("Theme set to %s\n", t)
	return nil
}

func glyphsHandler(s *Session, args []string) error {
	s.glyphs = !s.glyphs
	if s.glyphs {
		s.printf("Unicode pieces on\n")
	} else {
		s.printf("Unicode pieces off\n")
	}
	return nil
}
