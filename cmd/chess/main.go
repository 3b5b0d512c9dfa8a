// Package main runs a two-player chess game in the terminal.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"chessrules/internal/cli"
	"chessrules/internal/rules"

	"github.com/chzyer/readline"
)

func main() {
	var (
		fen     = flag.String("fen", "", "Start from this FEN instead of the standard position")
		theme   = flag.String("theme", "off", "Board color theme (off|brown|green|gray)")
		history = flag.String("history-file", ".chess_history", "Readline history file, empty to disable")
	)
	flag.Parse()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          cli.Prompt("chess"),
		HistoryFile:     *history,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s%v%s\n", cli.Red, err, cli.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	session := cli.NewSession(rl.Stdout())
	registry := cli.NewRegistry(session)

	if *theme != "off" {
		registry.Execute("theme " + *theme)
	}
	if *fen != "" {
		start, err := rules.ParseFEN(*fen)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		session.Reset(start)
	}

	fmt.Fprintf(rl.Stdout(), "%sChess%s - two players, one terminal\n", cli.Cyan, cli.Reset)
	fmt.Fprintf(rl.Stdout(), "Enter moves like e2e4. Type 'help' for commands.\n")
	registry.Execute("board")

	for !session.Done() {
		rl.SetPrompt(buildPrompt(session))

		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		registry.Execute(strings.TrimSpace(line))
	}
}

func buildPrompt(s *cli.Session) string {
	state := s.State()
	if state.Status.Over() {
		return cli.Prompt("chess [" + state.Status.String() + "]")
	}

	color := cli.Blue
	if state.SideToMove == rules.Black {
		color = cli.Red
	}
	return cli.Prompt(fmt.Sprintf("chess [%s%s%s%s %d]",
		color, state.SideToMove.Name(), cli.Reset, cli.Yellow, state.FullmoveNumber))
}
