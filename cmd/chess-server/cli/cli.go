// Package cli implements the `db` administration subcommands of the chess server.
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"chessrules/internal/server/storage"
)

// output is where command results are printed
var output io.Writer = os.Stdout

type subcommand struct {
	summary string
	run     func(args []string) error
}

var dbCommands = map[string]subcommand{
	"init":   {"create the schema", runInit},
	"delete": {"remove the database file", runDelete},
	"query":  {"list games, optionally with moves", runQuery},
	"purge":  {"drop expired temporary users and sessions", runPurge},
	"user":   {"manage accounts", runUser},
}

// Run is the entry point for `chess-server db ...`
func Run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("subcommand required: %s", commandNames(dbCommands))
	}
	cmd, ok := dbCommands[args[0]]
	if !ok {
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
	return cmd.run(args[1:])
}

func commandNames(m map[string]subcommand) string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// dbFlags is a flag set carrying the -path flag shared by every subcommand
type dbFlags struct {
	*flag.FlagSet
	path *string
}

func newFlags(name string) *dbFlags {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	return &dbFlags{
		FlagSet: fs,
		path:    fs.String("path", "", "Database file path (required)"),
	}
}

// open parses args, checks the required string flags are set and opens the database
func (f *dbFlags) open(args []string, required ...string) (*storage.Store, error) {
	if err := f.Parse(args); err != nil {
		return nil, err
	}
	if *f.path == "" {
		return nil, fmt.Errorf("database path required")
	}
	for _, name := range required {
		if fl := f.Lookup(name); fl == nil || fl.Value.String() == "" {
			return nil, fmt.Errorf("-%s required", name)
		}
	}

	store, err := storage.NewStore(*f.path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

func runInit(args []string) error {
	store, err := newFlags("init").open(args)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	fmt.Fprintf(output, "Database initialized at: %s\n", store.Path())
	return nil
}

func runDelete(args []string) error {
	store, err := newFlags("delete").open(args)
	if err != nil {
		return err
	}

	if err := store.DeleteDB(); err != nil {
		return fmt.Errorf("failed to delete database: %w", err)
	}
	fmt.Fprintf(output, "Database deleted: %s\n", store.Path())
	return nil
}

func runQuery(args []string) error {
	fs := newFlags("query")
	gameID := fs.String("gameId", "", "Game ID to filter (optional, * for all)")
	playerID := fs.String("playerId", "", "Player user ID to filter (optional, * for all)")
	showMoves := fs.Bool("moves", false, "Print the move list when exactly one game matches")

	store, err := fs.open(args)
	if err != nil {
		return err
	}
	defer store.Close()

	games, err := store.QueryGames(*gameID, *playerID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if len(games) == 0 {
		fmt.Fprintln(output, "No games found")
		return nil
	}

	w := tabwriter.NewWriter(output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Game ID\tWhite\tBlack\tState\tStarted\tEnded")
	for _, g := range games {
		ended := "-"
		if g.EndTimeUTC != nil {
			ended = g.EndTimeUTC.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(g.GameID),
			seatLabel(g.WhiteUserID),
			seatLabel(g.BlackUserID),
			g.State,
			g.StartTimeUTC.Format("2006-01-02 15:04:05"),
			ended,
		)
	}
	w.Flush()

	if *showMoves && len(games) == 1 {
		return printMoves(store, games[0])
	}
	fmt.Fprintf(output, "\nFound %d game(s)\n", len(games))
	return nil
}

func printMoves(store *storage.Store, g storage.GameRecord) error {
	moves, err := store.GameMoves(g.GameID)
	if err != nil {
		return fmt.Errorf("failed to load moves: %w", err)
	}

	fmt.Fprintf(output, "\nStart: %s\n", g.InitialFEN)
	for _, m := range moves {
		fmt.Fprintf(output, "%4d  %s  %-6s %s\n", m.MoveNumber, m.PlayerColor, m.MoveUCI, m.MoveTimeUTC.Format("15:04:05"))
	}
	if g.FinalFEN != "" {
		fmt.Fprintf(output, "Final: %s\n", g.FinalFEN)
	}
	return nil
}

// runPurge removes expired temporary accounts and sessions
func runPurge(args []string) error {
	store, err := newFlags("purge").open(args)
	if err != nil {
		return err
	}
	defer store.Close()

	users, err := store.DeleteExpiredTempUsers()
	if err != nil {
		return fmt.Errorf("failed to purge users: %w", err)
	}
	sessions, err := store.DeleteExpiredSessions()
	if err != nil {
		return fmt.Errorf("failed to purge sessions: %w", err)
	}

	fmt.Fprintf(output, "Purged %d expired user(s) and %d expired session(s)\n", users, sessions)
	return nil
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}

func seatLabel(userID string) string {
	if userID == "" {
		return "(open)"
	}
	return shortID(userID)
}
