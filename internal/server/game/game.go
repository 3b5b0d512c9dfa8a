package game

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"chessrules/internal/rules"
	"chessrules/internal/server/core"
)

var (
	ErrSeatTaken    = errors.New("seat already taken")
	ErrNotYourTurn  = errors.New("not your turn")
	ErrNoPermission = errors.New("not a player in this game")
	ErrGameOver     = errors.New("game is over")
	ErrCannotUndo   = errors.New("cannot undo")
)

// Snapshot is one entry of the position history
type Snapshot struct {
	FEN          string      `json:"fen"`
	PreviousMove string      `json:"previousMove"`
	NextTurn     rules.Color `json:"nextTurn"`
}

// MoveResult describes an accepted move and the position it produced
type MoveResult struct {
	Move        rules.Move
	PlayerColor rules.Color
	State       core.State
	FEN         string
	Ply         int // number of moves played, this one included
}

// Game is a single chess game: the engine state, its history and the seats.
// All methods are safe for concurrent use; a game never shares state with another.
type Game struct {
	mu         sync.RWMutex
	id         string
	position   *rules.GameState
	snapshots  []Snapshot
	seats      [2]string // user IDs by colour, empty when open
	lastResult *MoveResult
	updatedAt  time.Time
}

func New(id string, initial *rules.GameState) *Game {
	return &Game{
		id:        id,
		position:  initial.Clone(),
		snapshots: []Snapshot{{FEN: initial.FEN(), NextTurn: initial.SideToMove}},
		updatedAt: time.Now().UTC(),
	}
}

// Restore rebuilds a game by replaying stored moves from its initial position
func Restore(id, initialFEN string, moves []string, seats [2]string) (*Game, error) {
	initial, err := rules.ParseFEN(initialFEN)
	if err != nil {
		return nil, err
	}
	g := New(id, initial)
	g.seats = seats
	for i, uci := range moves {
		m, err := rules.ParseMove(uci)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
		if _, err := g.apply(m); err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
	}
	return g, nil
}

func (g *Game) ID() string {
	return g.id
}

// MakeMove plays m for userID. A claimed seat only accepts moves from its owner.
func (g *Game) MakeMove(userID string, m rules.Move) (MoveResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.position.Status.Over() {
		return MoveResult{}, fmt.Errorf("%w: %s", ErrGameOver, core.StateOf(g.position))
	}
	if owner := g.seats[g.position.SideToMove]; owner != "" && owner != userID {
		return MoveResult{}, ErrNotYourTurn
	}
	return g.apply(m)
}

// apply runs the move through the engine; the caller holds the write lock
func (g *Game) apply(m rules.Move) (MoveResult, error) {
	mover := g.position.SideToMove

	var played rules.Move
	for _, legal := range g.position.LegalMovesFrom(m.From) {
		if legal.To == m.To && legal.Promotion == m.Promotion {
			played = legal
			break
		}
	}

	if _, err := g.position.ApplyMove(m); err != nil {
		return MoveResult{}, err
	}

	fen := g.position.FEN()
	g.snapshots = append(g.snapshots, Snapshot{
		FEN:          fen,
		PreviousMove: played.String(),
		NextTurn:     g.position.SideToMove,
	})
	g.updatedAt = time.Now().UTC()

	result := &MoveResult{
		Move:        played,
		PlayerColor: mover,
		State:       core.StateOf(g.position),
		FEN:         fen,
		Ply:         len(g.snapshots) - 1,
	}
	g.lastResult = result
	return *result, nil
}

// UndoMoves takes back count moves. Anyone holding a seat may undo; with no
// claimed seats the game is open to everyone.
func (g *Game) UndoMoves(userID string, count int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.isParticipant(userID) {
		return ErrNoPermission
	}
	if count < 1 {
		return fmt.Errorf("%w: invalid count %d", ErrCannotUndo, count)
	}

	available := len(g.snapshots) - 1
	if available < count {
		return fmt.Errorf("%w %d moves: only %d available", ErrCannotUndo, count, available)
	}

	target := g.snapshots[len(g.snapshots)-1-count]
	restored, err := rules.ParseFEN(target.FEN)
	if err != nil {
		return fmt.Errorf("restore position: %w", err)
	}

	g.snapshots = g.snapshots[:len(g.snapshots)-count]
	g.position = restored
	g.lastResult = nil
	g.updatedAt = time.Now().UTC()
	return nil
}

// ClaimSeat binds a colour to a user. Claiming your own seat again is a no-op.
func (g *Game) ClaimSeat(color rules.Color, userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.seats[color] {
	case "":
		g.seats[color] = userID
		g.updatedAt = time.Now().UTC()
		return nil
	case userID:
		return nil
	default:
		return ErrSeatTaken
	}
}

func (g *Game) SeatOwner(color rules.Color) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.seats[color]
}

func (g *Game) Seats() [2]string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.seats
}

// IsParticipant reports whether userID holds a seat, or whether no seat is claimed at all
func (g *Game) IsParticipant(userID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.isParticipant(userID)
}

func (g *Game) isParticipant(userID string) bool {
	if g.seats[rules.White] == "" && g.seats[rules.Black] == "" {
		return true
	}
	return userID != "" && (g.seats[rules.White] == userID || g.seats[rules.Black] == userID)
}

// LegalMoves lists the legal moves of the side to move, optionally only those from one square
func (g *Game) LegalMoves(from rules.Square) []rules.Move {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.position.Status.Over() {
		return nil
	}
	if from == rules.NoSquare {
		return g.position.LegalMoves()
	}
	return g.position.LegalMovesFrom(from)
}

// Position returns a copy of the current engine state
func (g *Game) Position() *rules.GameState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.position.Clone()
}

func (g *Game) State() core.State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return core.StateOf(g.position)
}

func (g *Game) CurrentFEN() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.snapshots[len(g.snapshots)-1].FEN
}

func (g *Game) InitialFEN() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.snapshots[0].FEN
}

func (g *Game) NextTurn() rules.Color {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.position.SideToMove
}

func (g *Game) Moves() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.moves()
}

func (g *Game) moves() []string {
	moves := make([]string, 0, len(g.snapshots)-1)
	for _, s := range g.snapshots[1:] {
		moves = append(moves, s.PreviousMove)
	}
	return moves
}

func (g *Game) MoveCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.snapshots) - 1
}

func (g *Game) LastResult() *MoveResult {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.lastResult == nil {
		return nil
	}
	r := *g.lastResult
	return &r
}

// UpdatedAt is the time of the last move, undo or seat change
func (g *Game) UpdatedAt() time.Time {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.updatedAt
}

// View is a consistent read of everything an API response needs
type View struct {
	ID         string
	FEN        string
	Turn       rules.Color
	State      core.State
	DrawReason rules.DrawReason
	Moves      []string
	Seats      [2]string
	LastMove   *MoveResult
}

func (g *Game) View() View {
	g.mu.RLock()
	defer g.mu.RUnlock()

	v := View{
		ID:         g.id,
		FEN:        g.snapshots[len(g.snapshots)-1].FEN,
		Turn:       g.position.SideToMove,
		State:      core.StateOf(g.position),
		DrawReason: g.position.DrawReason,
		Moves:      g.moves(),
		Seats:      g.seats,
	}
	if g.lastResult != nil {
		r := *g.lastResult
		v.LastMove = &r
	}
	return v
}
