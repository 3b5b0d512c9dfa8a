package game

import (
	"errors"
	"sync"
	"testing"

	"chessrules/internal/rules"
	"chessrules/internal/server/core"
)

func move(t *testing.T, s string) rules.Move {
	t.Helper()
	m, err := rules.ParseMove(s)
	if err != nil {
		t.Fatalf("ParseMove(%q) error = %v", s, err)
	}
	return m
}

func TestMakeMoveRecordsHistory(t *testing.T) {
	g := New("g1", rules.NewGame())

	for _, uci := range []string{"e2e4", "e7e5", "g1f3"} {
		if _, err := g.MakeMove("", move(t, uci)); err != nil {
			t.Fatalf("MakeMove(%s) error = %v", uci, err)
		}
	}

	moves := g.Moves()
	if len(moves) != 3 || moves[0] != "e2e4" || moves[2] != "g1f3" {
		t.Fatalf("Moves() = %v", moves)
	}
	if g.NextTurn() != rules.Black {
		t.Fatalf("NextTurn() = %v, want black", g.NextTurn())
	}
	if g.InitialFEN() != rules.StartingFEN {
		t.Fatalf("InitialFEN() = %q", g.InitialFEN())
	}
	last := g.LastResult()
	if last == nil || last.Ply != 3 || last.PlayerColor != rules.White {
		t.Fatalf("LastResult() = %+v", last)
	}
}

func TestMakeMoveRejectsIllegal(t *testing.T) {
	g := New("g1", rules.NewGame())
	before := g.CurrentFEN()

	_, err := g.MakeMove("", move(t, "e2e5"))
	if !errors.Is(err, rules.ErrIllegalMove) {
		t.Fatalf("MakeMove(e2e5) error = %v, want ErrIllegalMove", err)
	}
	if g.CurrentFEN() != before || g.MoveCount() != 0 {
		t.Fatalf("game changed after illegal move")
	}
}

func TestMoveFlagsReported(t *testing.T) {
	initial, err := rules.ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN error = %v", err)
	}
	g := New("g1", initial)

	result, err := g.MakeMove("", move(t, "e1g1"))
	if err != nil {
		t.Fatalf("MakeMove(e1g1) error = %v", err)
	}
	if !result.Move.IsCastle() {
		t.Fatalf("result.Move = %+v, want castle flag", result.Move)
	}
}

func TestGameOverRejectsMoves(t *testing.T) {
	g := New("g1", rules.NewGame())
	for _, uci := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		if _, err := g.MakeMove("", move(t, uci)); err != nil {
			t.Fatalf("MakeMove(%s) error = %v", uci, err)
		}
	}
	if g.State() != core.StateBlackWins {
		t.Fatalf("State() = %v, want black wins", g.State())
	}
	if _, err := g.MakeMove("", move(t, "a2a3")); !errors.Is(err, ErrGameOver) {
		t.Fatalf("MakeMove after mate error = %v, want ErrGameOver", err)
	}
	if moves := g.LegalMoves(rules.NoSquare); len(moves) != 0 {
		t.Fatalf("LegalMoves() after mate = %v", moves)
	}
}

func TestSeats(t *testing.T) {
	g := New("g1", rules.NewGame())

	if err := g.ClaimSeat(rules.White, "alice"); err != nil {
		t.Fatalf("ClaimSeat(white, alice) error = %v", err)
	}
	if err := g.ClaimSeat(rules.White, "alice"); err != nil {
		t.Fatalf("reclaiming own seat error = %v", err)
	}
	if err := g.ClaimSeat(rules.White, "bob"); !errors.Is(err, ErrSeatTaken) {
		t.Fatalf("ClaimSeat(white, bob) error = %v, want ErrSeatTaken", err)
	}

	if _, err := g.MakeMove("bob", move(t, "e2e4")); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("bob moving white error = %v, want ErrNotYourTurn", err)
	}
	if _, err := g.MakeMove("alice", move(t, "e2e4")); err != nil {
		t.Fatalf("alice moving white error = %v", err)
	}
	// Black's seat is still open
	if _, err := g.MakeMove("", move(t, "e7e5")); err != nil {
		t.Fatalf("anonymous moving open black error = %v", err)
	}

	if err := g.UndoMoves("bob", 1); !errors.Is(err, ErrNoPermission) {
		t.Fatalf("UndoMoves(bob) error = %v, want ErrNoPermission", err)
	}
	if err := g.UndoMoves("alice", 1); err != nil {
		t.Fatalf("UndoMoves(alice) error = %v", err)
	}
}

func TestUndoMoves(t *testing.T) {
	g := New("g1", rules.NewGame())
	var fens []string
	for _, uci := range []string{"e2e4", "e7e5", "g1f3", "b8c6"} {
		fens = append(fens, g.CurrentFEN())
		if _, err := g.MakeMove("", move(t, uci)); err != nil {
			t.Fatalf("MakeMove(%s) error = %v", uci, err)
		}
	}

	if err := g.UndoMoves("", 2); err != nil {
		t.Fatalf("UndoMoves(2) error = %v", err)
	}
	if g.CurrentFEN() != fens[2] {
		t.Fatalf("CurrentFEN() = %q, want %q", g.CurrentFEN(), fens[2])
	}
	if g.Position().FEN() != fens[2] {
		t.Fatalf("engine position not restored: %q", g.Position().FEN())
	}
	if g.LastResult() != nil {
		t.Fatalf("LastResult() should be cleared after undo")
	}

	if err := g.UndoMoves("", 3); err == nil {
		t.Fatalf("UndoMoves(3) with 2 moves should fail")
	}
	if err := g.UndoMoves("", 0); err == nil {
		t.Fatalf("UndoMoves(0) should fail")
	}

	// The restored position keeps playing normally
	if _, err := g.MakeMove("", move(t, "g1f3")); err != nil {
		t.Fatalf("MakeMove after undo error = %v", err)
	}
}

func TestUndoReopensFinishedGame(t *testing.T) {
	g := New("g1", rules.NewGame())
	for _, uci := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		if _, err := g.MakeMove("", move(t, uci)); err != nil {
			t.Fatalf("MakeMove(%s) error = %v", uci, err)
		}
	}
	if err := g.UndoMoves("", 1); err != nil {
		t.Fatalf("UndoMoves error = %v", err)
	}
	if g.State() != core.StateOngoing {
		t.Fatalf("State() = %v, want ongoing", g.State())
	}
}

func TestRestore(t *testing.T) {
	g, err := Restore("g1", rules.StartingFEN, []string{"e2e4", "e7e5", "d1h5"}, [2]string{"alice", ""})
	if err != nil {
		t.Fatalf("Restore error = %v", err)
	}
	if g.MoveCount() != 3 || g.SeatOwner(rules.White) != "alice" {
		t.Fatalf("restored game: moves %d, white %q", g.MoveCount(), g.SeatOwner(rules.White))
	}

	if _, err := Restore("g2", rules.StartingFEN, []string{"e2e4", "e2e4"}, [2]string{}); err == nil {
		t.Fatalf("Restore with illegal move should fail")
	}
	if _, err := Restore("g3", "not a fen", nil, [2]string{}); !errors.Is(err, rules.ErrMalformedState) {
		t.Fatalf("Restore with bad FEN error = %v, want ErrMalformedState", err)
	}
}

func TestConcurrentMovesSerialize(t *testing.T) {
	g := New("g1", rules.NewGame())

	// Every goroutine tries the same first move; exactly one may succeed
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := g.MakeMove("", rules.Move{From: rules.E2, To: rules.E4})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
		}
	}
	if ok != 1 || g.MoveCount() != 1 {
		t.Fatalf("successful moves = %d, MoveCount() = %d, want 1 and 1", ok, g.MoveCount())
	}
}
