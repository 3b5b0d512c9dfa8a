package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"), false)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := s.InitDB(); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func flush(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func TestGameLifecycle(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()

	s.RecordNewGame(GameRecord{
		GameID:       "g1",
		InitialFEN:   "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		WhiteUserID:  "alice",
		State:        "ongoing",
		StartTimeUTC: now,
	})
	s.RecordMove(MoveRecord{GameID: "g1", MoveNumber: 1, MoveUCI: "e2e4", FENAfterMove: "fen1", PlayerColor: "w", MoveTimeUTC: now})
	s.RecordMove(MoveRecord{GameID: "g1", MoveNumber: 2, MoveUCI: "e7e5", FENAfterMove: "fen2", PlayerColor: "b", MoveTimeUTC: now})
	s.RecordSeat("g1", "b", "bob")
	flush(t, s)

	games, err := s.QueryGames("g1", "")
	if err != nil {
		t.Fatalf("QueryGames: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("got %d games, want 1", len(games))
	}
	if games[0].WhiteUserID != "alice" || games[0].BlackUserID != "bob" {
		t.Errorf("seats = %q/%q, want alice/bob", games[0].WhiteUserID, games[0].BlackUserID)
	}

	byPlayer, err := s.QueryGames("*", "bob")
	if err != nil || len(byPlayer) != 1 {
		t.Errorf("QueryGames by player = %d, %v; want 1 game", len(byPlayer), err)
	}

	moves, err := s.GameMoves("g1")
	if err != nil {
		t.Fatalf("GameMoves: %v", err)
	}
	if len(moves) != 2 || moves[0].MoveUCI != "e2e4" || moves[1].MoveUCI != "e7e5" {
		t.Fatalf("unexpected moves: %+v", moves)
	}

	s.DeleteUndoneMoves("g1", 1)
	flush(t, s)
	moves, _ = s.GameMoves("g1")
	if len(moves) != 1 {
		t.Errorf("after undo got %d moves, want 1", len(moves))
	}

	active, err := s.ActiveGames()
	if err != nil || len(active) != 1 {
		t.Fatalf("ActiveGames = %d, %v; want 1", len(active), err)
	}

	s.UpdateGameState("g1", "white wins", "finalfen", true)
	flush(t, s)
	active, _ = s.ActiveGames()
	if len(active) != 0 {
		t.Errorf("finished game still active")
	}
	games, _ = s.QueryGames("g1", "")
	if games[0].FinalFEN != "finalfen" || games[0].EndTimeUTC == nil {
		t.Errorf("final state not recorded: %+v", games[0])
	}

	s.DeleteGame("g1")
	flush(t, s)
	games, _ = s.QueryGames("g1", "")
	if len(games) != 0 {
		t.Errorf("game not deleted")
	}
	moves, _ = s.GameMoves("g1")
	if len(moves) != 0 {
		t.Errorf("moves not cascaded on delete")
	}
}

func TestFailedWriteDegradesStore(t *testing.T) {
	s := newTestStore(t)

	// move references a game that does not exist
	s.RecordMove(MoveRecord{GameID: "missing", MoveNumber: 1, MoveUCI: "e2e4", FENAfterMove: "x", PlayerColor: "w", MoveTimeUTC: time.Now().UTC()})

	deadline := time.Now().Add(5 * time.Second)
	for s.IsHealthy() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.IsHealthy() {
		t.Fatal("store still healthy after failed write")
	}
	if err := s.Flush(context.Background()); err == nil {
		t.Error("Flush on degraded store should fail")
	}
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()
	expires := now.Add(time.Hour)

	err := s.CreateUser(UserRecord{UserID: "u1", Username: "Alice", Email: "a@example.com", PasswordHash: "h", CreatedAt: now, ExpiresAt: &expires})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := s.CreateUser(UserRecord{UserID: "u2", Username: "alice", PasswordHash: "h", CreatedAt: now}); !errors.Is(err, ErrUserExists) {
		t.Errorf("duplicate username err = %v, want ErrUserExists", err)
	}

	u, err := s.GetUserByUsername("ALICE")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if u.UserID != "u1" || u.AccountType != AccountTemp || u.ExpiresAt == nil {
		t.Errorf("unexpected user %+v", u)
	}

	if err := s.PromoteToPermanent("u1"); err != nil {
		t.Fatalf("PromoteToPermanent: %v", err)
	}
	u, _ = s.GetUserByID("u1")
	if u.AccountType != AccountPermanent || u.ExpiresAt != nil {
		t.Errorf("promotion not applied: %+v", u)
	}

	total, permanent, temp, err := s.GetUserCounts()
	if err != nil || total != 1 || permanent != 1 || temp != 0 {
		t.Errorf("counts = %d/%d/%d, %v", total, permanent, temp, err)
	}

	if _, err := s.GetUserByEmail("nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("missing email err = %v", err)
	}

	if err := s.DeleteUserByID("u1"); err != nil {
		t.Fatalf("DeleteUserByID: %v", err)
	}
	if err := s.DeleteUserByID("u1"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestExpiredTempUsers(t *testing.T) {
	s := newTestStore(t)
	past := time.Now().UTC().Add(-time.Hour)
	future := time.Now().UTC().Add(time.Hour)

	s.CreateUser(UserRecord{UserID: "old", Username: "old", PasswordHash: "h", CreatedAt: past.Add(-time.Hour), ExpiresAt: &past})
	s.CreateUser(UserRecord{UserID: "new", Username: "new", PasswordHash: "h", CreatedAt: past, ExpiresAt: &future})

	oldest, err := s.GetOldestTempUser()
	if err != nil || oldest.UserID != "old" {
		t.Fatalf("oldest = %v, %v", oldest, err)
	}

	n, err := s.DeleteExpiredTempUsers()
	if err != nil || n != 1 {
		t.Errorf("deleted %d, %v; want 1", n, err)
	}
}

func TestSessions(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()
	s.CreateUser(UserRecord{UserID: "u1", Username: "u1", PasswordHash: "h", CreatedAt: now})

	if err := s.CreateSession(SessionRecord{SessionID: "s1", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if ok, _ := s.IsSessionValid("s1", "u1"); !ok {
		t.Error("session s1 should be valid")
	}

	// a second login replaces the first session
	s.CreateSession(SessionRecord{SessionID: "s2", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)})
	if ok, _ := s.IsSessionValid("s1", "u1"); ok {
		t.Error("session s1 should be replaced")
	}
	if _, err := s.GetSession("s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("GetSession(s1) err = %v", err)
	}

	if ok, _ := s.IsSessionValid("s2", "other"); ok {
		t.Error("session must belong to its user")
	}

	s.DeleteSession("s2")
	if ok, _ := s.IsSessionValid("s2", "u1"); ok {
		t.Error("deleted session still valid")
	}
}
