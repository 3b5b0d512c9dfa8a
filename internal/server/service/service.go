package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"chessrules/internal/server/game"
	"chessrules/internal/server/storage"
)

const (
	MaxGames           = 1000
	MaxUsers           = 100
	PermanentSlots     = 10
	TempUserTTL        = 24 * time.Hour
	SessionTTL         = 7 * 24 * time.Hour
	FinishedGameTTL    = 1 * time.Hour
	CleanupJobInterval = 1 * time.Hour
)

var (
	ErrGameNotFound    = errors.New("game not found")
	ErrGameLimit       = errors.New("game limit reached")
	ErrStorageDisabled = errors.New("storage disabled")
)

// Service coordinates games, users and storage
type Service struct {
	games     map[string]*game.Game
	mu        sync.RWMutex
	store     *storage.Store
	jwtSecret []byte
	waiter    *WaitRegistry
}

// New creates a service; store may be nil to run without persistence
func New(store *storage.Store, jwtSecret []byte) *Service {
	return &Service{
		games:     make(map[string]*game.Game),
		store:     store,
		jwtSecret: jwtSecret,
		waiter:    NewWaitRegistry(),
	}
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// GameCount returns the number of games held in memory
func (s *Service) GameCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// RegisterWait parks a client until the game's move count differs from moveCount.
// The returned channel is already closed when the game is missing or has moved on.
// Mutations notify under s.mu, so checking and registering under the read lock
// cannot miss a move.
func (s *Service) RegisterWait(ctx context.Context, gameID string, moveCount int) <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[gameID]
	if !ok || g.MoveCount() != moveCount {
		return closedWait
	}
	return s.waiter.RegisterWait(ctx, gameID, moveCount)
}

// ReleaseWaiters ends every parked long-poll and makes later waits return at once.
// Call it before stopping the HTTP server so open polls do not hold shutdown.
func (s *Service) ReleaseWaiters(timeout time.Duration) error {
	return s.waiter.Shutdown(timeout)
}

// Shutdown releases waiters, drops in-memory games and closes storage
func (s *Service) Shutdown(timeout time.Duration) error {
	var errs []error

	if err := s.ReleaseWaiters(timeout); err != nil {
		errs = append(errs, fmt.Errorf("wait registry: %w", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.games = make(map[string]*game.Game)

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	return errors.Join(errs...)
}

// RunCleanupJob periodically removes expired users and sessions and evicts idle finished games
func (s *Service) RunCleanupJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanupExpired()
		}
	}
}

func (s *Service) cleanupExpired() {
	if n := s.evictFinishedGames(time.Now().UTC().Add(-FinishedGameTTL)); n > 0 {
		log.Printf("cleanup: evicted %d finished games", n)
	}

	if s.store == nil {
		return
	}

	if deleted, err := s.store.DeleteExpiredTempUsers(); err != nil {
		log.Printf("cleanup: failed to delete expired users: %v", err)
	} else if deleted > 0 {
		log.Printf("cleanup: deleted %d expired temp users", deleted)
	}

	if deleted, err := s.store.DeleteExpiredSessions(); err != nil {
		log.Printf("cleanup: failed to delete expired sessions: %v", err)
	} else if deleted > 0 {
		log.Printf("cleanup: deleted %d expired sessions", deleted)
	}
}

// evictFinishedGames drops finished games untouched since cutoff from memory.
// Their history stays in storage.
func (s *Service) evictFinishedGames(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, g := range s.games {
		if g.State().Over() && g.UpdatedAt().Before(cutoff) {
			s.waiter.RemoveGame(id)
			delete(s.games, id)
			evicted++
		}
	}
	return evicted
}
