package service

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// WaitTimeout is the longest a long-poll request is held open
const WaitTimeout = 25 * time.Second

// WaitRegistry parks long-polling clients until the game they watch changes
type WaitRegistry struct {
	mu       sync.Mutex
	waiters  map[string]map[*waitRequest]struct{} // gameID → waiting clients
	timeout  time.Duration
	shutdown chan struct{}
	closed   bool
	wg       sync.WaitGroup
}

// closedWait is handed to clients that have nothing to wait for
var closedWait = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

type waitRequest struct {
	moveCount int
	done      chan struct{}
	once      sync.Once
}

func (r *waitRequest) release() {
	r.once.Do(func() { close(r.done) })
}

func NewWaitRegistry() *WaitRegistry {
	return newWaitRegistry(WaitTimeout)
}

func newWaitRegistry(timeout time.Duration) *WaitRegistry {
	return &WaitRegistry{
		waiters:  make(map[string]map[*waitRequest]struct{}),
		timeout:  timeout,
		shutdown: make(chan struct{}),
	}
}

// RegisterWait returns a channel closed when the game's move count moves away
// from moveCount, the game is removed, the wait times out, ctx ends, or the
// registry shuts down.
func (w *WaitRegistry) RegisterWait(ctx context.Context, gameID string, moveCount int) <-chan struct{} {
	req := &waitRequest{moveCount: moveCount, done: make(chan struct{})}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		req.release()
		return req.done
	}
	if w.waiters[gameID] == nil {
		w.waiters[gameID] = make(map[*waitRequest]struct{})
	}
	w.waiters[gameID][req] = struct{}{}
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		timer := time.NewTimer(w.timeout)
		defer timer.Stop()

		select {
		case <-req.done:
		case <-ctx.Done():
		case <-timer.C:
		case <-w.shutdown:
		}
		req.release()
		w.remove(gameID, req)
	}()

	return req.done
}

// NotifyGame wakes every waiter whose known move count differs from the current one
func (w *WaitRegistry) NotifyGame(gameID string, currentMoveCount int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for req := range w.waiters[gameID] {
		if req.moveCount != currentMoveCount {
			req.release()
		}
	}
}

// RemoveGame wakes all waiters of a game about to be deleted
func (w *WaitRegistry) RemoveGame(gameID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for req := range w.waiters[gameID] {
		req.release()
	}
}

// Waiting reports the number of parked requests for a game
func (w *WaitRegistry) Waiting(gameID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.waiters[gameID])
}

func (w *WaitRegistry) remove(gameID string, req *waitRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.waiters[gameID], req)
	if len(w.waiters[gameID]) == 0 {
		delete(w.waiters, gameID)
	}
}

// Shutdown releases every waiter and waits for their goroutines
func (w *WaitRegistry) Shutdown(timeout time.Duration) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.shutdown)
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("wait registry shutdown timed out")
	}
}
