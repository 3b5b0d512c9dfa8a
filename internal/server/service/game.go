package service

import (
	"fmt"
	"log"
	"time"

	"chessrules/internal/rules"
	"chessrules/internal/server/core"
	"chessrules/internal/server/game"
	"chessrules/internal/server/storage"

	"github.com/google/uuid"
)

// CreateGame registers a new game starting from initial. seats holds the user
// IDs pre-claiming white and black; empty strings leave a seat open.
func (s *Service) CreateGame(initial *rules.GameState, seats [2]string) (*game.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.games) >= MaxGames {
		return nil, fmt.Errorf("%w: %d games", ErrGameLimit, MaxGames)
	}

	id := s.generateGameID()
	g := game.New(id, initial)
	for color, userID := range seats {
		if userID != "" {
			if err := g.ClaimSeat(rules.Color(color), userID); err != nil {
				return nil, err
			}
		}
	}
	s.games[id] = g

	if s.store != nil {
		s.store.RecordNewGame(storage.GameRecord{
			GameID:       id,
			InitialFEN:   g.InitialFEN(),
			WhiteUserID:  seats[rules.White],
			BlackUserID:  seats[rules.Black],
			State:        g.State().String(),
			StartTimeUTC: time.Now().UTC(),
		})
	}

	return g, nil
}

// GetGame retrieves a game by ID
func (s *Service) GetGame(gameID string) (*game.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return g, nil
}

// generateGameID returns a UUID not used by any live game; the caller holds s.mu
func (s *Service) generateGameID() string {
	for {
		id := uuid.New().String()
		if _, exists := s.games[id]; !exists {
			return id
		}
	}
}

// JoinGame claims a seat for userID
func (s *Service) JoinGame(gameID string, color rules.Color, userID string) (*game.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	if err := g.ClaimSeat(color, userID); err != nil {
		return nil, err
	}

	s.waiter.NotifyGame(gameID, -1)

	if s.store != nil {
		s.store.RecordSeat(gameID, color.String(), userID)
	}
	return g, nil
}

// MoveOutcome is a played move plus the game as it stood right after it
type MoveOutcome struct {
	game.MoveResult
	View game.View
}

// MakeMove plays a move for userID, notifies long-polling clients and records
// the move. Mutations hold the service lock so storage sees moves in order.
func (s *Service) MakeMove(gameID, userID string, m rules.Move) (MoveOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return MoveOutcome{}, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	result, err := g.MakeMove(userID, m)
	if err != nil {
		return MoveOutcome{}, err
	}

	s.waiter.NotifyGame(gameID, result.Ply)

	if s.store != nil {
		s.store.RecordMove(storage.MoveRecord{
			GameID:       gameID,
			MoveNumber:   result.Ply,
			MoveUCI:      result.Move.String(),
			FENAfterMove: result.FEN,
			PlayerColor:  result.PlayerColor.String(),
			MoveTimeUTC:  time.Now().UTC(),
		})
		s.store.UpdateGameState(gameID, result.State.String(), result.FEN, result.State.Over())
	}

	return MoveOutcome{MoveResult: result, View: g.View()}, nil
}

// UndoMoves takes back count moves and drops them from storage
func (s *Service) UndoMoves(gameID, userID string, count int) (*game.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	if err := g.UndoMoves(userID, count); err != nil {
		return nil, err
	}

	remaining := g.MoveCount()
	s.waiter.NotifyGame(gameID, remaining)

	if s.store != nil {
		s.store.DeleteUndoneMoves(gameID, remaining)
		state := g.State()
		s.store.UpdateGameState(gameID, state.String(), g.CurrentFEN(), state.Over())
	}

	return g, nil
}

// DeleteGame removes a game from memory and storage
func (s *Service) DeleteGame(gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[gameID]; !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	s.waiter.RemoveGame(gameID)
	delete(s.games, gameID)

	if s.store != nil {
		s.store.DeleteGame(gameID)
	}
	return nil
}

// RestoreGames reloads unfinished games from storage by replaying their moves.
// Games that fail to replay are logged and skipped.
func (s *Service) RestoreGames() (int, error) {
	if s.store == nil {
		return 0, nil
	}

	records, err := s.store.ActiveGames()
	if err != nil {
		return 0, fmt.Errorf("load active games: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	restored := 0
	for _, rec := range records {
		if len(s.games) >= MaxGames {
			log.Printf("restore: game limit reached, %d games not loaded", len(records)-restored)
			break
		}

		moves, err := s.store.GameMoves(rec.GameID)
		if err != nil {
			log.Printf("restore: game %s: failed to load moves: %v", rec.GameID, err)
			continue
		}
		ucis := make([]string, len(moves))
		for i, m := range moves {
			ucis[i] = m.MoveUCI
		}

		g, err := game.Restore(rec.GameID, rec.InitialFEN, ucis, [2]string{rec.WhiteUserID, rec.BlackUserID})
		if err != nil {
			log.Printf("restore: game %s: %v", rec.GameID, err)
			continue
		}
		if stored, ok := core.ParseState(rec.State); ok && stored != g.State() {
			log.Printf("restore: game %s: stored state %q, replay gives %q", rec.GameID, stored, g.State())
		}
		s.games[rec.GameID] = g
		restored++
	}

	return restored, nil
}
