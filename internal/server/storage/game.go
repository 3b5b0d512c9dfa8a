package storage

import (
	"database/sql"
	"fmt"
	"time"
)

const gameColumns = `game_id, initial_fen, white_user_id, black_user_id, state, final_fen, start_time_utc, end_time_utc`

// RecordNewGame asynchronously records a new game
func (s *Store) RecordNewGame(record GameRecord) {
	s.enqueue("game record", func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO games (
			game_id, initial_fen, white_user_id, black_user_id, state, start_time_utc
		) VALUES (?, ?, ?, ?, ?, ?)`,
			record.GameID, record.InitialFEN, record.WhiteUserID, record.BlackUserID,
			record.State, record.StartTimeUTC,
		)
		return err
	})
}

// RecordMove asynchronously records a move
func (s *Store) RecordMove(record MoveRecord) {
	s.enqueue("move record", func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO moves (
			game_id, move_number, move_uci, fen_after_move, player_color, move_time_utc
		) VALUES (?, ?, ?, ?, ?, ?)`,
			record.GameID, record.MoveNumber, record.MoveUCI,
			record.FENAfterMove, record.PlayerColor, record.MoveTimeUTC,
		)
		return err
	})
}

// RecordSeat asynchronously stores the user holding a colour ("w" or "b")
func (s *Store) RecordSeat(gameID, color, userID string) {
	column := "white_user_id"
	if color == "b" {
		column = "black_user_id"
	}
	s.enqueue("seat update", func(tx *sql.Tx) error {
		_, err := tx.Exec(`UPDATE games SET `+column+` = ? WHERE game_id = ?`, userID, gameID)
		return err
	})
}

// UpdateGameState asynchronously stores the game's state. A finished game also
// records its final position and end time; an ongoing one clears them.
func (s *Store) UpdateGameState(gameID, state, finalFEN string, finished bool) {
	s.enqueue("state update", func(tx *sql.Tx) error {
		var err error
		if finished {
			_, err = tx.Exec(`UPDATE games SET state = ?, final_fen = ?, end_time_utc = ? WHERE game_id = ?`,
				state, finalFEN, time.Now().UTC(), gameID)
		} else {
			_, err = tx.Exec(`UPDATE games SET state = ?, final_fen = '', end_time_utc = NULL WHERE game_id = ?`,
				state, gameID)
		}
		return err
	})
}

// DeleteUndoneMoves asynchronously deletes moves after undo
func (s *Store) DeleteUndoneMoves(gameID string, afterMoveNumber int) {
	s.enqueue("undo", func(tx *sql.Tx) error {
		_, err := tx.Exec(`DELETE FROM moves WHERE game_id = ? AND move_number > ?`, gameID, afterMoveNumber)
		return err
	})
}

// DeleteGame asynchronously removes a game and, by cascade, its moves
func (s *Store) DeleteGame(gameID string) {
	s.enqueue("game deletion", func(tx *sql.Tx) error {
		_, err := tx.Exec(`DELETE FROM games WHERE game_id = ?`, gameID)
		return err
	})
}

// QueryGames retrieves games with optional filtering; "*" or "" matches all
func (s *Store) QueryGames(gameID, playerID string) ([]GameRecord, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE 1=1`
	var args []any

	if gameID != "" && gameID != "*" {
		query += " AND game_id = ?"
		args = append(args, gameID)
	}
	if playerID != "" && playerID != "*" {
		query += " AND (white_user_id = ? OR black_user_id = ?)"
		args = append(args, playerID, playerID)
	}
	query += " ORDER BY start_time_utc DESC"

	return s.queryGames(query, args...)
}

// ActiveGames returns games that have not finished, oldest first
func (s *Store) ActiveGames() ([]GameRecord, error) {
	return s.queryGames(`SELECT `+gameColumns+` FROM games
		WHERE state IN ('ongoing', 'check') ORDER BY start_time_utc ASC`)
}

func (s *Store) queryGames(query string, args ...any) ([]GameRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var games []GameRecord
	for rows.Next() {
		var g GameRecord
		err := rows.Scan(
			&g.GameID, &g.InitialFEN, &g.WhiteUserID, &g.BlackUserID,
			&g.State, &g.FinalFEN, &g.StartTimeUTC, &g.EndTimeUTC,
		)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return games, nil
}

// GameMoves returns the moves of a game in play order
func (s *Store) GameMoves(gameID string) ([]MoveRecord, error) {
	rows, err := s.db.Query(`SELECT move_id, game_id, move_number, move_uci, fen_after_move, player_color, move_time_utc
		FROM moves WHERE game_id = ? ORDER BY move_number ASC`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var moves []MoveRecord
	for rows.Next() {
		var m MoveRecord
		if err := rows.Scan(&m.MoveID, &m.GameID, &m.MoveNumber, &m.MoveUCI,
			&m.FENAfterMove, &m.PlayerColor, &m.MoveTimeUTC); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		moves = append(moves, m)
	}
	return moves, rows.Err()
}
