package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	ErrUserExists   = errors.New("username or email already exists")
	ErrUserNotFound = errors.New("user not found")
)

const userColumns = `user_id, username, email, password_hash, account_type, created_at, expires_at, last_login_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*UserRecord, error) {
	var user UserRecord
	var email sql.NullString
	err := row.Scan(
		&user.UserID, &user.Username, &email,
		&user.PasswordHash, &user.AccountType, &user.CreatedAt,
		&user.ExpiresAt, &user.LastLoginAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	user.Email = email.String
	return &user, nil
}

// GetUserCounts returns current user counts by account type
func (s *Store) GetUserCounts() (total, permanent, temp int, err error) {
	err = s.db.QueryRow(`SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN account_type = 'permanent' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN account_type = 'temp' THEN 1 ELSE 0 END), 0)
	FROM users`).Scan(&total, &permanent, &temp)
	return
}

// GetOldestTempUser returns the temporary account created first
func (s *Store) GetOldestTempUser() (*UserRecord, error) {
	return scanUser(s.db.QueryRow(`SELECT ` + userColumns + ` FROM users
		WHERE account_type = 'temp' ORDER BY created_at ASC LIMIT 1`))
}

// DeleteExpiredTempUsers removes temporary users past their expiry
func (s *Store) DeleteExpiredTempUsers() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM users WHERE account_type = 'temp' AND expires_at < ?`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// CreateUser inserts a user, checking uniqueness in the same transaction
func (s *Store) CreateUser(record UserRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	exists, err := userExists(tx, record.Username, record.Email)
	if err != nil {
		return err
	}
	if exists {
		return ErrUserExists
	}

	if record.AccountType == "" {
		record.AccountType = AccountTemp
	}

	_, err = tx.Exec(`INSERT INTO users (
		user_id, username, email, password_hash, account_type, created_at, expires_at
	) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.UserID, record.Username, record.Email,
		record.PasswordHash, record.AccountType, record.CreatedAt, record.ExpiresAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func userExists(tx *sql.Tx, username, email string) (bool, error) {
	query := `SELECT COUNT(*) FROM users WHERE username = ? COLLATE NOCASE`
	args := []any{username}

	if email != "" {
		query += ` OR email = ? COLLATE NOCASE`
		args = append(args, email)
	}

	var count int
	if err := tx.QueryRow(query, args...).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteUserByID removes a user; sessions go with it by cascade
func (s *Store) DeleteUserByID(userID string) error {
	result, err := s.db.Exec(`DELETE FROM users WHERE user_id = ?`, userID)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// PromoteToPermanent upgrades a temp user to permanent
func (s *Store) PromoteToPermanent(userID string) error {
	_, err := s.db.Exec(`UPDATE users SET account_type = 'permanent', expires_at = NULL WHERE user_id = ?`, userID)
	return err
}

func (s *Store) UpdateUserPassword(userID string, passwordHash string) error {
	_, err := s.db.Exec(`UPDATE users SET password_hash = ? WHERE user_id = ?`, passwordHash, userID)
	return err
}

func (s *Store) UpdateUserEmail(userID string, email string) error {
	_, err := s.db.Exec(`UPDATE users SET email = ? WHERE user_id = ?`, email, userID)
	return err
}

func (s *Store) UpdateUserUsername(userID string, username string) error {
	_, err := s.db.Exec(`UPDATE users SET username = ? WHERE user_id = ?`, username, userID)
	return err
}

// UpdateUserLastLoginSync records a successful login
func (s *Store) UpdateUserLastLoginSync(userID string, loginTime time.Time) error {
	if _, err := s.db.Exec(`UPDATE users SET last_login_at = ? WHERE user_id = ?`, loginTime, userID); err != nil {
		return fmt.Errorf("failed to update last login for user %s: %w", userID, err)
	}
	return nil
}

// GetAllUsers retrieves all users, newest first
func (s *Store) GetAllUsers() ([]UserRecord, error) {
	rows, err := s.db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []UserRecord
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// GetUserByUsername matches case-insensitively
func (s *Store) GetUserByUsername(username string) (*UserRecord, error) {
	return scanUser(s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = ? COLLATE NOCASE`, username))
}

// GetUserByEmail matches case-insensitively
func (s *Store) GetUserByEmail(email string) (*UserRecord, error) {
	return scanUser(s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = ? COLLATE NOCASE`, email))
}

func (s *Store) GetUserByID(userID string) (*UserRecord, error) {
	return scanUser(s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE user_id = ?`, userID))
}
