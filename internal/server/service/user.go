package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"chessrules/internal/server/storage"

	"github.com/google/uuid"
	"github.com/lixenwraith/auth"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserLimit          = errors.New("user limit reached")
	ErrSessionInvalid     = errors.New("session expired or revoked")
)

// sessionClaim carries the session ID inside the JWT
const sessionClaim = "sid"

// User represents a user account
type User struct {
	UserID      string
	Username    string
	Email       string
	AccountType string
	CreatedAt   time.Time
	ExpiresAt   *time.Time
}

func userFromRecord(r *storage.UserRecord) *User {
	return &User{
		UserID:      r.UserID,
		Username:    r.Username,
		Email:       r.Email,
		AccountType: r.AccountType,
		CreatedAt:   r.CreatedAt,
		ExpiresAt:   r.ExpiresAt,
	}
}

// CreateUser registers an account. The first PermanentSlots accounts are
// permanent; later ones are temporary and expire after TempUserTTL. When
// MaxUsers is reached the oldest temporary account makes room.
func (s *Service) CreateUser(username, email, password string) (*User, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	total, permanent, _, err := s.store.GetUserCounts()
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	if total >= MaxUsers {
		oldest, err := s.store.GetOldestTempUser()
		if err != nil {
			return nil, fmt.Errorf("%w: %d accounts", ErrUserLimit, MaxUsers)
		}
		if err := s.store.DeleteUserByID(oldest.UserID); err != nil {
			return nil, fmt.Errorf("failed to evict temp user: %w", err)
		}
	}

	userID, err := s.generateUniqueUserID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := storage.UserRecord{
		UserID:       userID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		AccountType:  storage.AccountPermanent,
		CreatedAt:    now,
	}
	if permanent >= PermanentSlots {
		expires := now.Add(TempUserTTL)
		record.AccountType = storage.AccountTemp
		record.ExpiresAt = &expires
	}

	if err := s.store.CreateUser(record); err != nil {
		return nil, err
	}

	return userFromRecord(&record), nil
}

// AuthenticateUser verifies credentials by username or email
func (s *Service) AuthenticateUser(identifier, password string) (*User, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	var record *storage.UserRecord
	var err error
	if strings.Contains(identifier, "@") {
		record, err = s.store.GetUserByEmail(identifier)
	} else {
		record, err = s.store.GetUserByUsername(identifier)
	}

	if err != nil {
		// hash anyway so unknown users take as long as wrong passwords
		auth.HashPassword(password)
		return nil, ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(password, record.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	if record.ExpiresAt != nil && record.ExpiresAt.Before(time.Now().UTC()) {
		return nil, ErrInvalidCredentials
	}

	return userFromRecord(record), nil
}

// UpdateLastLogin updates the last login timestamp for a user
func (s *Service) UpdateLastLogin(userID string) error {
	if s.store == nil {
		return ErrStorageDisabled
	}
	return s.store.UpdateUserLastLoginSync(userID, time.Now().UTC())
}

// GetUserByID retrieves user information by user ID
func (s *Service) GetUserByID(userID string) (*User, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	record, err := s.store.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	return userFromRecord(record), nil
}

// GenerateUserToken opens a session for the user and returns a JWT bound to it.
// A new token replaces the user's previous session.
func (s *Service) GenerateUserToken(userID string) (string, time.Time, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return "", time.Time{}, err
	}

	now := time.Now().UTC()
	expiresAt := now.Add(SessionTTL)
	sessionID := uuid.New().String()

	if err := s.store.CreateSession(storage.SessionRecord{
		SessionID: sessionID,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create session: %w", err)
	}

	claims := map[string]any{
		"username":   user.Username,
		"email":      user.Email,
		sessionClaim: sessionID,
	}

	token, err := auth.GenerateHS256Token(s.jwtSecret, userID, claims, SessionTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// ValidateToken verifies the JWT signature and that its session is still open
func (s *Service) ValidateToken(token string) (string, map[string]any, error) {
	userID, claims, err := auth.ValidateHS256Token(s.jwtSecret, token)
	if err != nil {
		return "", nil, err
	}

	if s.store == nil {
		return userID, claims, nil
	}

	sessionID, _ := claims[sessionClaim].(string)
	if sessionID == "" {
		return "", nil, ErrSessionInvalid
	}
	valid, err := s.store.IsSessionValid(sessionID, userID)
	if err != nil {
		return "", nil, fmt.Errorf("session lookup: %w", err)
	}
	if !valid {
		return "", nil, ErrSessionInvalid
	}
	return userID, claims, nil
}

// Logout closes the session the token belongs to
func (s *Service) Logout(token string) error {
	userID, claims, err := s.ValidateToken(token)
	if err != nil {
		return err
	}
	if s.store == nil {
		return nil
	}
	if sessionID, _ := claims[sessionClaim].(string); sessionID != "" {
		return s.store.DeleteSession(sessionID)
	}
	return s.store.DeleteSessionByUserID(userID)
}

// generateUniqueUserID creates a user ID not present in storage
func (s *Service) generateUniqueUserID() (string, error) {
	const maxAttempts = 10

	for i := 0; i < maxAttempts; i++ {
		id := uuid.New().String()
		if _, err := s.store.GetUserByID(id); errors.Is(err, storage.ErrUserNotFound) {
			return id, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique user ID after %d attempts", maxAttempts)
}
