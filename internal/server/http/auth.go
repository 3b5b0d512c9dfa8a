package http

import (
	"errors"
	"log"
	"strings"
	"time"

	"chessrules/internal/server/core"
	"chessrules/internal/server/service"
	"chessrules/internal/server/storage"

	"github.com/gofiber/fiber/v2"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=40,username"`
	Email    string `json:"email" validate:"omitempty,max=255,email"`
	Password string `json:"password" validate:"required,min=8,max=128,password"`
}

// LoginRequest identifies the account by username or email
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required,max=255"`
	Password   string `json:"password" validate:"required,max=128"`
}

// Account is the public part of a user record
type Account struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Account
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UserResponse is returned by /auth/me
type UserResponse struct {
	Account
	AccountType string     `json:"accountType"`
	CreatedAt   time.Time  `json:"createdAt"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

func accountOf(u *service.User) Account {
	return Account{UserID: u.UserID, Username: u.Username, Email: u.Email}
}

func authFail(c *fiber.Ctx, status int, code, msg, details string) error {
	return c.Status(status).JSON(core.ErrorResponse{Error: msg, Code: code, Details: details})
}

// decodeAuthBody parses and tag-checks an auth payload. It answers 400 itself
// and returns false when the body is unusable.
func decodeAuthBody[T any](c *fiber.Ctx) (T, bool) {
	var req T
	if err := c.BodyParser(&req); err != nil {
		authFail(c, fiber.StatusBadRequest, core.ErrInvalidRequest, "invalid request body", err.Error())
		return req, false
	}
	if err := validate.Struct(&req); err != nil {
		authFail(c, fiber.StatusBadRequest, core.ErrInvalidRequest, "validation failed", describeValidation(err))
		return req, false
	}
	return req, true
}

// issueToken opens a session for u and writes the token response
func (h *HTTPHandler) issueToken(c *fiber.Ctx, u *service.User, status int) error {
	token, expiresAt, err := h.svc.GenerateUserToken(u.UserID)
	if err != nil {
		log.Printf("Token for %s: %v", u.UserID, err)
		return authFail(c, fiber.StatusInternalServerError, core.ErrInternalError, "failed to generate token", "")
	}
	return c.Status(status).JSON(AuthResponse{
		Account:   accountOf(u),
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// RegisterHandler creates an account and logs it in. Usernames and emails are
// stored lowercase so lookups are case-insensitive.
func (h *HTTPHandler) RegisterHandler(c *fiber.Ctx) error {
	req, ok := decodeAuthBody[RegisterRequest](c)
	if !ok {
		return nil
	}

	user, err := h.svc.CreateUser(strings.ToLower(req.Username), strings.ToLower(req.Email), req.Password)
	switch {
	case errors.Is(err, storage.ErrUserExists):
		return authFail(c, fiber.StatusConflict, core.ErrInvalidRequest, "user already exists", "username or email already taken")
	case errors.Is(err, service.ErrUserLimit), errors.Is(err, service.ErrStorageDisabled):
		return authFail(c, fiber.StatusServiceUnavailable, core.ErrResourceLimit, "registration unavailable", err.Error())
	case err != nil:
		log.Printf("Register: %v", err)
		return authFail(c, fiber.StatusInternalServerError, core.ErrInternalError, "failed to create user", "")
	}

	return h.issueToken(c, user, fiber.StatusCreated)
}

// LoginHandler exchanges credentials for a token. Unknown users and wrong
// passwords get the same answer.
func (h *HTTPHandler) LoginHandler(c *fiber.Ctx) error {
	req, ok := decodeAuthBody[LoginRequest](c)
	if !ok {
		return nil
	}

	user, err := h.svc.AuthenticateUser(strings.ToLower(req.Identifier), req.Password)
	if err != nil {
		return authFail(c, fiber.StatusUnauthorized, core.ErrUnauthorized, "invalid credentials", "")
	}

	if err := h.svc.UpdateLastLogin(user.UserID); err != nil {
		log.Printf("Login: %v", err)
	}
	return h.issueToken(c, user, fiber.StatusOK)
}

// LogoutHandler closes the session of the presented token
func (h *HTTPHandler) LogoutHandler(c *fiber.Ctx) error {
	token, _ := c.Locals("token").(string)
	if err := h.svc.Logout(token); err != nil {
		return authFail(c, fiber.StatusUnauthorized, core.ErrUnauthorized, "invalid or expired token", "")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetCurrentUserHandler describes the account behind the token
func (h *HTTPHandler) GetCurrentUserHandler(c *fiber.Ctx) error {
	user, err := h.svc.GetUserByID(userIDOf(c))
	if err != nil {
		return authFail(c, fiber.StatusNotFound, core.ErrInvalidRequest, "user not found", "")
	}

	return c.JSON(UserResponse{
		Account:     accountOf(user),
		AccountType: user.AccountType,
		CreatedAt:   user.CreatedAt,
		ExpiresAt:   user.ExpiresAt,
	})
}
