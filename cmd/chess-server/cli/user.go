package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"chessrules/internal/server/storage"

	"github.com/google/uuid"
	"github.com/lixenwraith/auth"
	"golang.org/x/term"
)

const (
	minPasswordLength = 8
	tempAccountTTL    = 24 * time.Hour
)

var userCommands = map[string]subcommand{
	"add":          {"create an account", runUserAdd},
	"delete":       {"remove an account", runUserDelete},
	"set-password": {"hash and store a new password", runUserSetPassword},
	"set-hash":     {"store a precomputed PHC password hash", runUserSetHash},
	"set-email":    {"change the email address", runUserSetEmail},
	"set-username": {"rename an account", runUserSetUsername},
	"promote":      {"make a temporary account permanent", runUserPromote},
	"list":         {"list all accounts", runUserList},
}

func runUser(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("user subcommand required: %s", commandNames(userCommands))
	}
	cmd, ok := userCommands[args[0]]
	if !ok {
		return fmt.Errorf("unknown user subcommand: %s", args[0])
	}
	return cmd.run(args[1:])
}

// readPassword returns value, or prompts on the terminal when interactive is set
func readPassword(value string, interactive bool) (string, error) {
	switch {
	case interactive && value != "":
		return "", fmt.Errorf("cannot use -interactive with -password")
	case interactive:
		fmt.Fprint(output, "Enter password: ")
		pw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(output)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		value = string(pw)
	case value == "":
		return "", fmt.Errorf("password required: use -password or -interactive")
	}

	if len(value) < minPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return value, nil
}

// lookupUser resolves an account by username
func lookupUser(store *storage.Store, username string) (*storage.UserRecord, error) {
	user, err := store.GetUserByUsername(username)
	if errors.Is(err, storage.ErrUserNotFound) {
		return nil, fmt.Errorf("user not found: %s", username)
	}
	return user, err
}

func runUserAdd(args []string) error {
	fs := newFlags("user add")
	username := fs.String("username", "", "Username (required)")
	email := fs.String("email", "", "Email address (optional)")
	password := fs.String("password", "", "Password (prompted with -interactive)")
	hash := fs.String("hash", "", "Pre-computed PHC password hash")
	interactive := fs.Bool("interactive", false, "Interactive password prompt")
	temp := fs.Bool("temp", false, "Create a temporary account that expires after 24h")

	store, err := fs.open(args, "username")
	if err != nil {
		return err
	}
	defer store.Close()

	var passwordHash string
	if *hash != "" {
		if *password != "" || *interactive {
			return fmt.Errorf("-hash cannot be combined with -password or -interactive")
		}
		if err := auth.ValidatePHCHashFormat(*hash); err != nil {
			return fmt.Errorf("invalid hash format: %w", err)
		}
		passwordHash = *hash
	} else {
		pw, err := readPassword(*password, *interactive)
		if err != nil {
			return err
		}
		if passwordHash, err = auth.HashPassword(pw); err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
	}

	now := time.Now().UTC()
	record := storage.UserRecord{
		UserID:       uuid.New().String(),
		Username:     strings.ToLower(*username),
		Email:        strings.ToLower(*email),
		PasswordHash: passwordHash,
		AccountType:  storage.AccountPermanent,
		CreatedAt:    now,
	}
	if *temp {
		expires := now.Add(tempAccountTTL)
		record.AccountType = storage.AccountTemp
		record.ExpiresAt = &expires
	}

	if err := store.CreateUser(record); errors.Is(err, storage.ErrUserExists) {
		return fmt.Errorf("username or email already taken: %s", *username)
	} else if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(output, "Created %s user %s (%s)\n", record.AccountType, record.Username, record.UserID)
	return nil
}

func runUserDelete(args []string) error {
	fs := newFlags("user delete")
	username := fs.String("username", "", "Username to delete")
	userID := fs.String("id", "", "User ID to delete")

	store, err := fs.open(args)
	if err != nil {
		return err
	}
	defer store.Close()

	if (*username == "") == (*userID == "") {
		return fmt.Errorf("specify exactly one of -username or -id")
	}

	target := *userID
	if target == "" {
		user, err := lookupUser(store, *username)
		if err != nil {
			return err
		}
		target = user.UserID
	}

	if err := store.DeleteUserByID(target); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	fmt.Fprintf(output, "User deleted: %s\n", target)
	return nil
}

func runUserSetPassword(args []string) error {
	fs := newFlags("user set-password")
	username := fs.String("username", "", "Username (required)")
	password := fs.String("password", "", "New password")
	interactive := fs.Bool("interactive", false, "Interactive password prompt")

	store, err := fs.open(args, "username")
	if err != nil {
		return err
	}
	defer store.Close()

	pw, err := readPassword(*password, *interactive)
	if err != nil {
		return err
	}
	user, err := lookupUser(store, *username)
	if err != nil {
		return err
	}

	passwordHash, err := auth.HashPassword(pw)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := store.UpdateUserPassword(user.UserID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	fmt.Fprintf(output, "Password updated for user: %s\n", user.Username)
	return nil
}

func runUserSetHash(args []string) error {
	fs := newFlags("user set-hash")
	username := fs.String("username", "", "Username (required)")
	hash := fs.String("hash", "", "PHC password hash (required)")

	store, err := fs.open(args, "username", "hash")
	if err != nil {
		return err
	}
	defer store.Close()

	if err := auth.ValidatePHCHashFormat(*hash); err != nil {
		return fmt.Errorf("invalid hash format: %w", err)
	}
	user, err := lookupUser(store, *username)
	if err != nil {
		return err
	}
	if err := store.UpdateUserPassword(user.UserID, *hash); err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}

	fmt.Fprintf(output, "Password hash updated for user: %s\n", user.Username)
	return nil
}

func runUserSetEmail(args []string) error {
	fs := newFlags("user set-email")
	username := fs.String("username", "", "Username (required)")
	email := fs.String("email", "", "New email address (required)")

	store, err := fs.open(args, "username", "email")
	if err != nil {
		return err
	}
	defer store.Close()

	user, err := lookupUser(store, *username)
	if err != nil {
		return err
	}
	if err := store.UpdateUserEmail(user.UserID, strings.ToLower(*email)); err != nil {
		return fmt.Errorf("failed to update email: %w", err)
	}

	fmt.Fprintf(output, "Email updated for user: %s\n", user.Username)
	return nil
}

func runUserSetUsername(args []string) error {
	fs := newFlags("user set-username")
	current := fs.String("current", "", "Current username (required)")
	renamed := fs.String("new", "", "New username (required)")

	store, err := fs.open(args, "current", "new")
	if err != nil {
		return err
	}
	defer store.Close()

	user, err := lookupUser(store, *current)
	if err != nil {
		return err
	}
	if err := store.UpdateUserUsername(user.UserID, strings.ToLower(*renamed)); err != nil {
		return fmt.Errorf("failed to update username: %w", err)
	}

	fmt.Fprintf(output, "Username updated: %s -> %s\n", *current, strings.ToLower(*renamed))
	return nil
}

func runUserPromote(args []string) error {
	fs := newFlags("user promote")
	username := fs.String("username", "", "Username (required)")

	store, err := fs.open(args, "username")
	if err != nil {
		return err
	}
	defer store.Close()

	user, err := lookupUser(store, *username)
	if err != nil {
		return err
	}
	if user.AccountType == storage.AccountPermanent {
		return fmt.Errorf("user %s is already permanent", user.Username)
	}
	if err := store.PromoteToPermanent(user.UserID); err != nil {
		return fmt.Errorf("failed to promote user: %w", err)
	}

	fmt.Fprintf(output, "User %s is now permanent\n", user.Username)
	return nil
}

func runUserList(args []string) error {
	store, err := newFlags("user list").open(args)
	if err != nil {
		return err
	}
	defer store.Close()

	users, err := store.GetAllUsers()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	if len(users) == 0 {
		fmt.Fprintln(output, "No users found")
		return nil
	}

	const stamp = "2006-01-02 15:04"
	w := tabwriter.NewWriter(output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "User ID\tUsername\tType\tEmail\tCreated\tExpires\tLast Login")
	for _, u := range users {
		email, expires, lastLogin := "(none)", "never", "never"
		if u.Email != "" {
			email = u.Email
		}
		if u.ExpiresAt != nil {
			expires = u.ExpiresAt.Format(stamp)
		}
		if u.LastLoginAt != nil {
			lastLogin = u.LastLoginAt.Format(stamp)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(u.UserID), u.Username, u.AccountType, email,
			u.CreatedAt.Format(stamp), expires, lastLogin)
	}
	w.Flush()

	fmt.Fprintf(output, "\nTotal users: %d\n", len(users))
	return nil
}
