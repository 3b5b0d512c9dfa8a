package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	prev := output
	output = &buf
	defer func() { output = prev }()

	err := Run(args)
	return buf.String(), err
}

func TestUserAdministration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chess.db")

	if _, err := runCLI(t, "init", "-path", path); err != nil {
		t.Fatalf("init: %v", err)
	}

	out, err := runCLI(t, "user", "add", "-path", path, "-username", "Alice", "-password", "secret123")
	if err != nil {
		t.Fatalf("user add: %v", err)
	}
	if !strings.Contains(out, "Created permanent user alice") {
		t.Errorf("add output = %q", out)
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"duplicate", []string{"user", "add", "-path", path, "-username", "alice", "-password", "secret123"}, "already taken"},
		{"missing username", []string{"user", "add", "-path", path, "-password", "secret123"}, "-username required"},
		{"short password", []string{"user", "add", "-path", path, "-username", "bob", "-password", "short"}, "at least 8"},
		{"bad hash", []string{"user", "set-hash", "-path", path, "-username", "alice", "-hash", "plain"}, "invalid hash format"},
		{"unknown user", []string{"user", "set-email", "-path", path, "-username", "nobody", "-email", "x@y.io"}, "user not found"},
		{"both selectors", []string{"user", "delete", "-path", path, "-username", "alice", "-id", "x"}, "exactly one"},
		{"no path", []string{"purge"}, "database path required"},
		{"unknown", []string{"frob"}, "unknown subcommand"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}

	if _, err := runCLI(t, "user", "set-email", "-path", path, "-username", "alice", "-email", "Alice@Example.com"); err != nil {
		t.Fatalf("set-email: %v", err)
	}
	out, err = runCLI(t, "user", "list", "-path", path)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "alice@example.com") || !strings.Contains(out, "Total users: 1") {
		t.Errorf("list output = %q", out)
	}

	if _, err := runCLI(t, "user", "delete", "-path", path, "-username", "alice"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	out, _ = runCLI(t, "user", "list", "-path", path)
	if !strings.Contains(out, "No users found") {
		t.Errorf("list after delete = %q", out)
	}
}

func TestPromoteTempUser(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chess.db")
	if _, err := runCLI(t, "init", "-path", path); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := runCLI(t, "user", "add", "-path", path, "-username", "guest", "-password", "secret123", "-temp"); err != nil {
		t.Fatalf("user add: %v", err)
	}

	out, err := runCLI(t, "user", "promote", "-path", path, "-username", "guest")
	if err != nil || !strings.Contains(out, "now permanent") {
		t.Fatalf("promote = %q, %v", out, err)
	}
	if _, err := runCLI(t, "user", "promote", "-path", path, "-username", "guest"); err == nil {
		t.Error("second promote succeeded")
	}

	out, _ = runCLI(t, "user", "list", "-path", path)
	if !strings.Contains(out, "permanent") {
		t.Errorf("list output = %q", out)
	}
}

func TestQueryAndPurgeEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chess.db")
	if _, err := runCLI(t, "init", "-path", path); err != nil {
		t.Fatalf("init: %v", err)
	}

	out, err := runCLI(t, "query", "-path", path)
	if err != nil || !strings.Contains(out, "No games found") {
		t.Errorf("query = %q, %v", out, err)
	}

	out, err = runCLI(t, "purge", "-path", path)
	if err != nil || !strings.Contains(out, "Purged 0 expired user(s) and 0 expired session(s)") {
		t.Errorf("purge = %q, %v", out, err)
	}
}
