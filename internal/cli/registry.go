package cli

import (
	"fmt"
	"strings"

	"chessrules/internal/rules"
)

// Command defines a terminal command with its handler
type Command struct {
	Name        string
	ShortName   string
	Description string
	Usage       string
	Handler     func(*Session, []string) error
}

// Registry manages command registration and execution
type Registry struct {
	session  *Session
	commands map[string]*Command
	ordered  []*Command
}

func NewRegistry(session *Session) *Registry {
	r := &Registry{
		session:  session,
		commands: make(map[string]*Command),
	}

	r.registerGameCommands()
	r.registerDisplayCommands()

	r.Register(&Command{
		Name:        "help",
		ShortName:   "?",
		Description: "Show available commands",
		Usage:       "help [command]",
		Handler:     r.helpHandler,
	})
	r.Register(&Command{
		Name:        "quit",
		ShortName:   "x",
		Description: "Exit the program",
		Usage:       "quit",
		Handler:     quitHandler,
	})

	return r
}

func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	if cmd.ShortName != "" {
		r.commands[cmd.ShortName] = cmd
	}
	r.ordered = append(r.ordered, cmd)
}

// Execute runs one input line. A line that is not a command name but parses
// as a UCI move is played as that move.
func (r *Registry) Execute(input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	s := r.session
	name := strings.ToLower(parts[0])
	if name == "exit" {
		name = "quit"
	}

	cmd, exists := r.commands[name]
	if !exists {
		if _, err := rules.ParseMove(parts[0]); err == nil && len(parts) == 1 {
			cmd, parts = r.commands["move"], []string{"move", parts[0]}
		} else {
			s.printf("%s\n", s.colorize(Red, "Unknown command: "+parts[0]))
			s.printf("Type 'help' for available commands\n")
			return
		}
	}

	if err := cmd.Handler(s, parts[1:]); err != nil {
		s.printf("%s\n", s.colorize(Red, "Error: "+err.Error()))
	}
}

func (r *Registry) helpHandler(s *Session, args []string) error {
	if len(args) > 0 {
		cmd, exists := r.commands[args[0]]
		if !exists {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		s.printf("\n%s - %s\n", s.colorize(Cyan, cmd.Name), cmd.Description)
		if cmd.ShortName != "" {
			s.printf("Short form: %s\n", s.colorize(Cyan, cmd.ShortName))
		}
		s.printf("Usage: %s\n", cmd.Usage)
		return nil
	}

	s.printf("\n%s\n\n", s.colorize(Cyan, "Available Commands:"))
	for _, cmd := range r.ordered {
		short := "   "
		if cmd.ShortName != "" {
			short = "[" + cmd.ShortName + "]"
		}
		s.printf("  %s %-8s %s\n", short, cmd.Name, cmd.Description)
	}
	s.printf("\nA bare move such as e2e4 or e7e8q plays it directly.\n")
	s.printf("Type 'help <command>' for detailed usage\n")
	return nil
}

func quitHandler(s *Session, args []string) error {
	s.done = true
	s.printf("Goodbye!\n")
	return nil
}
