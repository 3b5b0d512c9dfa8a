package cli

import (
	"fmt"
	"strings"

	"chessrules/internal/rules"
)

// Terminal color codes
const (
	Reset   = "\033[0m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
)

// Prompt returns a colored prompt string
func Prompt(text string) string {
	return Yellow + text + " > " + Reset
}

type Theme string

const (
	ThemeOff   Theme = "off"
	ThemeBrown Theme = "brown"
	ThemeGreen Theme = "green"
	ThemeGray  Theme = "gray"
)

type themeColors struct {
	lightBg string
	darkBg  string
	white   string
	black   string
}

var themes = map[Theme]themeColors{
	ThemeOff: {},
	ThemeBrown: {
		lightBg: "\033[48;5;230m", // beige
		darkBg:  "\033[48;5;94m",
		white:   "\033[97m",
		black:   "\033[30m",
	},
	ThemeGreen: {
		lightBg: "\033[48;5;157m",
		darkBg:  "\033[48;5;22m",
		white:   "\033[97m",
		black:   "\033[30m",
	},
	ThemeGray: {
		lightBg: "\033[48;5;251m",
		darkBg:  "\033[48;5;240m",
		white:   "\033[97m",
		black:   "\033[30m",
	},
}

// ParseTheme accepts the theme names off, brown, green and gray
func ParseTheme(name string) (Theme, error) {
	t := Theme(strings.ToLower(name))
	if _, ok := themes[t]; !ok {
		return ThemeOff, fmt.Errorf("invalid theme: %s (use: off, brown, green, gray)", name)
	}
	return t, nil
}

// renderBoard draws b with White at the bottom. Without a theme it falls back
// to the engine's plain renderers; marked squares are bracketed in that case.
func renderBoard(b *rules.Board, theme Theme, glyphs bool, marked map[rules.Square]bool) string {
	if theme == ThemeOff && len(marked) == 0 {
		if glyphs {
			return b.Glyphs()
		}
		return b.ASCII()
	}

	colors := themes[theme]
	var sb strings.Builder
	sb.WriteString("   a  b  c  d  e  f  g  h\n")

	for r := 7; r >= 0; r-- {
		fmt.Fprintf(&sb, "%d ", r+1)
		for f := 0; f < 8; f++ {
			sq := rules.SquareAt(f, r)
			symbol := " "
			fg := ""
			if p, ok := b.At(sq); ok {
				if glyphs {
					symbol = p.Glyph()
				} else {
					symbol = string(p.Letter())
				}
				fg = colors.black
				if p.Color == rules.White {
					fg = colors.white
				}
			} else if marked[sq] && theme == ThemeOff {
				symbol = "."
			}

			left, right := " ", " "
			if marked[sq] {
				left, right = "[", "]"
			}

			if theme == ThemeOff {
				sb.WriteString(left + symbol + right)
				continue
			}
			bg := colors.darkBg
			if sq.IsLight() {
				bg = colors.lightBg
			}
			sb.WriteString(bg + fg + left + symbol + right + Reset)
		}
		fmt.Fprintf(&sb, " %d\n", r+1)
	}
	sb.WriteString("   a  b  c  d  e  f  g  h")

	return sb.String()
}

// statusLine describes the outcome or check state after a move, empty while play simply continues
func statusLine(s *rules.GameState) string {
	switch s.Status {
	case rules.Check:
		return s.SideToMove.Name() + " is in check"
	case rules.Checkmate:
		winner, _ := s.Winner()
		return "Checkmate: " + winner.Name() + " wins"
	case rules.Stalemate:
		return "Stalemate: draw"
	case rules.Draw:
		return "Draw by " + s.DrawReason.String()
	default:
		return ""
	}
}

// formatHistory pairs plies into numbered rows, starting from the fullmove number of the first position
func formatHistory(start *rules.GameState, moves []rules.Move) string {
	var sb strings.Builder
	num := start.FullmoveNumber
	i := 0
	if start.SideToMove == rules.Black && len(moves) > 0 {
		fmt.Fprintf(&sb, "%d. ... %s\n", num, moves[0])
		num++
		i = 1
	}
	for ; i < len(moves); i += 2 {
		if i+1 < len(moves) {
			fmt.Fprintf(&sb, "%d. %s %s\n", num, moves[i], moves[i+1])
		} else {
			fmt.Fprintf(&sb, "%d. %s\n", num, moves[i])
		}
		num++
	}
	return sb.String()
}
