package core

import "chessrules/internal/rules"

// Player describes one seat. An open seat accepts moves from anyone.
type Player struct {
	Color  string `json:"color"`
	UserID string `json:"userId,omitempty"`
	Open   bool   `json:"open"`
}

type PlayersResponse struct {
	White Player `json:"white"`
	Black Player `json:"black"`
}

// ParseColor accepts the API colour letters "w" and "b"
func ParseColor(s string) (rules.Color, bool) {
	switch s {
	case "w":
		return rules.White, true
	case "b":
		return rules.Black, true
	}
	return rules.White, false
}
