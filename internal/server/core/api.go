package core

// Request types

type CreateGameRequest struct {
	FEN   string `json:"fen,omitempty" validate:"omitempty,max=100"`
	Color string `json:"color,omitempty" validate:"omitempty,oneof=w b"` // seat taken by an authenticated creator
}

type JoinRequest struct {
	Color string `json:"color" validate:"required,oneof=w b"`
}

type MoveRequest struct {
	Move string `json:"move" validate:"required,min=4,max=5"` // UCI: e2e4, e7e8q
}

type UndoRequest struct {
	Count int `json:"count" validate:"required,min=1,max=300"`
}

// Response types

type GameResponse struct {
	GameID     string          `json:"gameId"`
	FEN        string          `json:"fen"`
	Turn       string          `json:"turn"`  // "w" or "b"
	State      string          `json:"state"` // "ongoing", "check", "white wins", ...
	DrawReason string          `json:"drawReason,omitempty"`
	Moves      []string        `json:"moves"`
	Players    PlayersResponse `json:"players"`
	LastMove   *MoveInfo       `json:"lastMove,omitempty"`
}

type MoveInfo struct {
	Move        string `json:"move"`
	PlayerColor string `json:"playerColor"` // "w" or "b"
	Capture     bool   `json:"capture,omitempty"`
	Castle      bool   `json:"castle,omitempty"`
	EnPassant   bool   `json:"enPassant,omitempty"`
	Promotion   string `json:"promotion,omitempty"`
}

type BoardResponse struct {
	FEN    string `json:"fen"`
	Board  string `json:"board"`  // ASCII, FEN letters
	Glyphs string `json:"glyphs"` // unicode chess symbols
}

type LegalMovesResponse struct {
	GameID string   `json:"gameId"`
	From   string   `json:"from,omitempty"`
	Moves  []string `json:"moves"`
}
