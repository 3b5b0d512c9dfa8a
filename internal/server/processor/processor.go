package processor

import (
	"errors"
	"log"
	"unicode"

	"chessrules/internal/rules"
	"chessrules/internal/server/core"
	"chessrules/internal/server/game"
	"chessrules/internal/server/service"
)

// Processor validates commands, runs them against the service and shapes API responses
type Processor struct {
	svc *service.Service
}

func New(svc *service.Service) *Processor {
	return &Processor{svc: svc}
}

func (p *Processor) Execute(cmd Command) ProcessorResponse {
	switch cmd.Type {
	case CmdCreateGame:
		return p.handleCreateGame(cmd)
	case CmdJoinGame:
		return p.handleJoinGame(cmd)
	case CmdGetGame:
		return p.handleGetGame(cmd)
	case CmdMakeMove:
		return p.handleMakeMove(cmd)
	case CmdUndoMove:
		return p.handleUndoMove(cmd)
	case CmdDeleteGame:
		return p.handleDeleteGame(cmd)
	case CmdGetBoard:
		return p.handleGetBoard(cmd)
	case CmdLegalMoves:
		return p.handleLegalMoves(cmd)
	default:
		return p.errorResponse("unknown command", core.ErrInvalidRequest)
	}
}

// hasControlChars rejects input carrying control characters before it is parsed
func hasControlChars(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}

func (p *Processor) handleCreateGame(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.CreateGameRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	initial := rules.NewGame()
	if args.FEN != "" {
		if hasControlChars(args.FEN) {
			return p.errorResponse("invalid FEN characters", core.ErrInvalidFEN)
		}
		parsed, err := rules.ParseFEN(args.FEN)
		if err != nil {
			return p.detailedError("invalid FEN", core.ErrInvalidFEN, err)
		}
		initial = parsed
	}

	var seats [2]string
	if args.Color != "" {
		color, ok := core.ParseColor(args.Color)
		if !ok {
			return p.errorResponse("invalid color", core.ErrInvalidRequest)
		}
		if cmd.UserID == "" {
			return p.errorResponse("claiming a seat requires authentication", core.ErrUnauthorized)
		}
		seats[color] = cmd.UserID
	}

	g, err := p.svc.CreateGame(initial, seats)
	if err != nil {
		return p.serviceError(err)
	}

	log.Printf("Game %s created (%s)", g.ID(), g.State())
	return ProcessorResponse{
		Success: true,
		Data:    p.buildGameResponse(g.View()),
	}
}

func (p *Processor) handleJoinGame(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.JoinRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}
	if cmd.UserID == "" {
		return p.errorResponse("joining a game requires authentication", core.ErrUnauthorized)
	}

	color, ok := core.ParseColor(args.Color)
	if !ok {
		return p.errorResponse("invalid color", core.ErrInvalidRequest)
	}

	g, err := p.svc.JoinGame(cmd.GameID, color, cmd.UserID)
	if err != nil {
		return p.serviceError(err)
	}

	return ProcessorResponse{
		Success: true,
		Data:    p.buildGameResponse(g.View()),
	}
}

func (p *Processor) handleGetGame(cmd Command) ProcessorResponse {
	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.serviceError(err)
	}

	return ProcessorResponse{
		Success: true,
		Data:    p.buildGameResponse(g.View()),
	}
}

func (p *Processor) handleMakeMove(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.MoveRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	if hasControlChars(args.Move) {
		return p.errorResponse("invalid move format", core.ErrInvalidMove)
	}
	m, err := rules.ParseMove(args.Move)
	if err != nil {
		return p.detailedError("invalid move format", core.ErrInvalidMove, err)
	}

	outcome, err := p.svc.MakeMove(cmd.GameID, cmd.UserID, m)
	if err != nil {
		return p.serviceError(err)
	}

	// taken under the service lock, before any reply can land
	return ProcessorResponse{
		Success: true,
		Data:    p.buildGameResponse(outcome.View),
	}
}

func (p *Processor) handleUndoMove(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.UndoRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	g, err := p.svc.UndoMoves(cmd.GameID, cmd.UserID, args.Count)
	if err != nil {
		return p.serviceError(err)
	}

	return ProcessorResponse{
		Success: true,
		Data:    p.buildGameResponse(g.View()),
	}
}

func (p *Processor) handleDeleteGame(cmd Command) ProcessorResponse {
	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.serviceError(err)
	}
	if !g.IsParticipant(cmd.UserID) {
		return p.errorResponse("only players may delete this game", core.ErrUnauthorized)
	}

	if err := p.svc.DeleteGame(cmd.GameID); err != nil {
		return p.serviceError(err)
	}

	return ProcessorResponse{
		Success: true,
	}
}

func (p *Processor) handleGetBoard(cmd Command) ProcessorResponse {
	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.serviceError(err)
	}

	pos := g.Position()
	return ProcessorResponse{
		Success: true,
		Data: core.BoardResponse{
			FEN:    pos.FEN(),
			Board:  pos.Board.ASCII(),
			Glyphs: pos.Board.Glyphs(),
		},
	}
}

func (p *Processor) handleLegalMoves(cmd Command) ProcessorResponse {
	from, _ := cmd.Args.(string)

	sq := rules.NoSquare
	if from != "" {
		parsed, err := rules.ParseSquare(from)
		if err != nil {
			return p.detailedError("invalid square", core.ErrInvalidRequest, err)
		}
		sq = parsed
	}

	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.serviceError(err)
	}

	moves := g.LegalMoves(sq)
	ucis := make([]string, len(moves))
	for i, m := range moves {
		ucis[i] = m.String()
	}

	return ProcessorResponse{
		Success: true,
		Data: core.LegalMovesResponse{
			GameID: cmd.GameID,
			From:   from,
			Moves:  ucis,
		},
	}
}

// buildGameResponse constructs standard game response
func (p *Processor) buildGameResponse(v game.View) core.GameResponse {
	resp := core.GameResponse{
		GameID: v.ID,
		FEN:    v.FEN,
		Turn:   v.Turn.String(),
		State:  v.State.String(),
		Moves:  v.Moves,
		Players: core.PlayersResponse{
			White: seatPlayer(rules.White, v.Seats),
			Black: seatPlayer(rules.Black, v.Seats),
		},
	}
	if resp.Moves == nil {
		resp.Moves = []string{}
	}
	if v.State == core.StateDraw {
		resp.DrawReason = v.DrawReason.String()
	}

	if r := v.LastMove; r != nil {
		resp.LastMove = &core.MoveInfo{
			Move:        r.Move.String(),
			PlayerColor: r.PlayerColor.String(),
			Capture:     r.Move.IsCapture(),
			Castle:      r.Move.IsCastle(),
			EnPassant:   r.Move.IsEnPassant(),
		}
		if r.Move.Promotion != rules.NoKind {
			resp.LastMove.Promotion = r.Move.Promotion.String()
		}
	}

	return resp
}

func seatPlayer(color rules.Color, seats [2]string) core.Player {
	return core.Player{
		Color:  color.String(),
		UserID: seats[color],
		Open:   seats[color] == "",
	}
}

// serviceError maps service, game and engine errors to API error codes
func (p *Processor) serviceError(err error) ProcessorResponse {
	var illegal *rules.IllegalMoveError
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return p.errorResponse("game not found", core.ErrGameNotFound)
	case errors.As(err, &illegal):
		return p.detailedError("illegal move", core.ErrInvalidMove, errors.New(illegal.Reason))
	case errors.Is(err, rules.ErrIllegalMove):
		return p.errorResponse("illegal move", core.ErrInvalidMove)
	case errors.Is(err, game.ErrGameOver):
		return p.detailedError("game is over", core.ErrGameOver, err)
	case errors.Is(err, game.ErrNotYourTurn):
		return p.errorResponse("not your turn", core.ErrNotYourTurn)
	case errors.Is(err, game.ErrSeatTaken):
		return p.errorResponse("seat already taken", core.ErrSeatTaken)
	case errors.Is(err, game.ErrNoPermission):
		return p.errorResponse("not a player in this game", core.ErrUnauthorized)
	case errors.Is(err, game.ErrCannotUndo):
		return p.detailedError("cannot undo", core.ErrInvalidRequest, err)
	case errors.Is(err, service.ErrGameLimit):
		return p.errorResponse("game limit reached", core.ErrResourceLimit)
	default:
		log.Printf("Processor: unexpected error: %v", err)
		return p.errorResponse("internal error", core.ErrInternalError)
	}
}

// errorResponse creates error response
func (p *Processor) errorResponse(message, code string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error: message,
			Code:  code,
		},
	}
}

func (p *Processor) detailedError(message, code string, err error) ProcessorResponse {
	resp := p.errorResponse(message, code)
	resp.Error.Details = err.Error()
	return resp
}
