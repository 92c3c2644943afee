package service

import (
	"context"
	"fmt"

	"github.com/benbeisheim/drawbackchess-backend/internal/analysis"
	"github.com/benbeisheim/drawbackchess-backend/internal/model"
	"github.com/benbeisheim/drawbackchess-backend/internal/shared"
	"github.com/benbeisheim/drawbackchess-backend/internal/variant"
	"github.com/google/uuid"
)

type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

func (gs *GameService) JoinGame(gameID string, playerID string) (shared.Side, error) {
	return gs.gameManager.AddPlayerToGame(gameID, playerID)
}

func (gs *GameService) CreateGame(opts model.GameOptions) (string, error) {
	gameID := uuid.New().String()

	if err := gs.gameManager.CreateGame(gameID, opts); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}

	return gameID, nil
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) MatchStatus(playerID string) (model.MatchFoundEvent, bool) {
	return gs.gameManager.MatchStatus(playerID)
}

func (gs *GameService) LeaveMatchmaking(playerID string) bool {
	return gs.gameManager.LeaveMatchmaking(playerID)
}

func (gs *GameService) GetGameState(gameID string) (model.GameState, error) {
	return gs.gameManager.GetGameState(gameID)
}

func (gs *GameService) LegalMovesFrom(gameID string, sq shared.Square) ([]shared.Move, error) {
	return gs.gameManager.LegalMovesFrom(gameID, sq)
}

func (gs *GameService) HandleMove(gameID string, playerID string, move shared.Move) error {
	return gs.gameManager.MakeMove(gameID, playerID, move)
}

func (gs *GameService) AssignDrawback(gameID, playerID string, side shared.Side, kind variant.DrawbackKind) error {
	return gs.gameManager.AssignDrawback(gameID, playerID, side, kind)
}

func (gs *GameService) Undo(gameID string) error {
	return gs.gameManager.Undo(gameID)
}

func (gs *GameService) Redo(gameID string) error {
	return gs.gameManager.Redo(gameID)
}

func (gs *GameService) Reset(gameID string) error {
	return gs.gameManager.Reset(gameID)
}

func (gs *GameService) LoadPGN(gameID string, pgn string) error {
	return gs.gameManager.LoadPGN(gameID, pgn)
}

func (gs *GameService) Analyze(ctx context.Context, gameID string) (analysis.Report, error) {
	return gs.gameManager.Analyze(ctx, gameID)
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn model.Conn) error {
	return gs.gameManager.RegisterConnection(gameID, playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string, conn model.Conn) {
	gs.gameManager.UnregisterConnection(gameID, playerID, conn)
}
