package controller

import (
	"errors"
	"time"

	"github.com/benbeisheim/drawbackchess-backend/internal/analysis"
	"github.com/benbeisheim/drawbackchess-backend/internal/model"
	"github.com/benbeisheim/drawbackchess-backend/internal/service"
	"github.com/benbeisheim/drawbackchess-backend/internal/shared"
	"github.com/benbeisheim/drawbackchess-backend/internal/variant"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type GameController struct {
	gameService *service.GameService
	logger      *zap.Logger
}

func NewGameController(gameService *service.GameService, logger *zap.Logger) *GameController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GameController{gameService: gameService, logger: logger}
}

type createGameRequest struct {
	FEN           string `json:"fen"`
	WhiteDrawback string `json:"whiteDrawback"`
	BlackDrawback string `json:"blackDrawback"`
	ClockSeconds  int    `json:"clockSeconds"`
	Analysis      bool   `json:"analysis"`
}

type drawbackRequest struct {
	Color    string `json:"color"`
	Drawback string `json:"drawback"`
}

type pgnRequest struct {
	PGN string `json:"pgn"`
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, variant.ErrInvalidDrawback),
		errors.Is(err, variant.ErrIllegalMove),
		errors.Is(err, shared.ErrInvalidSquare),
		errors.Is(err, shared.ErrInvalidSide),
		errors.Is(err, shared.ErrInvalidPiece),
		errors.Is(err, shared.ErrInvalidMove),
		errors.Is(err, model.ErrInvalidFEN),
		errors.Is(err, model.ErrInvalidPGN),
		errors.Is(err, analysis.ErrNoKing):
		return fiber.StatusBadRequest
	case errors.Is(err, model.ErrNotInGame),
		errors.Is(err, model.ErrNotYourSide),
		errors.Is(err, model.ErrNotAuthorized):
		return fiber.StatusForbidden
	case errors.Is(err, model.ErrGameOver),
		errors.Is(err, model.ErrGameFull),
		errors.Is(err, model.ErrNotYourTurn),
		errors.Is(err, model.ErrDrawbackLocked),
		errors.Is(err, model.ErrAnalysisOnly),
		errors.Is(err, model.ErrNothingToUndo),
		errors.Is(err, model.ErrNothingToRedo),
		errors.Is(err, model.ErrAlreadyQueued),
		errors.Is(err, service.ErrGameExists):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrAnalysisDisabled):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

func (gc *GameController) fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		gc.logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func playerID(c *fiber.Ctx) string {
	id, _ := c.Locals("playerID").(string)
	return id
}

func (gc *GameController) ListDrawbacks(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"drawbacks": variant.DrawbackKinds(),
	})
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	var req createGameRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
	}
	white, err := variant.ParseDrawbackKind(req.WhiteDrawback)
	if err != nil {
		return gc.fail(c, err)
	}
	black, err := variant.ParseDrawbackKind(req.BlackDrawback)
	if err != nil {
		return gc.fail(c, err)
	}

	gameID, err := gc.gameService.CreateGame(model.GameOptions{
		FEN:       req.FEN,
		Drawbacks: model.Drawbacks{White: white, Black: black},
		ClockTime: secondsToDuration(req.ClockSeconds),
		Analysis:  req.Analysis,
	})
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	color, err := gc.gameService.JoinGame(c.Params("gameId"), playerID(c))
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(gameState)
}

// GetLegalMoves returns every legal move, or only those from ?from=<square>.
func (gc *GameController) GetLegalMoves(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if from := c.Query("from"); from != "" {
		sq, err := shared.ParseSquare(from)
		if err != nil {
			return gc.fail(c, err)
		}
		moves, err := gc.gameService.LegalMovesFrom(gameID, sq)
		if err != nil {
			return gc.fail(c, err)
		}
		return c.JSON(fiber.Map{"moves": nonNil(moves)})
	}
	state, err := gc.gameService.GetGameState(gameID)
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(fiber.Map{"moves": state.LegalMoves})
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var move shared.Move
	if err := c.BodyParser(&move); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid move: " + err.Error(),
		})
	}
	gameID := c.Params("gameId")
	if err := gc.gameService.HandleMove(gameID, playerID(c), move); err != nil {
		return gc.fail(c, err)
	}
	return gc.GetGameState(c)
}

func (gc *GameController) AssignDrawback(c *fiber.Ctx) error {
	var req drawbackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	side, err := shared.ParseSide(req.Color)
	if err != nil {
		return gc.fail(c, err)
	}
	kind, err := variant.ParseDrawbackKind(req.Drawback)
	if err != nil {
		return gc.fail(c, err)
	}
	if err := gc.gameService.AssignDrawback(c.Params("gameId"), playerID(c), side, kind); err != nil {
		return gc.fail(c, err)
	}
	return gc.GetGameState(c)
}

func (gc *GameController) Undo(c *fiber.Ctx) error {
	if err := gc.gameService.Undo(c.Params("gameId")); err != nil {
		return gc.fail(c, err)
	}
	return gc.GetGameState(c)
}

func (gc *GameController) Redo(c *fiber.Ctx) error {
	if err := gc.gameService.Redo(c.Params("gameId")); err != nil {
		return gc.fail(c, err)
	}
	return gc.GetGameState(c)
}

func (gc *GameController) Reset(c *fiber.Ctx) error {
	if err := gc.gameService.Reset(c.Params("gameId")); err != nil {
		return gc.fail(c, err)
	}
	return gc.GetGameState(c)
}

func (gc *GameController) LoadPGN(c *fiber.Ctx) error {
	var req pgnRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := gc.gameService.LoadPGN(c.Params("gameId"), req.PGN); err != nil {
		return gc.fail(c, err)
	}
	return gc.GetGameState(c)
}

func (gc *GameController) Analyze(c *fiber.Ctx) error {
	report, err := gc.gameService.Analyze(c.UserContext(), c.Params("gameId"))
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"report":     report,
		"whiteShare": analysis.WhiteShare(report),
	})
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	id := playerID(c)
	if err := gc.gameService.JoinMatchmaking(id); err != nil {
		return gc.fail(c, err)
	}
	if event, ok := gc.gameService.MatchStatus(id); ok {
		return c.JSON(fiber.Map{
			"status": "matched",
			"match":  event,
		})
	}
	return c.JSON(fiber.Map{
		"status": "queued",
	})
}

func (gc *GameController) MatchmakingStatus(c *fiber.Ctx) error {
	if event, ok := gc.gameService.MatchStatus(playerID(c)); ok {
		return c.JSON(fiber.Map{
			"status": "matched",
			"match":  event,
		})
	}
	return c.JSON(fiber.Map{
		"status": "queued",
	})
}

func (gc *GameController) LeaveMatchmaking(c *fiber.Ctx) error {
	left := gc.gameService.LeaveMatchmaking(playerID(c))
	return c.JSON(fiber.Map{
		"left": left,
	})
}

func nonNil(moves []shared.Move) []shared.Move {
	if moves == nil {
		return []shared.Move{}
	}
	return moves
}

func secondsToDuration(seconds int) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
