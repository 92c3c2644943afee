package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/benbeisheim/drawbackchess-backend/internal/analysis"
	"github.com/benbeisheim/drawbackchess-backend/internal/model"
	"github.com/benbeisheim/drawbackchess-backend/internal/shared"
	"github.com/benbeisheim/drawbackchess-backend/internal/variant"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrGameExists       = errors.New("game already exists")
	ErrAnalysisDisabled = errors.New("analysis engine not configured")
)

// GameManager owns every hosted game and the matchmaking queue.
type GameManager struct {
	games    map[string]*model.Game
	queue    *model.Queue
	matches  map[string]model.MatchFoundEvent
	defaults model.GameOptions
	analyzer analysis.Analyzer
	logger   *zap.Logger
	mu       sync.RWMutex
}

// NewGameManager builds a manager. defaults apply to matchmade games; analyzer may
// be nil when no engine is configured.
func NewGameManager(defaults model.GameOptions, analyzer analysis.Analyzer, logger *zap.Logger) *GameManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GameManager{
		games:    make(map[string]*model.Game),
		queue:    model.NewQueue(),
		matches:  make(map[string]model.MatchFoundEvent),
		defaults: defaults,
		analyzer: analyzer,
		logger:   logger,
	}
}

func (gm *GameManager) CreateGame(gameID string, opts model.GameOptions) error {
	game, err := model.NewGame(gameID, opts, gm.logger)
	if err != nil {
		return err
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return ErrGameExists
	}
	gm.games[gameID] = game
	gm.logger.Info("game created",
		zap.String("game_id", gameID),
		zap.Bool("analysis", opts.Analysis),
		zap.Stringer("white_drawback", opts.Drawbacks.White),
		zap.Stringer("black_drawback", opts.Drawbacks.Black),
	)
	return nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return game, nil
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (shared.Side, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return shared.White, err
	}
	return game.AddPlayer(playerID)
}

// JoinMatchmaking queues the player and pairs the two longest waiting players
// into a new game as soon as two are queued.
func (gm *GameManager) JoinMatchmaking(playerID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	delete(gm.matches, playerID)
	if err := gm.queue.AddPlayer(playerID); err != nil {
		return err
	}
	first, second, ok := gm.queue.PeekPair()
	if !ok {
		return nil
	}

	// the pair stays queued until its game exists
	gameID := uuid.New().String()
	game, err := model.NewGame(gameID, gm.defaults, gm.logger)
	if err != nil {
		return fmt.Errorf("create matched game: %w", err)
	}
	matches := make(map[string]model.MatchFoundEvent, 2)
	for _, id := range []string{first, second} {
		side, err := game.AddPlayer(id)
		if err != nil {
			return fmt.Errorf("seat %s: %w", id, err)
		}
		matches[id] = model.MatchFoundEvent{GameID: gameID, Color: side.String()}
	}
	gm.queue.GetNextPair()
	for id, match := range matches {
		gm.matches[id] = match
	}
	gm.games[gameID] = game
	gm.logger.Info("match found", zap.String("game_id", gameID), zap.Strings("players", []string{first, second}))
	return nil
}

// MatchStatus returns the pairing for a queued player once one exists.
func (gm *GameManager) MatchStatus(playerID string) (model.MatchFoundEvent, bool) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	event, ok := gm.matches[playerID]
	return event, ok
}

func (gm *GameManager) LeaveMatchmaking(playerID string) bool {
	return gm.queue.Remove(playerID)
}

func (gm *GameManager) GetGameState(gameID string) (model.GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gm *GameManager) LegalMovesFrom(gameID string, sq shared.Square) ([]shared.Move, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.LegalMovesFrom(sq), nil
}

func (gm *GameManager) MakeMove(gameID string, playerID string, move shared.Move) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.MakeMove(playerID, move)
}

func (gm *GameManager) AssignDrawback(gameID, playerID string, side shared.Side, kind variant.DrawbackKind) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.AssignDrawback(playerID, side, kind)
}

func (gm *GameManager) Undo(gameID string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Undo()
}

func (gm *GameManager) Redo(gameID string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Redo()
}

func (gm *GameManager) Reset(gameID string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Reset()
}

func (gm *GameManager) LoadPGN(gameID string, pgn string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.LoadPGN(pgn)
}

func (gm *GameManager) Analyze(ctx context.Context, gameID string) (analysis.Report, error) {
	if gm.analyzer == nil {
		return analysis.Report{}, ErrAnalysisDisabled
	}
	game, err := gm.GetGame(gameID)
	if err != nil {
		return analysis.Report{}, err
	}
	return gm.analyzer.Analyze(ctx, game.FEN())
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn model.Conn) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string, conn model.Conn) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID, conn)
}
