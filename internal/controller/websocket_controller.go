package controller

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/benbeisheim/drawbackchess-backend/internal/service"
	"github.com/benbeisheim/drawbackchess-backend/internal/shared"
	"github.com/benbeisheim/drawbackchess-backend/internal/variant"
	"github.com/benbeisheim/drawbackchess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

type WebSocketController struct {
	gameService *service.GameService
	logger      *zap.Logger
}

func NewWebSocketController(gameService *service.GameService, logger *zap.Logger) *WebSocketController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSocketController{
		gameService: gameService,
		logger:      logger,
	}
}

// socket serialises writes; broadcasts and error replies come from different
// goroutines.
type socket struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *socket) WriteJSON(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

func (s *socket) Close() error {
	return s.conn.Close()
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID, _ := c.Locals("playerID").(string)
	logger := wsc.logger.With(zap.String("game_id", gameID), zap.String("player_id", playerID))

	conn := &socket{conn: c}
	if err := wsc.gameService.RegisterConnection(gameID, playerID, conn); err != nil {
		logger.Warn("failed to register connection", zap.Error(err))
		wsc.sendError(conn, err)
		c.Close()
		return
	}
	logger.Debug("socket connected")

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			logger.Debug("socket closed", zap.Error(err))
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.sendError(conn, fmt.Errorf("malformed message: %w", err))
			continue
		}
		if err := wsc.handleMessage(gameID, playerID, msg); err != nil {
			logger.Debug("message rejected", zap.String("type", string(msg.Type)), zap.Error(err))
			wsc.sendError(conn, err)
		}
	}

	wsc.gameService.UnregisterConnection(gameID, playerID, conn)
}

func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move shared.Move
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return err
		}
		return wsc.gameService.HandleMove(gameID, playerID, move)

	case ws.MessageTypeDrawback:
		var payload ws.DrawbackPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return err
		}
		side, err := shared.ParseSide(payload.Color)
		if err != nil {
			return err
		}
		kind, err := variant.ParseDrawbackKind(payload.Drawback)
		if err != nil {
			return err
		}
		return wsc.gameService.AssignDrawback(gameID, playerID, side, kind)

	case ws.MessageTypeUndo:
		return wsc.gameService.Undo(gameID)
	case ws.MessageTypeRedo:
		return wsc.gameService.Redo(gameID)
	case ws.MessageTypeReset:
		return wsc.gameService.Reset(gameID)

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

func (wsc *WebSocketController) sendError(conn *socket, cause error) {
	payload, err := json.Marshal(ws.ErrorPayload{Error: cause.Error()})
	if err != nil {
		return
	}
	if err := conn.WriteJSON(ws.Message{Type: ws.MessageTypeError, Payload: payload}); err != nil {
		wsc.logger.Debug("failed to send error", zap.Error(err))
	}
}
