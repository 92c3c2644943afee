package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/drawbackchess-backend/internal/shared"
	"github.com/benbeisheim/drawbackchess-backend/internal/variant"
	"github.com/benbeisheim/drawbackchess-backend/internal/ws"
	"go.uber.org/zap"
)

var (
	ErrGameFull       = errors.New("game is full")
	ErrNotInGame      = errors.New("player not in game")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrNotYourSide    = errors.New("player does not control that side")
	ErrGameOver       = errors.New("game is over")
	ErrAnalysisOnly   = errors.New("only available on analysis boards")
	ErrDrawbackLocked = errors.New("drawbacks are locked once play has started")
	ErrNothingToRedo  = errors.New("no move to redo")
	ErrNotAuthorized  = errors.New("not authorized to join this game")
)

const (
	ReasonKingCaptured = "king_captured"
	ReasonNoLegalMoves = "no_legal_moves"
)

// Conn is the part of a websocket connection a game writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// The connections for a specific game
type GameConnections struct {
	connections map[string]Conn // playerID -> connection
	mu          sync.RWMutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Conn),
	}
}

type Drawbacks struct {
	White variant.DrawbackKind `json:"white"`
	Black variant.DrawbackKind `json:"black"`
}

// GameOptions configures a new game. A zero ClockTime disables clocks. Analysis
// boards let anyone move either side and unlock undo, redo, reset and PGN loading.
type GameOptions struct {
	FEN       string
	Drawbacks Drawbacks
	ClockTime time.Duration
	Analysis  bool
}

type Ply struct {
	Piece    shared.Piece  `json:"piece"`
	Move     shared.Move   `json:"move"`
	Captured *shared.Piece `json:"capturedPiece"`
	Notation string        `json:"notation"`
	UCI      string        `json:"uci"`
}

type CapturedPieces struct {
	White []shared.Piece `json:"white"`
	Black []shared.Piece `json:"black"`
}

type Result struct {
	Winner shared.Side `json:"winner"`
	Reason string      `json:"reason"`
}

type GameState struct {
	ID             string         `json:"id"`
	FEN            string         `json:"fen"`
	Sound          string         `json:"sound"`
	ToMove         shared.Side    `json:"toMove"`
	Pieces         []PlacedPiece  `json:"pieces"`
	MoveHistory    []Ply          `json:"moveHistory"`
	CapturedPieces CapturedPieces `json:"capturedPieces"`
	LegalMoves     []shared.Move  `json:"legalMoves"`
	Drawbacks      Drawbacks      `json:"drawbacks"`
	CanCaptureKing bool           `json:"canCaptureKing"`
	Resolve        *Result        `json:"resolve"`
	Players        Players        `json:"players"`
	LastMove       *shared.Move   `json:"lastMove"`
	RedoPlies      int            `json:"redoPlies"`
	Analysis       bool           `json:"analysis"`
}

// Game hosts one board, its drawback engine and the observers of both.
type Game struct {
	ID          string
	mu          sync.Mutex
	opts        GameOptions
	start       *Board
	board       *Board
	engine      *variant.Engine
	history     []Ply
	redo        []shared.Move
	sound       string
	players     Players
	whiteClock  *Clock
	blackClock  *Clock
	connections *GameConnections
	logger      *zap.Logger
}

func NewGame(id string, opts GameOptions, logger *zap.Logger) (*Game, error) {
	start := NewBoard()
	if opts.FEN != "" {
		b, err := NewBoardFromFEN(opts.FEN)
		if err != nil {
			return nil, err
		}
		start = b
	}
	registry := variant.NewRegistry()
	if err := registry.Assign(shared.White, opts.Drawbacks.White); err != nil {
		return nil, err
	}
	if err := registry.Assign(shared.Black, opts.Drawbacks.Black); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	board := start.Clone()
	g := &Game{
		ID:          id,
		opts:        opts,
		start:       start,
		board:       board,
		engine:      variant.NewEngine(board, registry),
		connections: NewGameConnections(),
		logger:      logger.With(zap.String("game_id", id)),
	}
	if opts.ClockTime > 0 {
		g.whiteClock = NewClock(opts.ClockTime)
		g.blackClock = NewClock(opts.ClockTime)
	}
	return g, nil
}

func (g *Game) AddPlayer(playerID string) (shared.Side, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if side, ok := g.sideOf(playerID); ok {
		return side, nil
	}
	for _, side := range []shared.Side{shared.White, shared.Black} {
		seat := g.players.seat(side)
		if seat.ID == "" {
			*seat = ClientPlayer{ID: playerID, Color: side}
			g.logger.Info("player seated", zap.String("player_id", playerID), zap.Stringer("side", side))
			return side, nil
		}
	}
	return shared.White, ErrGameFull
}

func (g *Game) sideOf(playerID string) (shared.Side, bool) {
	if playerID == "" {
		return shared.White, false
	}
	if g.players.White.ID == playerID {
		return shared.White, true
	}
	if g.players.Black.ID == playerID {
		return shared.Black, true
	}
	return shared.White, false
}

func (g *Game) canSpectate() bool {
	return g.opts.Analysis || g.players.White.ID == "" || g.players.Black.ID == ""
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.stateLocked()
}

// FEN is the current position, e.g. for handing to an analysis engine.
func (g *Game) FEN() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.board.FEN()
}

// LegalMovesFrom lists the legal moves of the piece on sq for highlighting.
func (g *Game) LegalMovesFrom(sq shared.Square) []shared.Move {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.engine.LegalMovesFrom(sq)
}

// update runs fn under the game lock and broadcasts the resulting state.
func (g *Game) update(fn func() error) error {
	state, err := func() (GameState, error) {
		g.mu.Lock()
		defer g.mu.Unlock()
		if err := fn(); err != nil {
			return GameState{}, err
		}
		return g.stateLocked(), nil
	}()
	if err != nil {
		return err
	}
	g.broadcastState(state)
	return nil
}

func (g *Game) MakeMove(playerID string, move shared.Move) error {
	return g.update(func() error {
		if g.engine.IsGameOver() {
			return ErrGameOver
		}
		if !g.opts.Analysis {
			side, ok := g.sideOf(playerID)
			if !ok {
				return ErrNotInGame
			}
			if side != g.board.SideToMove() {
				return ErrNotYourTurn
			}
		}
		if err := g.engine.CheckLegal(move); err != nil {
			return err
		}
		if err := g.play(move); err != nil {
			return err
		}
		g.redo = nil
		return nil
	})
}

// play applies an already validated move and records it.
func (g *Game) play(move shared.Move) error {
	mover := g.board.SideToMove()
	ply := g.makePly(move)
	if err := g.board.Apply(move); err != nil {
		return err
	}
	g.history = append(g.history, ply)

	g.sound = "move"
	if ply.Captured != nil {
		g.sound = "capture"
	}
	over := g.engine.IsGameOver()
	if over {
		g.sound = "gameOver"
	}

	if g.whiteClock != nil {
		g.clockFor(mover).Stop()
		if !over {
			g.clockFor(mover.Other()).Start()
		}
	}
	g.logger.Debug("move played",
		zap.Stringer("side", mover),
		zap.String("move", move.String()),
		zap.String("notation", ply.Notation),
		zap.Bool("game_over", over),
	)
	return nil
}

func (g *Game) makePly(move shared.Move) Ply {
	piece, _ := g.board.PieceAt(move.From)
	ply := Ply{
		Piece:    piece,
		Move:     move,
		Notation: g.board.Notation(move),
		UCI:      move.String(),
	}
	captured, ok := g.board.PieceAt(move.To)
	if !ok && piece.Type == shared.Pawn && move.To == g.board.EnPassantSquare() && move.From.File() != move.To.File() {
		captured, ok = g.board.PieceAt(shared.NewSquare(move.To.File(), move.From.Rank()))
	}
	if ok {
		ply.Captured = &captured
	}
	return ply
}

func (g *Game) clockFor(side shared.Side) *Clock {
	if side == shared.White {
		return g.whiteClock
	}
	return g.blackClock
}

// AssignDrawback sets a side's drawback. Outside analysis boards only the seated
// player may choose their own drawback, and only before the first move.
func (g *Game) AssignDrawback(playerID string, side shared.Side, kind variant.DrawbackKind) error {
	return g.update(func() error {
		if !g.opts.Analysis {
			seated, ok := g.sideOf(playerID)
			if !ok {
				return ErrNotInGame
			}
			if seated != side {
				return ErrNotYourSide
			}
			if len(g.history) > 0 {
				return ErrDrawbackLocked
			}
		}
		if err := g.engine.Assign(side, kind); err != nil {
			return err
		}
		g.logger.Info("drawback assigned", zap.Stringer("side", side), zap.Stringer("drawback", kind))
		return nil
	})
}

func (g *Game) Undo() error {
	return g.update(func() error {
		if !g.opts.Analysis {
			return ErrAnalysisOnly
		}
		last, ok := g.board.LastMove()
		if !ok {
			return ErrNothingToUndo
		}
		if err := g.board.UndoLast(); err != nil {
			return err
		}
		g.history = g.history[:len(g.history)-1]
		g.redo = append(g.redo, last)
		g.sound = "move"
		if g.whiteClock != nil {
			mover := g.board.SideToMove()
			g.clockFor(mover.Other()).Stop()
			g.clockFor(mover).Start()
		}
		return nil
	})
}

// Redo replays the next undone or imported move. It must still be legal under the
// drawbacks in force now.
func (g *Game) Redo() error {
	return g.update(func() error {
		if !g.opts.Analysis {
			return ErrAnalysisOnly
		}
		if len(g.redo) == 0 {
			return ErrNothingToRedo
		}
		if g.engine.IsGameOver() {
			return ErrGameOver
		}
		next := g.redo[len(g.redo)-1]
		if err := g.engine.CheckLegal(next); err != nil {
			return err
		}
		if err := g.play(next); err != nil {
			return err
		}
		g.redo = g.redo[:len(g.redo)-1]
		return nil
	})
}

// Reset returns to the starting position. Drawbacks are kept.
func (g *Game) Reset() error {
	return g.update(func() error {
		if !g.opts.Analysis {
			return ErrAnalysisOnly
		}
		g.resetTo(g.start, nil)
		return nil
	})
}

// LoadPGN replaces the board with the PGN's initial position and queues its
// mainline for Redo.
func (g *Game) LoadPGN(pgn string) error {
	start, moves, err := ImportPGN(pgn)
	if err != nil {
		return err
	}
	return g.update(func() error {
		if !g.opts.Analysis {
			return ErrAnalysisOnly
		}
		redo := make([]shared.Move, len(moves))
		for i, m := range moves {
			redo[len(moves)-1-i] = m
		}
		g.resetTo(start, redo)
		g.logger.Info("pgn loaded", zap.Int("plies", len(moves)))
		return nil
	})
}

func (g *Game) resetTo(start *Board, redo []shared.Move) {
	g.start = start
	g.board = start.Clone()
	g.engine.SetPosition(g.board)
	g.history = nil
	g.redo = redo
	g.sound = ""
	if g.whiteClock != nil {
		g.whiteClock.Reset(g.opts.ClockTime)
		g.blackClock.Reset(g.opts.ClockTime)
	}
}

func (g *Game) stateLocked() GameState {
	state := GameState{
		ID:          g.ID,
		FEN:         g.board.FEN(),
		Sound:       g.sound,
		ToMove:      g.board.SideToMove(),
		Pieces:      g.board.Pieces(),
		MoveHistory: append([]Ply{}, g.history...),
		CapturedPieces: CapturedPieces{
			White: []shared.Piece{},
			Black: []shared.Piece{},
		},
		LegalMoves: append([]shared.Move{}, g.engine.LegalMoves()...),
		Drawbacks: Drawbacks{
			White: g.engine.ActiveKind(shared.White),
			Black: g.engine.ActiveKind(shared.Black),
		},
		Players:   g.players,
		RedoPlies: len(g.redo),
		Analysis:  g.opts.Analysis,
	}
	for _, ply := range g.history {
		if ply.Captured == nil {
			continue
		}
		if ply.Piece.Side == shared.White {
			state.CapturedPieces.White = append(state.CapturedPieces.White, *ply.Captured)
		} else {
			state.CapturedPieces.Black = append(state.CapturedPieces.Black, *ply.Captured)
		}
	}
	if last, ok := g.board.LastMove(); ok {
		state.LastMove = &last
	}
	if verdict := g.engine.Winner(); verdict.Over {
		reason := ReasonNoLegalMoves
		if !g.engine.KingPresent(g.board.SideToMove()) {
			reason = ReasonKingCaptured
		}
		state.Resolve = &Result{Winner: verdict.Winner, Reason: reason}
	} else {
		canCapture, err := g.engine.CanCaptureOpponentKing()
		if err != nil {
			g.logger.Error("king capture probe failed", zap.Error(err))
		}
		state.CanCaptureKing = canCapture
	}
	if g.whiteClock != nil {
		state.Players.White.TimeLeft = g.whiteClock.Tenths()
		state.Players.Black.TimeLeft = g.blackClock.Tenths()
	}
	return state
}

func (g *Game) RegisterConnection(playerID string, conn Conn) error {
	g.mu.Lock()
	isAuthorized := g.isPlayerInGameLocked(playerID) || g.canSpectate()
	state := g.stateLocked()
	g.mu.Unlock()

	if !isAuthorized {
		return ErrNotAuthorized
	}

	g.connections.mu.Lock()
	if old, exists := g.connections.connections[playerID]; exists && old != conn {
		g.logger.Info("replacing connection", zap.String("player_id", playerID))
		old.Close()
	}
	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()

	g.broadcastState(state)
	return nil
}

func (g *Game) isPlayerInGameLocked(playerID string) bool {
	_, ok := g.sideOf(playerID)
	return ok
}

// UnregisterConnection drops conn if it is still the player's current connection.
func (g *Game) UnregisterConnection(playerID string, conn Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if current, exists := g.connections.connections[playerID]; exists && current == conn {
		delete(g.connections.connections, playerID)
	}
}

func (g *Game) broadcastState(state GameState) {
	payload, err := json.Marshal(state)
	if err != nil {
		g.logger.Error("failed to marshal state", zap.Error(err))
		return
	}
	messages := []ws.Message{{Type: ws.MessageTypeGameState, Payload: payload}}
	if state.Resolve != nil {
		result, err := json.Marshal(state.Resolve)
		if err != nil {
			g.logger.Error("failed to marshal result", zap.Error(err))
			return
		}
		messages = append(messages, ws.Message{Type: ws.MessageTypeGameOver, Payload: result})
	}

	g.connections.mu.RLock()
	active := make(map[string]Conn, len(g.connections.connections))
	for playerID, conn := range g.connections.connections {
		active[playerID] = conn
	}
	g.connections.mu.RUnlock()

	for playerID, conn := range active {
		for _, msg := range messages {
			if err := conn.WriteJSON(msg); err != nil {
				g.logger.Warn("failed to send state", zap.String("player_id", playerID), zap.Error(err))
				g.UnregisterConnection(playerID, conn)
				break
			}
		}
	}
}

func (r Result) String() string {
	return fmt.Sprintf("%s wins (%s)", r.Winner, r.Reason)
}
