package controller

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/benbeisheim/drawbackchess-backend/internal/model"
	"github.com/benbeisheim/drawbackchess-backend/internal/service"
	"github.com/benbeisheim/drawbackchess-backend/internal/shared"
	"github.com/benbeisheim/drawbackchess-backend/internal/variant"
	"github.com/benbeisheim/drawbackchess-backend/internal/ws"
)

func TestHandleMessage(t *testing.T) {
	gs := service.NewGameService(service.NewGameManager(model.GameOptions{}, nil, nil))
	wsc := NewWebSocketController(gs, nil)
	id, err := gs.CreateGame(model.GameOptions{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, p := range []string{"alice", "bob"} {
		if _, err := gs.JoinGame(id, p); err != nil {
			t.Fatalf("join %s: %v", p, err)
		}
	}

	msg := func(typ ws.MessageType, payload string) ws.Message {
		m := ws.Message{Type: typ}
		if payload != "" {
			m.Payload = json.RawMessage(payload)
		}
		return m
	}

	if err := wsc.handleMessage(id, "bob", msg(ws.MessageTypeDrawback, `{"color":"black","drawback":"king_must_capture"}`)); err != nil {
		t.Fatalf("drawback: %v", err)
	}
	if err := wsc.handleMessage(id, "bob", msg(ws.MessageTypeDrawback, `{"color":"black","drawback":"bogus"}`)); !errors.Is(err, variant.ErrInvalidDrawback) {
		t.Fatalf("bogus drawback err = %v", err)
	}
	if err := wsc.handleMessage(id, "alice", msg(ws.MessageTypeMove, `{"from":"e2","to":"e4"}`)); err != nil {
		t.Fatalf("move: %v", err)
	}
	if err := wsc.handleMessage(id, "alice", msg(ws.MessageTypeMove, `{"from":"e2"`)); err == nil {
		t.Fatalf("truncated payload should fail")
	}
	if err := wsc.handleMessage(id, "alice", msg(ws.MessageTypeUndo, "")); !errors.Is(err, model.ErrAnalysisOnly) {
		t.Fatalf("undo err = %v", err)
	}
	if err := wsc.handleMessage(id, "alice", msg("resign", "")); err == nil {
		t.Fatalf("unknown type should fail")
	}

	state, err := gs.GetGameState(id)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.Drawbacks.Black != variant.KingMustCapture || state.ToMove != shared.Black {
		t.Fatalf("state = drawbacks %+v to move %v", state.Drawbacks, state.ToMove)
	}
}
