package variant

import (
	"errors"
	"reflect"
	"testing"

	"github.com/benbeisheim/drawbackchess-backend/internal/shared"
	"golang.org/x/exp/slices"
)

func TestIsLegalFollowsTheDrawback(t *testing.T) {
	board := newFakeBoard(shared.White, map[string]shared.Piece{
		"e1": wK, "e2": wP, "g1": wN, "e8": bK,
	}, "e2e4", "g1f3", "e1d1")
	e := NewEngine(board, nil)

	pawnPush := mustMove("e2e4")
	if !e.IsLegal(pawnPush) {
		t.Fatalf("e2e4 should be legal without a drawback")
	}
	if err := e.Assign(shared.White, NoPawnMoves); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if e.IsLegal(pawnPush) {
		t.Fatalf("e2e4 should be illegal under no_pawn_moves")
	}
	if err := e.CheckLegal(pawnPush); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("CheckLegal err = %v, want ErrIllegalMove", err)
	}
	if !e.IsLegal(mustMove("g1f3")) {
		t.Fatalf("knight move should stay legal")
	}
	// same squares, different promotion: not the same move
	if e.IsLegal(shared.Move{From: mustSquare("g1"), To: mustSquare("f3"), Promotion: shared.Queen}) {
		t.Fatalf("membership must compare the whole move")
	}
}

func TestAssignNoneRestoresPseudoLegalSet(t *testing.T) {
	board := newFakeBoard(shared.White, map[string]shared.Piece{
		"e1": wK, "e2": wP, "d2": bP, "e8": bK,
	}, "e2e3", "e1d2", "e1f1")
	e := NewEngine(board, nil)
	before := e.LegalMoves()

	for _, k := range []DrawbackKind{NoDiagonalCapture, KingMustCapture, NoPawnMoves} {
		if err := e.Assign(shared.White, k); err != nil {
			t.Fatalf("assign %s: %v", k, err)
		}
		if err := e.Assign(shared.White, None); err != nil {
			t.Fatalf("assign none: %v", err)
		}
		if got := e.LegalMoves(); !slices.Equal(got, before) {
			t.Fatalf("after %s then none: %v, want %v", k, got, before)
		}
	}
	if got := e.LegalMoves(); !slices.Equal(got, board.PseudoLegalMoves()) {
		t.Fatalf("legal set %v differs from pseudo-legal %v", got, board.PseudoLegalMoves())
	}
}

func TestLegalMovesFrom(t *testing.T) {
	board := newFakeBoard(shared.White, map[string]shared.Piece{
		"e1": wK, "e2": wP, "e8": bK,
	}, "e2e3", "e1d1", "e2e4", "e1f1")
	e := NewEngine(board, nil)
	if got, want := e.LegalMovesFrom(mustSquare("e2")), moves("e2e3", "e2e4"); !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if got := e.LegalMovesFrom(mustSquare("a1")); len(got) != 0 {
		t.Fatalf("empty square should have no moves, got %v", got)
	}
}

func TestGameOverWithoutKing(t *testing.T) {
	board := newFakeBoard(shared.Black, map[string]shared.Piece{
		"e1": wK, "a7": bP,
	}, "a7a6")
	e := NewEngine(board, nil)

	if len(e.LegalMoves()) == 0 {
		t.Fatalf("test needs black to have moves")
	}
	if e.KingPresent(shared.Black) {
		t.Fatalf("black king should be missing")
	}
	if !e.IsGameOver() {
		t.Fatalf("missing king must end the game")
	}
	if got := e.Winner(); got != Won(shared.White) {
		t.Fatalf("winner = %v, want white", got)
	}
}

func TestGameOverWithoutLegalMoves(t *testing.T) {
	board := newFakeBoard(shared.White, map[string]shared.Piece{
		"e1": wK, "e2": wP, "e8": bK,
	}, "e2e4")
	e := NewEngine(board, nil)
	if e.IsGameOver() {
		t.Fatalf("white still has e2e4")
	}
	if got := e.Winner(); got != Ongoing {
		t.Fatalf("winner = %v, want ongoing", got)
	}
	if err := e.Assign(shared.White, NoPawnMoves); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if !e.IsGameOver() {
		t.Fatalf("no legal moves must end the game")
	}
	// the side not to move is credited with the win
	if got := e.Winner(); got != Won(shared.Black) {
		t.Fatalf("winner = %v, want black", got)
	}
}

func TestCanCaptureOpponentKing(t *testing.T) {
	tests := []struct {
		name     string
		pieces   map[string]shared.Piece
		moves    []string
		drawback DrawbackKind
		want     bool
	}{
		{
			name:   "rook takes king",
			pieces: map[string]shared.Piece{"e1": wK, "a8": wR, "e8": bK},
			moves:  []string{"a8e8", "a8a1", "e1e2"},
			want:   true,
		},
		{
			name:   "no attacker",
			pieces: map[string]shared.Piece{"e1": wK, "a1": wR, "e8": bK},
			moves:  []string{"a1a2", "e1e2"},
			want:   false,
		},
		{
			name:     "diagonal capture forbidden",
			pieces:   map[string]shared.Piece{"e1": wK, "b5": wB, "e8": bK},
			moves:    []string{"b5e8", "b5a4", "e1e2"},
			drawback: NoDiagonalCapture,
			want:     false,
		},
		{
			name:   "opponent has no king",
			pieces: map[string]shared.Piece{"e1": wK, "a1": wR},
			moves:  []string{"a1a8", "a1b1", "e1e2"},
			want:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := newFakeBoard(shared.White, tt.pieces, tt.moves...)
			e := NewEngine(board, nil)
			if err := e.Assign(shared.White, tt.drawback); err != nil {
				t.Fatalf("assign: %v", err)
			}
			before := snapshot(board)

			got, err := e.CanCaptureOpponentKing()
			if err != nil {
				t.Fatalf("probe: %v", err)
			}
			if got != tt.want {
				t.Fatalf("CanCaptureOpponentKing = %v, want %v", got, tt.want)
			}
			if after := snapshot(board); !reflect.DeepEqual(before, after) {
				t.Fatalf("probe mutated the position:\nbefore %v\nafter  %v", before, after)
			}
			if len(board.history) != 0 {
				t.Fatalf("probe left %d moves applied", len(board.history))
			}
		})
	}
}

type failingBoard struct {
	*fakeBoard
}

func (b failingBoard) Apply(shared.Move) error { return errors.New("provider refused") }

func TestCanCaptureOpponentKingReportsApplyFailure(t *testing.T) {
	board := failingBoard{newFakeBoard(shared.White, map[string]shared.Piece{
		"e1": wK, "e8": bK,
	}, "e1e2")}
	e := NewEngine(board, nil)
	if _, err := e.CanCaptureOpponentKing(); err == nil {
		t.Fatalf("expected the provider error to surface")
	}
}

func TestWithMoveUndoesOnPanic(t *testing.T) {
	board := newFakeBoard(shared.White, map[string]shared.Piece{"e1": wK, "e8": bK}, "e1e2")
	before := snapshot(board)
	func() {
		defer func() { _ = recover() }()
		_, _ = withMove(board, mustMove("e1e2"), func() bool {
			panic("boom")
		})
	}()
	if after := snapshot(board); !reflect.DeepEqual(before, after) {
		t.Fatalf("panic left the move applied: %v", after)
	}
}

type boardSnapshot struct {
	pieces map[shared.Square]shared.Piece
	toMove shared.Side
}

func snapshot(b *fakeBoard) boardSnapshot {
	pieces := make(map[shared.Square]shared.Piece, len(b.pieces))
	for sq, p := range b.pieces {
		pieces[sq] = p
	}
	return boardSnapshot{pieces: pieces, toMove: b.toMove}
}
