package model

import (
	"errors"
	"testing"

	"github.com/benbeisheim/drawbackchess-backend/internal/shared"
)

func TestFENRoundTrip(t *testing.T) {
	for _, fen := range []string{
		StartFEN,
		kiwipete,
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		"4k3/8/8/8/8/8/8/4K3 w - - 12 40",
		"8/p7/8/8/8/8/4P3/4K3 b - - 0 1",
	} {
		b, err := NewBoardFromFEN(fen)
		if err != nil {
			t.Fatalf("decode %q: %v", fen, err)
		}
		if got := b.FEN(); got != fen {
			t.Fatalf("round trip:\n got %s\nwant %s", got, fen)
		}
	}
}

func TestNewBoardMatchesStartFEN(t *testing.T) {
	b, err := NewBoardFromFEN(StartFEN)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !b.Equal(NewBoard()) {
		t.Fatalf("NewBoard and StartFEN disagree: %s", NewBoard().FEN())
	}
}

func TestNewBoardFromFENRejectsGarbage(t *testing.T) {
	for _, fen := range []string{"", "not a fen", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1"} {
		if _, err := NewBoardFromFEN(fen); !errors.Is(err, ErrInvalidFEN) {
			t.Fatalf("NewBoardFromFEN(%q) err = %v, want ErrInvalidFEN", fen, err)
		}
	}
}

func TestImportPGN(t *testing.T) {
	pgn := `[Event "Casual"]
[White "a"]
[Black "b"]
[Result "*"]

1. e4 e5 2. Nf3 Nc6 3. Bc4 Nf6 4. O-O *`

	start, moves, err := ImportPGN(pgn)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !start.Equal(NewBoard()) {
		t.Fatalf("start position = %s", start.FEN())
	}
	want := []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "g8f6", "e1g1"}
	if len(moves) != len(want) {
		t.Fatalf("got %d moves, want %d: %v", len(moves), len(want), moves)
	}
	for i, m := range moves {
		if m.String() != want[i] {
			t.Fatalf("move %d = %s, want %s", i, m, want[i])
		}
	}
	if start.Plies() != 0 {
		t.Fatalf("start board should not have the moves applied")
	}

	b := start.Clone()
	for _, m := range moves {
		if err := b.Apply(m); err != nil {
			t.Fatalf("replay %s: %v", m, err)
		}
	}
	if p, _ := b.PieceAt(shared.NewSquare(5, 0)); p.Type != shared.Rook {
		t.Fatalf("castling rook not on f1 after replay: %s", b.FEN())
	}
}

func TestImportPGNRejectsIllegalText(t *testing.T) {
	if _, _, err := ImportPGN("1. e5 *"); !errors.Is(err, ErrInvalidPGN) {
		t.Fatalf("err = %v, want ErrInvalidPGN", err)
	}
}
