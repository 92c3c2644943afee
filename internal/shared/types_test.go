package shared

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseSquare(t *testing.T) {
	tests := []struct {
		in         string
		file, rank int
	}{
		{"a1", 0, 0},
		{"h8", 7, 7},
		{"e4", 4, 3},
		{"C7", 2, 6},
	}
	for _, tt := range tests {
		sq, err := ParseSquare(tt.in)
		if err != nil {
			t.Fatalf("ParseSquare(%q): %v", tt.in, err)
		}
		if sq.File() != tt.file || sq.Rank() != tt.rank {
			t.Fatalf("ParseSquare(%q) = file %d rank %d, want %d %d", tt.in, sq.File(), sq.Rank(), tt.file, tt.rank)
		}
	}
	for _, bad := range []string{"", "i1", "a9", "a0", "e44"} {
		if _, err := ParseSquare(bad); !errors.Is(err, ErrInvalidSquare) {
			t.Fatalf("ParseSquare(%q) err = %v, want ErrInvalidSquare", bad, err)
		}
	}
}

func TestParseMove(t *testing.T) {
	m, err := ParseMove("e7e8q")
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}
	want := Move{From: NewSquare(4, 6), To: NewSquare(4, 7), Promotion: Queen}
	if m != want {
		t.Fatalf("ParseMove = %+v, want %+v", m, want)
	}
	if m.String() != "e7e8q" {
		t.Fatalf("String() = %q", m.String())
	}
	if _, err := ParseMove("e7e8k"); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("king promotion accepted: %v", err)
	}
	if _, err := ParseMove("e2"); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("short move accepted: %v", err)
	}
}

func TestMoveJSON(t *testing.T) {
	var m Move
	if err := json.Unmarshal([]byte(`{"from":"g2","to":"g1","promotion":"knight"}`), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.String() != "g2g1n" {
		t.Fatalf("decoded %s", m)
	}
	out, err := json.Marshal(Move{From: NewSquare(0, 0), To: NewSquare(0, 1)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"from":"a1","to":"a2"}` {
		t.Fatalf("marshal = %s", out)
	}
}

func TestSideOther(t *testing.T) {
	if White.Other() != Black || Black.Other() != White {
		t.Fatal("Other is not an involution")
	}
}
