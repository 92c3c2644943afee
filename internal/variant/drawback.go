package variant

import (
	"fmt"
	"strings"

	"github.com/benbeisheim/drawbackchess-backend/internal/shared"
	"golang.org/x/exp/slices"
)

// DrawbackKind names a per-side restriction on the pseudo-legal move set.
type DrawbackKind uint8

const (
	None DrawbackKind = iota
	NoDiagonalCapture
	KingMustCapture
	NoPawnMoves

	drawbackKindCount
)

var drawbackNames = [...]string{
	None:              "none",
	NoDiagonalCapture: "no_diagonal_capture",
	KingMustCapture:   "king_must_capture",
	NoPawnMoves:       "no_pawn_moves",
}

func (k DrawbackKind) Valid() bool { return k < drawbackKindCount }

func (k DrawbackKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("DrawbackKind(%d)", uint8(k))
	}
	return drawbackNames[k]
}

// ParseDrawbackKind accepts the wire names; "" is treated as none.
func ParseDrawbackKind(s string) (DrawbackKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return None, nil
	}
	for k, name := range drawbackNames {
		if name == s {
			return DrawbackKind(k), nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrInvalidDrawback, s)
}

// DrawbackKinds lists every recognised kind, None first.
func DrawbackKinds() []DrawbackKind {
	out := make([]DrawbackKind, 0, drawbackKindCount)
	for k := None; k < drawbackKindCount; k++ {
		out = append(out, k)
	}
	return out
}

func (k DrawbackKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDrawback, uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *DrawbackKind) UnmarshalText(text []byte) error {
	v, err := ParseDrawbackKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// BoardView is the read-only query surface filters are allowed to use.
type BoardView interface {
	PieceAt(sq shared.Square) (shared.Piece, bool)
}

type filterFunc func(moves []shared.Move, side shared.Side, board BoardView) []shared.Move

// filterFor is the only place a kind is bound to behaviour. New kinds get a new
// case here and a new filter function; existing filters are not touched.
func filterFor(k DrawbackKind) filterFunc {
	switch k {
	case NoDiagonalCapture:
		return noDiagonalCapture
	case KingMustCapture:
		return kingMustCapture
	case NoPawnMoves:
		return noPawnMoves
	case None:
		return nil
	}
	panic(fmt.Sprintf("variant: no filter bound to %s", k))
}

// Registry holds the drawback assigned to each side. The zero value assigns None to both.
type Registry struct {
	kinds [2]DrawbackKind
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Assign replaces the side's drawback. Unknown kinds leave the assignment unchanged.
func (r *Registry) Assign(side shared.Side, kind DrawbackKind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidDrawback, kind)
	}
	if side != shared.White && side != shared.Black {
		return fmt.Errorf("%w: %d", shared.ErrInvalidSide, side)
	}
	r.kinds[side] = kind
	return nil
}

func (r *Registry) ActiveKind(side shared.Side) DrawbackKind {
	if side != shared.White && side != shared.Black {
		return None
	}
	return r.kinds[side]
}

// Filter narrows moves by the side's active drawback. With None the input slice is
// returned as is.
func (r *Registry) Filter(moves []shared.Move, side shared.Side, board BoardView) []shared.Move {
	fn := filterFor(r.ActiveKind(side))
	if fn == nil {
		return moves
	}
	return fn(moves, side, board)
}

func capturesOpponent(m shared.Move, side shared.Side, board BoardView) bool {
	target, ok := board.PieceAt(m.To)
	return ok && target.Side != side
}

func movingType(m shared.Move, board BoardView) shared.PieceType {
	p, ok := board.PieceAt(m.From)
	if !ok {
		return shared.NoPieceType
	}
	return p.Type
}

// noDiagonalCapture keeps captures only along a shared file or rank.
func noDiagonalCapture(moves []shared.Move, side shared.Side, board BoardView) []shared.Move {
	return slices.DeleteFunc(slices.Clone(moves), func(m shared.Move) bool {
		return capturesOpponent(m, side, board) &&
			m.From.File() != m.To.File() && m.From.Rank() != m.To.Rank()
	})
}

// kingMustCapture restricts the side to king captures when at least one exists.
func kingMustCapture(moves []shared.Move, side shared.Side, board BoardView) []shared.Move {
	var captures []shared.Move
	for _, m := range moves {
		if movingType(m, board) == shared.King && capturesOpponent(m, side, board) {
			captures = append(captures, m)
		}
	}
	if len(captures) == 0 {
		return moves
	}
	return captures
}

func noPawnMoves(moves []shared.Move, _ shared.Side, board BoardView) []shared.Move {
	return slices.DeleteFunc(slices.Clone(moves), func(m shared.Move) bool {
		return movingType(m, board) == shared.Pawn
	})
}
