package variant

import (
	"fmt"

	"github.com/benbeisheim/drawbackchess-backend/internal/shared"
	"golang.org/x/exp/slices"
)

// Position is the rules provider the engine reads from. PseudoLegalMoves must be
// order-stable and UndoLast must restore exactly the state before the last Apply.
type Position interface {
	BoardView
	PseudoLegalMoves() []shared.Move
	KingSquare(side shared.Side) (shared.Square, bool)
	SideToMove() shared.Side
	Apply(m shared.Move) error
	UndoLast() error
}

// Verdict is the termination state of a position. The zero value is Ongoing.
type Verdict struct {
	Over   bool
	Winner shared.Side
}

var Ongoing = Verdict{}

func Won(side shared.Side) Verdict { return Verdict{Over: true, Winner: side} }

func (v Verdict) String() string {
	if !v.Over {
		return "ongoing"
	}
	return v.Winner.String() + " wins"
}

// Engine answers legality and termination questions for one position. It keeps no
// state besides the drawback assignment; callers serialise access to the position.
type Engine struct {
	pos      Position
	registry *Registry
}

func NewEngine(pos Position, registry *Registry) *Engine {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Engine{pos: pos, registry: registry}
}

func (e *Engine) Position() Position { return e.pos }

// SetPosition points the engine at another position, keeping the drawbacks.
func (e *Engine) SetPosition(pos Position) { e.pos = pos }

func (e *Engine) Assign(side shared.Side, kind DrawbackKind) error {
	return e.registry.Assign(side, kind)
}

func (e *Engine) ActiveKind(side shared.Side) DrawbackKind {
	return e.registry.ActiveKind(side)
}

// LegalMoves is the pseudo-legal set of the side to move narrowed by its drawback.
func (e *Engine) LegalMoves() []shared.Move {
	side := e.pos.SideToMove()
	return e.registry.Filter(e.pos.PseudoLegalMoves(), side, e.pos)
}

// LegalMovesFrom keeps the legal moves starting on sq, in legal-set order.
func (e *Engine) LegalMovesFrom(sq shared.Square) []shared.Move {
	var out []shared.Move
	for _, m := range e.LegalMoves() {
		if m.From == sq {
			out = append(out, m)
		}
	}
	return out
}

func (e *Engine) IsLegal(m shared.Move) bool {
	return slices.Contains(e.LegalMoves(), m)
}

// CheckLegal is IsLegal for callers that want an error to return.
func (e *Engine) CheckLegal(m shared.Move) error {
	if !e.IsLegal(m) {
		return fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}
	return nil
}

func (e *Engine) KingPresent(side shared.Side) bool {
	_, ok := e.pos.KingSquare(side)
	return ok
}

// IsGameOver holds when the side to move has lost its king or has no legal move.
func (e *Engine) IsGameOver() bool {
	if !e.KingPresent(e.pos.SideToMove()) {
		return true
	}
	return len(e.LegalMoves()) == 0
}

// Winner credits the side not to move whenever the game is over, whatever the cause.
func (e *Engine) Winner() Verdict {
	if !e.IsGameOver() {
		return Ongoing
	}
	return Won(e.pos.SideToMove().Other())
}

// CanCaptureOpponentKing reports whether some legal move removes the opponent's king.
// Every probe is undone before returning. With no opponent king on the board there
// is nothing to capture.
func (e *Engine) CanCaptureOpponentKing() (bool, error) {
	opponent := e.pos.SideToMove().Other()
	if !e.KingPresent(opponent) {
		return false, nil
	}
	for _, m := range e.LegalMoves() {
		captured, err := withMove(e.pos, m, func() bool {
			return !e.KingPresent(opponent)
		})
		if err != nil {
			return false, err
		}
		if captured {
			return true, nil
		}
	}
	return false, nil
}

// withMove runs fn with m applied to pos and undoes it on every exit path,
// including a panic inside fn.
func withMove[T any](pos Position, m shared.Move, fn func() T) (result T, err error) {
	if err = pos.Apply(m); err != nil {
		return result, fmt.Errorf("apply %s: %w", m, err)
	}
	defer func() {
		if uerr := pos.UndoLast(); uerr != nil && err == nil {
			err = fmt.Errorf("undo %s: %w", m, uerr)
		}
	}()
	return fn(), nil
}
