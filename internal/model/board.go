package model

import (
	"errors"
	"fmt"

	"github.com/benbeisheim/drawbackchess-backend/internal/shared"
)

var (
	ErrNoPieceAt      = errors.New("no piece at from square")
	ErrNothingToUndo  = errors.New("no move to undo")
	ErrWrongSideMoved = errors.New("piece does not belong to side to move")
)

type castleRights uint8

const (
	whiteKingside castleRights = 1 << iota
	whiteQueenside
	blackKingside
	blackQueenside
)

func kingsideRight(side shared.Side) castleRights {
	if side == shared.White {
		return whiteKingside
	}
	return blackKingside
}

func queensideRight(side shared.Side) castleRights {
	if side == shared.White {
		return whiteQueenside
	}
	return blackQueenside
}

// undoRecord holds everything Apply changes that cannot be recomputed.
type undoRecord struct {
	move       shared.Move
	moved      shared.Piece
	captured   shared.Piece
	capturedSq shared.Square
	rookFrom   shared.Square
	rookTo     shared.Square
	castling   castleRights
	enPassant  shared.Square
	halfmove   int
	fullmove   int
}

// Board is a chess position that never filters moves for king safety: kings can be
// left en prise and captured like any other piece.
type Board struct {
	squares   [64]shared.Piece
	toMove    shared.Side
	castling  castleRights
	enPassant shared.Square
	halfmove  int
	fullmove  int
	history   []undoRecord
}

func NewBoard() *Board {
	b := &Board{
		toMove:    shared.White,
		castling:  whiteKingside | whiteQueenside | blackKingside | blackQueenside,
		enPassant: shared.NoSquare,
		fullmove:  1,
	}
	backRank := [8]shared.PieceType{
		shared.Rook, shared.Knight, shared.Bishop, shared.Queen,
		shared.King, shared.Bishop, shared.Knight, shared.Rook,
	}
	for file, pt := range backRank {
		b.squares[shared.NewSquare(file, 0)] = shared.Piece{Type: pt, Side: shared.White}
		b.squares[shared.NewSquare(file, 1)] = shared.Piece{Type: shared.Pawn, Side: shared.White}
		b.squares[shared.NewSquare(file, 6)] = shared.Piece{Type: shared.Pawn, Side: shared.Black}
		b.squares[shared.NewSquare(file, 7)] = shared.Piece{Type: pt, Side: shared.Black}
	}
	return b
}

// Clone copies the position without its undo history.
func (b *Board) Clone() *Board {
	c := *b
	c.history = nil
	return &c
}

// Equal compares positions, ignoring how they were reached.
func (b *Board) Equal(o *Board) bool {
	return b.squares == o.squares &&
		b.toMove == o.toMove &&
		b.castling == o.castling &&
		b.enPassant == o.enPassant &&
		b.halfmove == o.halfmove &&
		b.fullmove == o.fullmove
}

func (b *Board) PieceAt(sq shared.Square) (shared.Piece, bool) {
	if !sq.Valid() {
		return shared.NoPiece, false
	}
	p := b.squares[sq]
	return p, !p.IsEmpty()
}

func (b *Board) KingSquare(side shared.Side) (shared.Square, bool) {
	for sq := shared.Square(0); sq < 64; sq++ {
		p := b.squares[sq]
		if p.Type == shared.King && p.Side == side {
			return sq, true
		}
	}
	return shared.NoSquare, false
}

func (b *Board) SideToMove() shared.Side { return b.toMove }

func (b *Board) EnPassantSquare() shared.Square { return b.enPassant }

// Plies is the number of moves that can be undone.
func (b *Board) Plies() int { return len(b.history) }

// LastMove returns the most recently applied move.
func (b *Board) LastMove() (shared.Move, bool) {
	if len(b.history) == 0 {
		return shared.Move{}, false
	}
	return b.history[len(b.history)-1].move, true
}

// Apply plays m for the side to move without checking legality. A pawn that
// reaches the last rank without a promotion tag becomes a queen.
func (b *Board) Apply(m shared.Move) error {
	if !m.From.Valid() || !m.To.Valid() {
		return fmt.Errorf("%w: %s", shared.ErrInvalidSquare, m)
	}
	piece := b.squares[m.From]
	if piece.IsEmpty() {
		return fmt.Errorf("%w: %s", ErrNoPieceAt, m.From)
	}
	if piece.Side != b.toMove {
		return fmt.Errorf("%w: %s", ErrWrongSideMoved, m.From)
	}

	rec := undoRecord{
		move:       m,
		moved:      piece,
		captured:   b.squares[m.To],
		capturedSq: m.To,
		rookFrom:   shared.NoSquare,
		rookTo:     shared.NoSquare,
		castling:   b.castling,
		enPassant:  b.enPassant,
		halfmove:   b.halfmove,
		fullmove:   b.fullmove,
	}

	if piece.Type == shared.Pawn && m.To == b.enPassant && rec.captured.IsEmpty() && m.From.File() != m.To.File() {
		rec.capturedSq = shared.NewSquare(m.To.File(), m.From.Rank())
		rec.captured = b.squares[rec.capturedSq]
		b.squares[rec.capturedSq] = shared.NoPiece
	}

	b.squares[m.From] = shared.NoPiece
	landed := piece
	if piece.Type == shared.Pawn && (m.To.Rank() == 0 || m.To.Rank() == 7) {
		landed.Type = shared.Queen
		if m.Promotion != shared.NoPieceType {
			landed.Type = m.Promotion
		}
	}
	b.squares[m.To] = landed

	if piece.Type == shared.King && abs(m.To.File()-m.From.File()) == 2 {
		rank := m.From.Rank()
		if m.To.File() == 6 {
			rec.rookFrom, rec.rookTo = shared.NewSquare(7, rank), shared.NewSquare(5, rank)
		} else {
			rec.rookFrom, rec.rookTo = shared.NewSquare(0, rank), shared.NewSquare(3, rank)
		}
		b.squares[rec.rookTo] = b.squares[rec.rookFrom]
		b.squares[rec.rookFrom] = shared.NoPiece
	}

	b.updateCastling(piece, m, rec.captured, rec.capturedSq)

	b.enPassant = shared.NoSquare
	if piece.Type == shared.Pawn && abs(m.To.Rank()-m.From.Rank()) == 2 {
		b.enPassant = shared.NewSquare(m.From.File(), (m.From.Rank()+m.To.Rank())/2)
	}

	if piece.Type == shared.Pawn || !rec.captured.IsEmpty() {
		b.halfmove = 0
	} else {
		b.halfmove++
	}
	if b.toMove == shared.Black {
		b.fullmove++
	}
	b.toMove = b.toMove.Other()
	b.history = append(b.history, rec)
	return nil
}

func (b *Board) updateCastling(piece shared.Piece, m shared.Move, captured shared.Piece, capturedSq shared.Square) {
	if piece.Type == shared.King {
		b.castling &^= kingsideRight(piece.Side) | queensideRight(piece.Side)
	}
	clearCorner := func(sq shared.Square) {
		switch sq {
		case shared.NewSquare(0, 0):
			b.castling &^= whiteQueenside
		case shared.NewSquare(7, 0):
			b.castling &^= whiteKingside
		case shared.NewSquare(0, 7):
			b.castling &^= blackQueenside
		case shared.NewSquare(7, 7):
			b.castling &^= blackKingside
		}
	}
	if piece.Type == shared.Rook {
		clearCorner(m.From)
	}
	if captured.Type == shared.Rook {
		clearCorner(capturedSq)
	}
}

// UndoLast reverts the most recent Apply exactly.
func (b *Board) UndoLast() error {
	if len(b.history) == 0 {
		return ErrNothingToUndo
	}
	rec := b.history[len(b.history)-1]
	b.history = b.history[:len(b.history)-1]

	m := rec.move
	if rec.rookFrom != shared.NoSquare {
		b.squares[rec.rookFrom] = b.squares[rec.rookTo]
		b.squares[rec.rookTo] = shared.NoPiece
	}
	b.squares[m.From] = rec.moved
	b.squares[m.To] = shared.NoPiece
	b.squares[rec.capturedSq] = rec.captured

	b.castling = rec.castling
	b.enPassant = rec.enPassant
	b.halfmove = rec.halfmove
	b.fullmove = rec.fullmove
	b.toMove = rec.moved.Side
	return nil
}

// Notation renders m in short algebraic form against the position before m is
// played. Captures of the king are written like any other capture.
func (b *Board) Notation(m shared.Move) string {
	piece := b.squares[m.From]
	if piece.Type == shared.King && abs(m.To.File()-m.From.File()) == 2 {
		if m.To.File() == 6 {
			return "O-O"
		}
		return "O-O-O"
	}
	capture := !b.squares[m.To].IsEmpty() ||
		(piece.Type == shared.Pawn && m.To == b.enPassant && m.From.File() != m.To.File())
	s := piece.Type.Notation()
	if piece.Type == shared.Pawn && capture {
		s += string(rune('a' + m.From.File()))
	}
	if capture {
		s += "x"
	}
	s += m.To.String()
	if m.Promotion != shared.NoPieceType {
		s += "=" + m.Promotion.Notation()
	}
	return s
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// PlacedPiece is an occupied square.
type PlacedPiece struct {
	Square shared.Square `json:"square"`
	Piece  shared.Piece  `json:"piece"`
}

// Pieces lists the occupied squares from a1 to h8.
func (b *Board) Pieces() []PlacedPiece {
	out := make([]PlacedPiece, 0, 32)
	for sq := shared.Square(0); sq < 64; sq++ {
		if p := b.squares[sq]; !p.IsEmpty() {
			out = append(out, PlacedPiece{Square: sq, Piece: p})
		}
	}
	return out
}
