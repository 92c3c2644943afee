package model

import "github.com/benbeisheim/drawbackchess-backend/internal/shared"

type direction struct{ df, dr int }

var (
	rookDirs   = []direction{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirs = []direction{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	queenDirs  = append(append([]direction{}, rookDirs...), bishopDirs...)
	knightDirs = []direction{{2, 1}, {2, -1}, {-2, 1}, {-2, -1}, {1, 2}, {1, -2}, {-1, 2}, {-1, -2}}

	promotionTypes = []shared.PieceType{shared.Queen, shared.Rook, shared.Bishop, shared.Knight}
)

func step(sq shared.Square, d direction) shared.Square {
	return shared.NewSquare(sq.File()+d.df, sq.Rank()+d.dr)
}

// PseudoLegalMoves generates every move of the side to move that obeys piece
// movement, scanning squares from a1 to h8. Moves that leave the king attacked are
// kept.
func (b *Board) PseudoLegalMoves() []shared.Move {
	moves := make([]shared.Move, 0, 64)
	for sq := shared.Square(0); sq < 64; sq++ {
		p := b.squares[sq]
		if p.IsEmpty() || p.Side != b.toMove {
			continue
		}
		switch p.Type {
		case shared.Pawn:
			moves = b.pawnMoves(moves, sq, p.Side)
		case shared.Knight:
			moves = b.leaperMoves(moves, sq, p.Side, knightDirs)
		case shared.Bishop:
			moves = b.sliderMoves(moves, sq, p.Side, bishopDirs)
		case shared.Rook:
			moves = b.sliderMoves(moves, sq, p.Side, rookDirs)
		case shared.Queen:
			moves = b.sliderMoves(moves, sq, p.Side, queenDirs)
		case shared.King:
			moves = b.leaperMoves(moves, sq, p.Side, queenDirs)
			moves = b.castleMoves(moves, sq, p.Side)
		}
	}
	return moves
}

func pawnForward(side shared.Side) int {
	if side == shared.White {
		return 1
	}
	return -1
}

func (b *Board) pawnMoves(moves []shared.Move, from shared.Square, side shared.Side) []shared.Move {
	fwd := pawnForward(side)
	startRank, lastRank := 1, 7
	if side == shared.Black {
		startRank, lastRank = 6, 0
	}
	add := func(to shared.Square) {
		if to.Rank() == lastRank {
			for _, pt := range promotionTypes {
				moves = append(moves, shared.Move{From: from, To: to, Promotion: pt})
			}
			return
		}
		moves = append(moves, shared.Move{From: from, To: to})
	}

	one := step(from, direction{0, fwd})
	if one.Valid() && b.squares[one].IsEmpty() {
		add(one)
		two := step(from, direction{0, 2 * fwd})
		if from.Rank() == startRank && b.squares[two].IsEmpty() {
			add(two)
		}
	}
	for _, df := range []int{-1, 1} {
		to := step(from, direction{df, fwd})
		if !to.Valid() {
			continue
		}
		target := b.squares[to]
		if (!target.IsEmpty() && target.Side != side) || (target.IsEmpty() && to == b.enPassant) {
			add(to)
		}
	}
	return moves
}

func (b *Board) leaperMoves(moves []shared.Move, from shared.Square, side shared.Side, dirs []direction) []shared.Move {
	for _, d := range dirs {
		to := step(from, d)
		if !to.Valid() {
			continue
		}
		if target := b.squares[to]; target.IsEmpty() || target.Side != side {
			moves = append(moves, shared.Move{From: from, To: to})
		}
	}
	return moves
}

func (b *Board) sliderMoves(moves []shared.Move, from shared.Square, side shared.Side, dirs []direction) []shared.Move {
	for _, d := range dirs {
		for to := step(from, d); to.Valid(); to = step(to, d) {
			target := b.squares[to]
			if target.IsEmpty() {
				moves = append(moves, shared.Move{From: from, To: to})
				continue
			}
			if target.Side != side {
				moves = append(moves, shared.Move{From: from, To: to})
			}
			break
		}
	}
	return moves
}

// castleMoves requires the right, an empty path, the rook in its corner and the
// king's start, transit and landing squares not attacked.
func (b *Board) castleMoves(moves []shared.Move, from shared.Square, side shared.Side) []shared.Move {
	homeRank := 0
	if side == shared.Black {
		homeRank = 7
	}
	if from != shared.NewSquare(4, homeRank) {
		return moves
	}
	rook := shared.Piece{Type: shared.Rook, Side: side}
	enemy := side.Other()
	empty := func(files ...int) bool {
		for _, f := range files {
			if !b.squares[shared.NewSquare(f, homeRank)].IsEmpty() {
				return false
			}
		}
		return true
	}
	safe := func(files ...int) bool {
		for _, f := range files {
			if b.IsSquareAttacked(shared.NewSquare(f, homeRank), enemy) {
				return false
			}
		}
		return true
	}
	if b.castling&kingsideRight(side) != 0 && b.squares[shared.NewSquare(7, homeRank)] == rook &&
		empty(5, 6) && safe(4, 5, 6) {
		moves = append(moves, shared.Move{From: from, To: shared.NewSquare(6, homeRank)})
	}
	if b.castling&queensideRight(side) != 0 && b.squares[shared.NewSquare(0, homeRank)] == rook &&
		empty(1, 2, 3) && safe(4, 3, 2) {
		moves = append(moves, shared.Move{From: from, To: shared.NewSquare(2, homeRank)})
	}
	return moves
}

// IsSquareAttacked reports whether any piece of by attacks sq.
func (b *Board) IsSquareAttacked(sq shared.Square, by shared.Side) bool {
	is := func(at shared.Square, types ...shared.PieceType) bool {
		if !at.Valid() {
			return false
		}
		p := b.squares[at]
		if p.IsEmpty() || p.Side != by {
			return false
		}
		for _, t := range types {
			if p.Type == t {
				return true
			}
		}
		return false
	}
	for _, d := range rookDirs {
		to := step(sq, d)
		for to.Valid() && b.squares[to].IsEmpty() {
			to = step(to, d)
		}
		if is(to, shared.Rook, shared.Queen) {
			return true
		}
	}
	for _, d := range bishopDirs {
		to := step(sq, d)
		for to.Valid() && b.squares[to].IsEmpty() {
			to = step(to, d)
		}
		if is(to, shared.Bishop, shared.Queen) {
			return true
		}
	}
	for _, d := range knightDirs {
		if is(step(sq, d), shared.Knight) {
			return true
		}
	}
	for _, d := range queenDirs {
		if is(step(sq, d), shared.King) {
			return true
		}
	}
	// a pawn of by attacks sq from one rank behind it
	back := -pawnForward(by)
	return is(step(sq, direction{-1, back}), shared.Pawn) || is(step(sq, direction{1, back}), shared.Pawn)
}
