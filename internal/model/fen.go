package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/benbeisheim/drawbackchess-backend/internal/shared"
	"github.com/notnil/chess"
)

const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var (
	ErrInvalidFEN = errors.New("invalid FEN")
	ErrInvalidPGN = errors.New("invalid PGN")
)

// NewBoardFromFEN decodes fen with notnil/chess. Positions without kings are
// accepted since a captured king is a normal state in this variant.
func NewBoardFromFEN(fen string) (*Board, error) {
	var pos chess.Position
	if err := pos.UnmarshalText([]byte(strings.TrimSpace(fen))); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	b := &Board{
		toMove:    fromChessColor(pos.Turn()),
		enPassant: shared.NoSquare,
		fullmove:  1,
	}
	for sq, p := range pos.Board().SquareMap() {
		b.squares[shared.Square(sq)] = shared.Piece{Type: fromChessPieceType(p.Type()), Side: fromChessColor(p.Color())}
	}
	rights := pos.CastleRights()
	for _, side := range []shared.Side{shared.White, shared.Black} {
		if rights.CanCastle(toChessColor(side), chess.KingSide) {
			b.castling |= kingsideRight(side)
		}
		if rights.CanCastle(toChessColor(side), chess.QueenSide) {
			b.castling |= queensideRight(side)
		}
	}
	if ep := pos.EnPassantSquare(); ep != chess.NoSquare {
		b.enPassant = shared.Square(ep)
	}
	// move counters are not exposed by chess.Position
	fields := strings.Fields(fen)
	if len(fields) >= 6 {
		if n, err := strconv.Atoi(fields[4]); err == nil {
			b.halfmove = n
		}
		if n, err := strconv.Atoi(fields[5]); err == nil && n > 0 {
			b.fullmove = n
		}
	}
	return b, nil
}

// FEN encodes the position in Forsyth-Edwards notation.
func (b *Board) FEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			p := b.squares[shared.NewSquare(file, rank)]
			if p.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteByte(pieceLetter(p))
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	sb.WriteByte(' ')
	sb.WriteByte(b.toMove.String()[0])
	sb.WriteByte(' ')
	castling := ""
	for _, c := range []struct {
		right  castleRights
		letter string
	}{{whiteKingside, "K"}, {whiteQueenside, "Q"}, {blackKingside, "k"}, {blackQueenside, "q"}} {
		if b.castling&c.right != 0 {
			castling += c.letter
		}
	}
	if castling == "" {
		castling = "-"
	}
	sb.WriteString(castling)
	sb.WriteByte(' ')
	sb.WriteString(b.enPassant.String())
	fmt.Fprintf(&sb, " %d %d", b.halfmove, b.fullmove)
	return sb.String()
}

func pieceLetter(p shared.Piece) byte {
	letter := p.Type.Notation()
	if p.Type == shared.Pawn {
		letter = "P"
	}
	if p.Side == shared.Black {
		return strings.ToLower(letter)[0]
	}
	return letter[0]
}

// ImportPGN decodes a PGN game into its initial position and mainline. The
// mainline is replayed on a copy of the board so a returned game always applies.
func ImportPGN(pgn string) (*Board, []shared.Move, error) {
	opt, err := chess.PGN(strings.NewReader(pgn))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidPGN, err)
	}
	game := chess.NewGame(opt)
	positions := game.Positions()
	if len(positions) == 0 {
		return nil, nil, fmt.Errorf("%w: no positions", ErrInvalidPGN)
	}
	start, err := NewBoardFromFEN(positions[0].String())
	if err != nil {
		return nil, nil, err
	}
	replay := start.Clone()
	moves := make([]shared.Move, 0, len(game.Moves()))
	for _, mv := range game.Moves() {
		m := shared.Move{
			From:      shared.Square(mv.S1()),
			To:        shared.Square(mv.S2()),
			Promotion: fromChessPieceType(mv.Promo()),
		}
		if err := replay.Apply(m); err != nil {
			return nil, nil, fmt.Errorf("%w: replay %s: %v", ErrInvalidPGN, m, err)
		}
		moves = append(moves, m)
	}
	return start, moves, nil
}

func fromChessColor(c chess.Color) shared.Side {
	if c == chess.Black {
		return shared.Black
	}
	return shared.White
}

func toChessColor(s shared.Side) chess.Color {
	if s == shared.Black {
		return chess.Black
	}
	return chess.White
}

func fromChessPieceType(t chess.PieceType) shared.PieceType {
	switch t {
	case chess.King:
		return shared.King
	case chess.Queen:
		return shared.Queen
	case chess.Rook:
		return shared.Rook
	case chess.Bishop:
		return shared.Bishop
	case chess.Knight:
		return shared.Knight
	case chess.Pawn:
		return shared.Pawn
	}
	return shared.NoPieceType
}
