package variant

import "errors"

var (
	// ErrInvalidDrawback reports a drawback kind outside the recognised set.
	ErrInvalidDrawback = errors.New("variant: invalid drawback")
	// ErrIllegalMove reports a move that is not in the legal set for the side to move.
	ErrIllegalMove = errors.New("variant: illegal move attempted")
)
