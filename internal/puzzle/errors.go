package puzzle

import "errors"

var (
	ErrInvalidBoardSize      = errors.New("invalid board size")
	ErrInvalidSaveData       = errors.New("invalid save data")
	ErrPreconditionViolation = errors.New("precondition violation")
	ErrIllegalMove           = errors.New("illegal move")
)
