package board

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidFEN is matched by every FEN validation failure.
	ErrInvalidFEN = errors.New("invalid FEN")
	// ErrInvalidMove is matched when a requested move has no legal counterpart.
	ErrInvalidMove = errors.New("invalid move")
	// ErrInvalidPGN is matched by every PGN parse failure.
	ErrInvalidPGN = errors.New("invalid PGN")
)

// FENCriterion identifies which FEN validation rule failed.
type FENCriterion int

const (
	FENFieldCount FENCriterion = iota + 1
	FENMoveNumber
	FENHalfMoves
	FENEnPassant
	FENCastling
	FENSideToMove
	FENRowCount
	FENConsecutiveDigits
	FENInvalidPiece
	FENRowSum
	FENEnPassantRank
	FENMissingKing
	FENTooManyKings
	FENPawnsOnEdge
)

// FENError reports a FEN string that failed validation.
type FENError struct {
	Criterion FENCriterion
	Reason    string
}

func (e *FENError) Error() string {
	return "invalid FEN: " + e.Reason
}

// Is makes errors.Is(err, ErrInvalidFEN) hold.
func (e *FENError) Is(target error) bool {
	return target == ErrInvalidFEN
}

// MoveError reports a move request with no matching legal move.
type MoveError struct {
	Move string
}

func (e *MoveError) Error() string {
	return "invalid move: " + e.Move
}

// Is makes errors.Is(err, ErrInvalidMove) hold.
func (e *MoveError) Is(target error) bool {
	return target == ErrInvalidMove
}

// PGNError reports where PGN parsing stopped.
// Moves applied before the failing token stay applied.
type PGNError struct {
	Offset int
	Token  string
	Reason string
	Err    error
}

func (e *PGNError) Error() string {
	msg := fmt.Sprintf("invalid PGN at offset %d: %s", e.Offset, e.Reason)
	if e.Token != "" {
		msg += fmt.Sprintf(" %q", e.Token)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, such as a FEN error from the
// FEN header.
func (e *PGNError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrInvalidPGN) hold.
func (e *PGNError) Is(target error) bool {
	return target == ErrInvalidPGN
}
