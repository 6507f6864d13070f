// Package board implements a rules-complete chess game on a 0x88 board:
// move generation, make/undo with history, outcome detection and the
// FEN, SAN and PGN text formats.
package board

import "github.com/pkg/errors"

// Square is an index into the 0x88 board.
// The board has 8 rows of 16 slots; only indices with sq&0x88 == 0 are real
// squares. Row 0 is the eighth rank, so A8=0x00 and H1=0x77.
type Square int

// Eighth rank.
const (
	A8 Square = iota + 0x00
	B8
	C8
	D8
	E8
	F8
	G8
	H8
)

// Seventh rank.
const (
	A7 Square = iota + 0x10
	B7
	C7
	D7
	E7
	F7
	G7
	H7
)

// Sixth rank.
const (
	A6 Square = iota + 0x20
	B6
	C6
	D6
	E6
	F6
	G6
	H6
)

// Fifth rank.
const (
	A5 Square = iota + 0x30
	B5
	C5
	D5
	E5
	F5
	G5
	H5
)

// Fourth rank.
const (
	A4 Square = iota + 0x40
	B4
	C4
	D4
	E4
	F4
	G4
	H4
)

// Third rank.
const (
	A3 Square = iota + 0x50
	B3
	C3
	D3
	E3
	F3
	G3
	H3
)

// Second rank.
const (
	A2 Square = iota + 0x60
	B2
	C2
	D2
	E2
	F2
	G2
	H2
)

// First rank.
const (
	A1 Square = iota + 0x70
	B1
	C1
	D1
	E1
	F1
	G1
	H1
)

// NoSquare marks an absent square (no en passant target, no king).
const NoSquare Square = -1

// IsValid returns true if the square is on the board.
func (sq Square) IsValid() bool {
	return sq >= 0 && sq < 128 && sq&0x88 == 0
}

// File returns the file of the square (0-7, where 0=a, 7=h).
func (sq Square) File() int {
	return int(sq) & 0xf
}

// Rank returns the rank of the square (0-7, where 0=1, 7=8).
func (sq Square) Rank() int {
	return 7 - sq.row()
}

// row is the 0x88 row, counted from the eighth rank.
func (sq Square) row() int {
	return int(sq) >> 4
}

// IsLight returns true for light squares (a8, h1, ...).
func (sq Square) IsLight() bool {
	return (sq.File()+sq.row())%2 == 0
}

// String returns the algebraic notation for the square (e.g., "e4").
func (sq Square) String() string {
	if !sq.IsValid() {
		return "-"
	}
	return string([]byte{'a' + byte(sq.File()), '1' + byte(sq.Rank())})
}

// NewSquare creates a square from file and rank (0-indexed, rank 0 is the first rank).
func NewSquare(file, rank int) Square {
	return Square((7-rank)<<4 | file)
}

// ParseSquare parses algebraic notation (e.g., "e4") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, errors.Errorf("invalid square: %q", s)
	}

	file := int(s[0]) - 'a'
	rank := int(s[1]) - '1'

	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare, errors.Errorf("invalid square: %q", s)
	}

	return NewSquare(file, rank), nil
}

// squareOf parses a square and maps every failure to NoSquare.
func squareOf(s string) Square {
	sq, err := ParseSquare(s)
	if err != nil {
		return NoSquare
	}
	return sq
}
