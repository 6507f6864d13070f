package board

import "strings"

// MoveFlag describes what kind of move was played. A move may carry
// several flags (a capture that promotes has FlagCapture|FlagPromotion).
type MoveFlag uint8

const (
	FlagNormal MoveFlag = 1 << iota
	FlagCapture
	FlagBigPawn
	FlagEPCapture
	FlagPromotion
	FlagKingsideCastle
	FlagQueensideCastle
)

// flagChars are the single-letter codes, in bit order.
const flagChars = "ncbepkq"

// String returns the flag letters in bit order (e.g. "cp" for a capture
// that promotes).
func (f MoveFlag) String() string {
	var sb strings.Builder
	for i := 0; i < len(flagChars); i++ {
		if f&(1<<i) != 0 {
			sb.WriteByte(flagChars[i])
		}
	}
	return sb.String()
}

// move is the internal move record. Squares are 0x88 indices and the
// captured and promotion types are NoPieceType when absent.
type move struct {
	color     Color
	from      Square
	to        Square
	piece     PieceType
	captured  PieceType
	promotion PieceType
	flags     MoveFlag
}

// historyEntry snapshots everything makeMove changes besides the pieces.
type historyEntry struct {
	move       move
	kings      [2]Square
	turn       Color
	castling   CastlingRights
	epSquare   Square
	halfMoves  int
	moveNumber int
}

// Move is the public view of a move, with squares in algebraic notation,
// its SAN and LAN text and the FEN strings before and after it.
type Move struct {
	Color     Color
	From      string
	To        string
	Piece     PieceType
	Captured  PieceType
	Promotion PieceType
	Flags     string
	SAN       string
	LAN       string
	Before    string
	After     string
}

// IsCapture returns true for captures, en passant included.
func (m Move) IsCapture() bool {
	return strings.ContainsAny(m.Flags, "ce")
}

// IsPromotion returns true if the move promotes a pawn.
func (m Move) IsPromotion() bool {
	return strings.Contains(m.Flags, "p")
}

// IsEnPassant returns true for en passant captures.
func (m Move) IsEnPassant() bool {
	return strings.Contains(m.Flags, "e")
}

// IsBigPawn returns true for two-square pawn advances.
func (m Move) IsBigPawn() bool {
	return strings.Contains(m.Flags, "b")
}

// IsKingsideCastle returns true for O-O.
func (m Move) IsKingsideCastle() bool {
	return strings.Contains(m.Flags, "k")
}

// IsQueensideCastle returns true for O-O-O.
func (m Move) IsQueensideCastle() bool {
	return strings.Contains(m.Flags, "q")
}

// String returns the SAN of the move.
func (m Move) String() string {
	return m.SAN
}

// lan returns the long algebraic (UCI) form of m, e.g. "e7e8q".
func (m move) lan() string {
	s := m.from.String() + m.to.String()
	if m.promotion != NoPieceType {
		s += string(m.promotion.Char())
	}
	return s
}
