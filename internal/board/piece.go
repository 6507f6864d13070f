package board

import "strings"

// Color represents the color of a piece or player.
type Color uint8

const (
	White Color = iota
	Black
	NoColor Color = 2
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// Char returns the FEN side-to-move letter ("w" or "b").
func (c Color) Char() byte {
	if c == Black {
		return 'b'
	}
	return 'w'
}

// PieceType represents the type of a chess piece.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType PieceType = 6
)

// promotionTypes lists what a pawn may become, in generation order.
var promotionTypes = [4]PieceType{Queen, Rook, Bishop, Knight}

// String returns the piece type name.
func (pt PieceType) String() string {
	switch pt {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// Char returns the FEN character for the piece type (lowercase).
func (pt PieceType) Char() byte {
	chars := []byte{'p', 'n', 'b', 'r', 'q', 'k', ' '}
	if pt > NoPieceType {
		return ' '
	}
	return chars[pt]
}

// SANLetter returns the uppercase letter used in SAN ("" for pawns).
func (pt PieceType) SANLetter() string {
	switch pt {
	case Knight, Bishop, Rook, Queen, King:
		return string("PNBRQK"[pt])
	default:
		return ""
	}
}

// mask is the bit the attack table uses for this piece type.
func (pt PieceType) mask() uint8 {
	return 1 << pt
}

// PieceTypeFromChar converts a piece letter of either case to a PieceType.
func PieceTypeFromChar(c byte) PieceType {
	if i := strings.IndexByte("pnbrqk", c|0x20); i >= 0 {
		return PieceType(i)
	}
	return NoPieceType
}

// Piece combines PieceType and Color into a single value.
// Encoded as: pieceType + color*6
type Piece uint8

const (
	WhitePawn   Piece = Piece(Pawn) + Piece(White)*6
	WhiteKnight Piece = Piece(Knight) + Piece(White)*6
	WhiteBishop Piece = Piece(Bishop) + Piece(White)*6
	WhiteRook   Piece = Piece(Rook) + Piece(White)*6
	WhiteQueen  Piece = Piece(Queen) + Piece(White)*6
	WhiteKing   Piece = Piece(King) + Piece(White)*6
	BlackPawn   Piece = Piece(Pawn) + Piece(Black)*6
	BlackKnight Piece = Piece(Knight) + Piece(Black)*6
	BlackBishop Piece = Piece(Bishop) + Piece(Black)*6
	BlackRook   Piece = Piece(Rook) + Piece(Black)*6
	BlackQueen  Piece = Piece(Queen) + Piece(Black)*6
	BlackKing   Piece = Piece(King) + Piece(Black)*6
	NoPiece     Piece = 12
)

// NewPiece creates a Piece from PieceType and Color.
func NewPiece(pt PieceType, c Color) Piece {
	if pt >= NoPieceType || c >= NoColor {
		return NoPiece
	}
	return Piece(pt) + Piece(c)*6
}

// Type returns the PieceType of the piece.
func (p Piece) Type() PieceType {
	if p >= NoPiece {
		return NoPieceType
	}
	return PieceType(p % 6)
}

// Color returns the Color of the piece.
func (p Piece) Color() Color {
	if p >= NoPiece {
		return NoColor
	}
	return Color(p / 6)
}

// pieceChars holds the FEN letter of every Piece, indexed by value.
const pieceChars = "PNBRQKpnbrqk"

// String returns the FEN letter of the piece: uppercase for white,
// lowercase for black, a space for NoPiece.
func (p Piece) String() string {
	if p >= NoPiece {
		return " "
	}
	return pieceChars[p : p+1]
}

// PieceFromChar converts a FEN letter to a Piece.
func PieceFromChar(c byte) Piece {
	if i := strings.IndexByte(pieceChars, c); i >= 0 {
		return Piece(i)
	}
	return NoPiece
}
