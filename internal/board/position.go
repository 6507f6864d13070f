package board

import "strings"

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := ""
	if cr&WhiteKingSideCastle != 0 {
		s += "K"
	}
	if cr&WhiteQueenSideCastle != 0 {
		s += "Q"
	}
	if cr&BlackKingSideCastle != 0 {
		s += "k"
	}
	if cr&BlackQueenSideCastle != 0 {
		s += "q"
	}
	return s
}

// CanCastle returns true if the given side can castle in the given direction.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	return cr&castleRight(c, kingSide) != 0
}

func castleRight(c Color, kingSide bool) CastlingRights {
	if c == White {
		if kingSide {
			return WhiteKingSideCastle
		}
		return WhiteQueenSideCastle
	}
	if kingSide {
		return BlackKingSideCastle
	}
	return BlackQueenSideCastle
}

// bothRights returns the kingside and queenside rights of c.
func bothRights(c Color) CastlingRights {
	return castleRight(c, true) | castleRight(c, false)
}

// rookHome is a rook's starting square and the right it guards.
type rookHome struct {
	square Square
	right  CastlingRights
}

var rookHomes = [2][2]rookHome{
	White: {{A1, WhiteQueenSideCastle}, {H1, WhiteKingSideCastle}},
	Black: {{A8, BlackQueenSideCastle}, {H8, BlackKingSideCastle}},
}

var kingHomes = [2]Square{White: E1, Black: E8}

// PositionKey identifies a position for repetition counting and comments:
// the placement, side-to-move, castling and en passant fields of the FEN.
type PositionKey string

// keyOf derives the PositionKey of a FEN string.
func keyOf(fen string) PositionKey {
	fields := strings.Fields(fen)
	if len(fields) > 4 {
		fields = fields[:4]
	}
	return PositionKey(strings.Join(fields, " "))
}

// Game is a chess game: the current position plus the move history,
// PGN headers, comments and repetition counts needed to replay and
// export it. A Game is not safe for concurrent use.
type Game struct {
	board      [128]Piece
	turn       Color
	kings      [2]Square
	castling   CastlingRights
	epSquare   Square
	halfMoves  int
	moveNumber int

	history   []historyEntry
	headers   headers
	comments  map[PositionKey]string
	positions map[PositionKey]int
}

// NewGame returns a game set to the standard starting position.
func NewGame() *Game {
	g := &Game{}
	if err := g.Load(StartFEN); err != nil {
		panic(err)
	}
	return g
}

// NewGameFromFEN returns a game loaded from fen.
func NewGameFromFEN(fen string, opts ...LoadOption) (*Game, error) {
	g := &Game{}
	g.Clear(false)
	if err := g.Load(fen, opts...); err != nil {
		return nil, err
	}
	return g, nil
}

// Clear empties the board and forgets history, comments and repetition
// counts. With preserveHeaders only the SetUp and FEN headers are dropped.
func (g *Game) Clear(preserveHeaders bool) {
	g.clearBoard()
	if preserveHeaders {
		g.headers.remove("SetUp")
		g.headers.remove("FEN")
	} else {
		g.headers = headers{}
	}
}

// clearBoard empties the board and history but leaves headers alone.
func (g *Game) clearBoard() {
	for i := range g.board {
		g.board[i] = NoPiece
	}
	g.kings = [2]Square{NoSquare, NoSquare}
	g.turn = White
	g.castling = NoCastling
	g.epSquare = NoSquare
	g.halfMoves = 0
	g.moveNumber = 1
	g.history = nil
	g.comments = make(map[PositionKey]string)
	g.positions = make(map[PositionKey]int)
}

// Reset loads the standard starting position, dropping all headers.
func (g *Game) Reset() {
	if err := g.Load(StartFEN); err != nil {
		panic(err)
	}
}

// Get returns the piece on square, or NoPiece for empty or invalid squares.
func (g *Game) Get(square string) Piece {
	sq := squareOf(square)
	if sq == NoSquare {
		return NoPiece
	}
	return g.board[sq]
}

// Put places p on square. It refuses invalid pieces and squares, and a
// second king of the same color. Castling and en passant rights that the
// new placement invalidates are dropped.
func (g *Game) Put(p Piece, square string) bool {
	if !g.put(p, squareOf(square)) {
		return false
	}
	g.updateCastlingRights()
	g.updateEnPassantSquare()
	g.updateSetup(g.FEN())
	return true
}

func (g *Game) put(p Piece, sq Square) bool {
	if p.Type() == NoPieceType || !sq.IsValid() {
		return false
	}

	c := p.Color()
	if p.Type() == King && g.kings[c] != NoSquare && g.kings[c] != sq {
		return false
	}

	if cur := g.board[sq]; cur != NoPiece && cur.Type() == King {
		g.kings[cur.Color()] = NoSquare
	}

	g.board[sq] = p
	if p.Type() == King {
		g.kings[c] = sq
	}
	return true
}

// Remove takes the piece off square and returns it (NoPiece if the square
// was empty or invalid).
func (g *Game) Remove(square string) Piece {
	sq := squareOf(square)
	if sq == NoSquare {
		return NoPiece
	}

	p := g.board[sq]
	g.board[sq] = NoPiece
	if p != NoPiece && p.Type() == King {
		g.kings[p.Color()] = NoSquare
	}

	g.updateCastlingRights()
	g.updateEnPassantSquare()
	g.updateSetup(g.FEN())
	return p
}

// updateCastlingRights drops every right whose king or rook has left its
// home square.
func (g *Game) updateCastlingRights() {
	for _, c := range []Color{White, Black} {
		if g.board[kingHomes[c]] != NewPiece(King, c) {
			g.castling &^= bothRights(c)
			continue
		}
		for _, home := range rookHomes[c] {
			if g.board[home.square] != NewPiece(Rook, c) {
				g.castling &^= home.right
			}
		}
	}
}

// updateEnPassantSquare drops the en passant target unless the pawn that
// just double-stepped is in place and a friendly pawn stands beside it.
func (g *Game) updateEnPassantSquare() {
	if g.epSquare == NoSquare {
		return
	}

	us := g.turn
	them := us.Other()
	start := g.epSquare + pawnOffsets[us][0]
	current := g.epSquare - pawnOffsets[us][0]

	if !start.IsValid() || !current.IsValid() ||
		g.board[start] != NoPiece ||
		g.board[g.epSquare] != NoPiece ||
		g.board[current] != NewPiece(Pawn, them) {
		g.epSquare = NoSquare
		return
	}

	for _, sq := range []Square{current + 1, current - 1} {
		if sq.IsValid() && g.board[sq] == NewPiece(Pawn, us) {
			return
		}
	}
	g.epSquare = NoSquare
}

// updateSetup keeps the SetUp and FEN headers in step with a position
// that was set up rather than played into.
func (g *Game) updateSetup(fen string) {
	if len(g.history) > 0 {
		return
	}
	if fen != StartFEN {
		g.headers.set("SetUp", "1")
		g.headers.set("FEN", fen)
		return
	}
	g.headers.remove("SetUp")
	g.headers.remove("FEN")
}

// Turn returns the side to move.
func (g *Game) Turn() Color {
	return g.turn
}

// MoveNumber returns the full move number.
func (g *Game) MoveNumber() int {
	return g.moveNumber
}

// HalfMoveClock returns the number of half moves since the last capture
// or pawn move.
func (g *Game) HalfMoveClock() int {
	return g.halfMoves
}

// EnPassantSquare returns the en passant target in algebraic notation, or
// "-" when there is none.
func (g *Game) EnPassantSquare() string {
	return g.epSquare.String()
}

// CastlingRights returns the castling rights of both sides.
func (g *Game) CastlingRights() CastlingRights {
	return g.castling
}

// SetCastlingRights grants or revokes c's castling rights. Rights that the
// current placement cannot support are dropped again; the result reports
// whether the position ended up with exactly the requested rights.
func (g *Game) SetCastlingRights(c Color, kingSide, queenSide bool) bool {
	for _, side := range []struct {
		kingSide bool
		want     bool
	}{{true, kingSide}, {false, queenSide}} {
		if side.want {
			g.castling |= castleRight(c, side.kingSide)
		} else {
			g.castling &^= castleRight(c, side.kingSide)
		}
	}
	g.updateCastlingRights()
	g.updateSetup(g.FEN())

	return g.castling.CanCastle(c, true) == kingSide && g.castling.CanCastle(c, false) == queenSide
}

// SquareColor returns "light" or "dark", or "" for an invalid square.
func (g *Game) SquareColor(square string) string {
	sq := squareOf(square)
	if sq == NoSquare {
		return ""
	}
	if sq.IsLight() {
		return "light"
	}
	return "dark"
}

// Board returns the 8x8 placement, eighth rank first. Empty squares hold
// NoPiece.
func (g *Game) Board() [8][8]Piece {
	var out [8][8]Piece
	for row := 0; row < 8; row++ {
		for file := 0; file < 8; file++ {
			out[row][file] = g.board[row<<4|file]
		}
	}
	return out
}

// String returns a string representation of the board.
func (g *Game) String() string {
	var sb strings.Builder
	sb.WriteString("   +------------------------+\n")
	for row := 0; row < 8; row++ {
		sb.WriteString(" ")
		sb.WriteByte(byte('8' - row))
		sb.WriteString(" |")
		for file := 0; file < 8; file++ {
			p := g.board[row<<4|file]
			if p == NoPiece {
				sb.WriteString(" . ")
			} else {
				sb.WriteString(" " + p.String() + " ")
			}
		}
		sb.WriteString("|\n")
	}
	sb.WriteString("   +------------------------+\n")
	sb.WriteString("     a  b  c  d  e  f  g  h\n")
	return sb.String()
}
