package board

// genOptions narrows move generation.
type genOptions struct {
	legal  bool
	square Square    // NoSquare for every square
	piece  PieceType // NoPieceType for every piece type
}

func allLegal() genOptions {
	return genOptions{legal: true, square: NoSquare, piece: NoPieceType}
}

// MoveOption filters the moves returned by Moves, MovesVerbose and
// GenerateMoves.
type MoveOption func(*genOptions)

// FromSquare restricts the result to moves starting on square. An invalid
// square yields no moves.
func FromSquare(square string) MoveOption {
	return func(o *genOptions) {
		sq, err := ParseSquare(square)
		if err != nil {
			sq = Square(-2)
		}
		o.square = sq
	}
}

// OfPiece restricts the result to moves of the given piece type.
func OfPiece(pt PieceType) MoveOption {
	return func(o *genOptions) { o.piece = pt }
}

// PseudoLegal includes moves that leave the mover's king in check.
func PseudoLegal() MoveOption {
	return func(o *genOptions) { o.legal = false }
}

func newGenOptions(opts []MoveOption) genOptions {
	o := allLegal()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

var secondRow = [2]int{White: 6, Black: 1}

// generateMoves produces the moves of the side to move, in board order.
func (g *Game) generateMoves(o genOptions) []move {
	us := g.turn
	them := us.Other()
	moves := make([]move, 0, 48)

	first, last := A8, H1
	if o.square != NoSquare {
		if !o.square.IsValid() {
			return moves
		}
		first, last = o.square, o.square
	}

	for from := first; from <= last; from++ {
		if from&0x88 != 0 {
			from += 7
			continue
		}

		p := g.board[from]
		if p == NoPiece || p.Color() != us {
			continue
		}
		pt := p.Type()
		if o.piece != NoPieceType && o.piece != pt {
			continue
		}

		if pt == Pawn {
			offsets := pawnOffsets[us]

			// Single push, then double push from the second rank.
			if to := from + offsets[0]; to.IsValid() && g.board[to] == NoPiece {
				moves = g.addMove(moves, us, from, to, Pawn, NoPieceType, FlagNormal)

				if to2 := from + offsets[1]; secondRow[us] == from.row() && g.board[to2] == NoPiece {
					moves = g.addMove(moves, us, from, to2, Pawn, NoPieceType, FlagBigPawn)
				}
			}

			for _, off := range offsets[2:] {
				to := from + off
				if !to.IsValid() {
					continue
				}
				if target := g.board[to]; target != NoPiece && target.Color() == them {
					moves = g.addMove(moves, us, from, to, Pawn, target.Type(), FlagCapture)
				} else if to == g.epSquare {
					moves = g.addMove(moves, us, from, to, Pawn, Pawn, FlagEPCapture)
				}
			}
			continue
		}

		for _, off := range pieceOffsets[pt] {
			to := from
			for {
				to += off
				if !to.IsValid() {
					break
				}

				target := g.board[to]
				if target == NoPiece {
					moves = g.addMove(moves, us, from, to, pt, NoPieceType, FlagNormal)
				} else {
					if target.Color() == them {
						moves = g.addMove(moves, us, from, to, pt, target.Type(), FlagCapture)
					}
					break
				}

				if pt == Knight || pt == King {
					break
				}
			}
		}
	}

	if o.piece == NoPieceType || o.piece == King {
		if king := g.kings[us]; king != NoSquare && (o.square == NoSquare || o.square == king) {
			moves = g.generateCastlingMoves(moves, us, king)
		}
	}

	if !o.legal {
		return moves
	}

	legal := moves[:0]
	for _, m := range moves {
		g.makeMove(m)
		if !g.isKingAttacked(us) {
			legal = append(legal, m)
		}
		g.undoMove()
	}
	return legal
}

// generateCastlingMoves adds O-O and O-O-O when the rights are held, the
// rook is home, the squares between are empty and the king neither
// starts, passes through nor lands on an attacked square.
func (g *Game) generateCastlingMoves(moves []move, us Color, king Square) []move {
	them := us.Other()

	if g.castling.CanCastle(us, true) {
		f, gsq, rook := king+1, king+2, king+3
		if rook.IsValid() && g.board[rook] == NewPiece(Rook, us) &&
			g.board[f] == NoPiece && g.board[gsq] == NoPiece &&
			!g.isAttacked(them, king) && !g.isAttacked(them, f) && !g.isAttacked(them, gsq) {
			moves = g.addMove(moves, us, king, gsq, King, NoPieceType, FlagKingsideCastle)
		}
	}

	if g.castling.CanCastle(us, false) {
		d, c, b, rook := king-1, king-2, king-3, king-4
		if rook.IsValid() && g.board[rook] == NewPiece(Rook, us) &&
			g.board[d] == NoPiece && g.board[c] == NoPiece && g.board[b] == NoPiece &&
			!g.isAttacked(them, king) && !g.isAttacked(them, d) && !g.isAttacked(them, c) {
			moves = g.addMove(moves, us, king, c, King, NoPieceType, FlagQueensideCastle)
		}
	}

	return moves
}

// addMove appends a move, expanding pawn moves to the last rank into one
// move per promotion piece.
func (g *Game) addMove(moves []move, us Color, from, to Square, pt, captured PieceType, flags MoveFlag) []move {
	if pt == Pawn && (to.row() == 0 || to.row() == 7) {
		for _, promo := range promotionTypes {
			moves = append(moves, move{
				color:     us,
				from:      from,
				to:        to,
				piece:     pt,
				captured:  captured,
				promotion: promo,
				flags:     flags | FlagPromotion,
			})
		}
		return moves
	}

	return append(moves, move{
		color:     us,
		from:      from,
		to:        to,
		piece:     pt,
		captured:  captured,
		promotion: NoPieceType,
		flags:     flags,
	})
}

// makeMove plays m, pushing a snapshot for undoMove.
func (g *Game) makeMove(m move) {
	us := g.turn
	them := us.Other()

	g.history = append(g.history, historyEntry{
		move:       m,
		kings:      g.kings,
		turn:       us,
		castling:   g.castling,
		epSquare:   g.epSquare,
		halfMoves:  g.halfMoves,
		moveNumber: g.moveNumber,
	})

	g.board[m.to] = g.board[m.from]
	g.board[m.from] = NoPiece

	if m.flags&FlagEPCapture != 0 {
		g.board[m.to-pawnOffsets[us][0]] = NoPiece
	}

	if m.promotion != NoPieceType {
		g.board[m.to] = NewPiece(m.promotion, us)
	}

	if m.piece == King {
		g.kings[us] = m.to

		switch {
		case m.flags&FlagKingsideCastle != 0:
			g.board[m.to-1] = g.board[m.to+1]
			g.board[m.to+1] = NoPiece
		case m.flags&FlagQueensideCastle != 0:
			g.board[m.to+1] = g.board[m.to-2]
			g.board[m.to-2] = NoPiece
		}

		g.castling &^= bothRights(us)
	}

	if g.castling&bothRights(us) != 0 {
		for _, home := range rookHomes[us] {
			if m.from == home.square {
				g.castling &^= home.right
				break
			}
		}
	}

	if g.castling&bothRights(them) != 0 {
		for _, home := range rookHomes[them] {
			if m.to == home.square {
				g.castling &^= home.right
				break
			}
		}
	}

	if m.flags&FlagBigPawn != 0 {
		g.epSquare = m.to - pawnOffsets[us][0]
	} else {
		g.epSquare = NoSquare
	}

	if m.piece == Pawn || m.flags&(FlagCapture|FlagEPCapture) != 0 {
		g.halfMoves = 0
	} else {
		g.halfMoves++
	}

	if us == Black {
		g.moveNumber++
	}

	g.turn = them
}

// undoMove takes back the last move. It returns false when there is no
// history.
func (g *Game) undoMove() (move, bool) {
	if len(g.history) == 0 {
		return move{}, false
	}

	h := g.history[len(g.history)-1]
	g.history = g.history[:len(g.history)-1]

	m := h.move
	g.kings = h.kings
	g.turn = h.turn
	g.castling = h.castling
	g.epSquare = h.epSquare
	g.halfMoves = h.halfMoves
	g.moveNumber = h.moveNumber

	us := g.turn
	them := us.Other()

	g.board[m.from] = NewPiece(m.piece, us)
	g.board[m.to] = NoPiece

	switch {
	case m.flags&FlagEPCapture != 0:
		g.board[m.to-pawnOffsets[us][0]] = NewPiece(Pawn, them)
	case m.captured != NoPieceType:
		g.board[m.to] = NewPiece(m.captured, them)
	}

	switch {
	case m.flags&FlagKingsideCastle != 0:
		g.board[m.to+1] = g.board[m.to-1]
		g.board[m.to-1] = NoPiece
	case m.flags&FlagQueensideCastle != 0:
		g.board[m.to-2] = g.board[m.to+1]
		g.board[m.to+1] = NoPiece
	}

	return m, true
}

// Moves returns the SAN of every legal move, filtered by opts.
func (g *Game) Moves(opts ...MoveOption) []string {
	o := newGenOptions(opts)
	moves := g.generateMoves(o)

	// Disambiguation needs every legal move of the same piece type.
	rivals := moves
	if o.square != NoSquare || !o.legal {
		rivals = g.generateMoves(genOptions{legal: true, square: NoSquare, piece: o.piece})
	}

	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = g.moveToSAN(m, rivals)
	}
	return out
}

// MovesVerbose returns every legal move with its full description,
// filtered by opts.
func (g *Game) MovesVerbose(opts ...MoveOption) []Move {
	o := newGenOptions(opts)
	moves := g.generateMoves(o)
	out := make([]Move, len(moves))
	for i, m := range moves {
		out[i] = g.prettyMove(m)
	}
	return out
}

// GenerateMoves returns verbose moves like MovesVerbose. Pass PseudoLegal
// to skip the check filter.
func (g *Game) GenerateMoves(opts ...MoveOption) []Move {
	return g.MovesVerbose(opts...)
}

// Perft counts the leaf nodes of the legal move tree depth plies deep.
func (g *Game) Perft(depth int) int {
	if depth <= 0 {
		return 1
	}
	moves := g.generateMoves(genOptions{legal: false, square: NoSquare, piece: NoPieceType})
	us := g.turn
	nodes := 0

	for _, m := range moves {
		g.makeMove(m)
		if !g.isKingAttacked(us) {
			if depth-1 > 0 {
				nodes += g.Perft(depth - 1)
			} else {
				nodes++
			}
		}
		g.undoMove()
	}

	return nodes
}
