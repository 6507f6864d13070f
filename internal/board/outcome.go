package board

// InCheck returns true if the side to move is in check.
func (g *Game) InCheck() bool {
	return g.isKingAttacked(g.turn)
}

// IsCheck is an alias of InCheck.
func (g *Game) IsCheck() bool {
	return g.InCheck()
}

// hasLegalMoves returns true if the side to move has any legal move.
func (g *Game) hasLegalMoves() bool {
	return len(g.generateMoves(allLegal())) > 0
}

// IsCheckmate returns true if the side to move is checkmated.
func (g *Game) IsCheckmate() bool {
	return g.InCheck() && !g.hasLegalMoves()
}

// IsStalemate returns true if the side to move has no legal moves but is
// not in check.
func (g *Game) IsStalemate() bool {
	return !g.InCheck() && !g.hasLegalMoves()
}

// IsInsufficientMaterial returns true when neither side can mate: bare
// kings, a single minor piece, or bishops that all stand on one color.
func (g *Game) IsInsufficientMaterial() bool {
	var counts [6]int
	var bishopsOnColor [2]int
	total := 0

	for sq := A8; sq <= H1; sq++ {
		if sq&0x88 != 0 {
			sq += 7
			continue
		}
		p := g.board[sq]
		if p == NoPiece {
			continue
		}
		counts[p.Type()]++
		total++
		if p.Type() == Bishop {
			bishopsOnColor[(sq.File()+sq.row())%2]++
		}
	}

	switch {
	case total == 2:
		// K vs K
		return true
	case total == 3 && (counts[Bishop] == 1 || counts[Knight] == 1):
		// K+minor vs K
		return true
	case total == counts[Bishop]+2:
		// K+B vs K+B with every bishop on the same color
		return bishopsOnColor[0] == 0 || bishopsOnColor[1] == 0
	}
	return false
}

// IsThreefoldRepetition returns true once the current position has
// occurred three times.
func (g *Game) IsThreefoldRepetition() bool {
	return g.positions[g.PositionKey()] >= 3
}

// IsFiftyMoves returns true once fifty moves have passed on each side
// without a capture or pawn move.
func (g *Game) IsFiftyMoves() bool {
	return g.halfMoves >= 100
}

// IsDraw returns true for the fifty-move rule, stalemate, insufficient
// material and threefold repetition.
func (g *Game) IsDraw() bool {
	return g.IsFiftyMoves() ||
		g.IsStalemate() ||
		g.IsInsufficientMaterial() ||
		g.IsThreefoldRepetition()
}

// IsGameOver returns true on checkmate, stalemate or any draw.
func (g *Game) IsGameOver() bool {
	return g.IsCheckmate() || g.IsStalemate() || g.IsDraw()
}

// Result returns the PGN result of the position as it stands: "1-0" or
// "0-1" after mate, "1/2-1/2" for draws and "*" otherwise.
func (g *Game) Result() string {
	switch {
	case g.IsCheckmate():
		if g.turn == White {
			return "0-1"
		}
		return "1-0"
	case g.IsDraw():
		return "1/2-1/2"
	default:
		return "*"
	}
}
