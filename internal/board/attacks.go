package board

// Direction offsets on the 0x88 board. Moving one rank toward the eighth
// rank subtracts 16.
var pawnOffsets = [2][4]Square{
	White: {-16, -32, -17, -15},
	Black: {16, 32, 17, 15},
}

var pieceOffsets = [6][]Square{
	Knight: {-18, -33, -31, -14, 18, 33, 31, 14},
	Bishop: {-17, -15, 17, 15},
	Rook:   {-16, 1, 16, -1},
	Queen:  {-17, -16, -15, 1, 17, 16, 15, -1},
	King:   {-17, -16, -15, 1, 17, 16, 15, -1},
}

// Attack lookup tables, indexed by (attacker - target) + diffOffset.
// attackMask holds one bit per piece type that can attack across that
// difference; rayStep holds the step a slider walks from attacker to target.
const diffOffset = 119

var (
	attackMask [240]uint8
	rayStep    [240]Square
)

func init() {
	initAttackTables()
}

func initAttackTables() {
	for _, d := range pieceOffsets[Knight] {
		attackMask[diffOffset-d] |= Knight.mask()
	}

	for _, d := range pieceOffsets[Queen] {
		diagonal := d == 15 || d == -15 || d == 17 || d == -17
		for dist := Square(1); dist <= 7; dist++ {
			idx := diffOffset - d*dist
			rayStep[idx] = d

			mask := Queen.mask()
			if diagonal {
				mask |= Bishop.mask()
			} else {
				mask |= Rook.mask()
			}
			if dist == 1 {
				mask |= King.mask()
				if diagonal {
					mask |= Pawn.mask()
				}
			}
			attackMask[idx] |= mask
		}
	}
}

// isAttacked reports whether any piece of color by attacks sq.
func (g *Game) isAttacked(by Color, sq Square) bool {
	if !sq.IsValid() {
		return false
	}

	for i := A8; i <= H1; i++ {
		if i&0x88 != 0 {
			i += 7
			continue
		}
		if p := g.board[i]; p != NoPiece && p.Color() == by && g.attacks(i, sq) {
			return true
		}
	}

	return false
}

// attacks reports whether the piece standing on from attacks sq.
func (g *Game) attacks(from, sq Square) bool {
	p := g.board[from]
	diff := from - sq
	if p == NoPiece || diff == 0 {
		return false
	}
	idx := diff + diffOffset

	pt := p.Type()
	if attackMask[idx]&pt.mask() == 0 {
		return false
	}

	switch pt {
	case Pawn:
		// White pawns attack toward lower indices.
		return (diff > 0) == (p.Color() == White)
	case Knight, King:
		return true
	}

	step := rayStep[idx]
	for j := from + step; j != sq; j += step {
		if g.board[j] != NoPiece {
			return false
		}
	}
	return true
}

// isKingAttacked reports whether c's king is in check. A side without a
// king is never in check.
func (g *Game) isKingAttacked(c Color) bool {
	sq := g.kings[c]
	if sq == NoSquare {
		return false
	}
	return g.isAttacked(c.Other(), sq)
}

// IsAttacked returns true if square is attacked by any piece of color by.
func (g *Game) IsAttacked(by Color, square string) bool {
	return g.isAttacked(by, squareOf(square))
}

// Attackers returns the squares holding pieces of color by that attack square.
func (g *Game) Attackers(by Color, square string) []string {
	target := squareOf(square)
	if !target.IsValid() {
		return nil
	}

	var out []string
	for i := A8; i <= H1; i++ {
		if i&0x88 != 0 {
			i += 7
			continue
		}
		if p := g.board[i]; p != NoPiece && p.Color() == by && g.attacks(i, target) {
			out = append(out, i.String())
		}
	}
	return out
}
