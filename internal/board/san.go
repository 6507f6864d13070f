package board

import (
	"regexp"
	"strings"
)

// moveToSAN converts a legal move to Standard Algebraic Notation. moves
// must hold the legal moves of the same piece type, for disambiguation.
func (g *Game) moveToSAN(m move, moves []move) string {
	var sb strings.Builder

	switch {
	case m.flags&FlagKingsideCastle != 0:
		sb.WriteString("O-O")
	case m.flags&FlagQueensideCastle != 0:
		sb.WriteString("O-O-O")
	default:
		if m.piece != Pawn {
			sb.WriteString(m.piece.SANLetter())
			sb.WriteString(disambiguation(m, moves))
		}

		if m.flags&(FlagCapture|FlagEPCapture) != 0 {
			if m.piece == Pawn {
				// Pawn captures include the file of origin
				sb.WriteByte('a' + byte(m.from.File()))
			}
			sb.WriteByte('x')
		}

		sb.WriteString(m.to.String())

		if m.promotion != NoPieceType {
			sb.WriteByte('=')
			sb.WriteString(m.promotion.SANLetter())
		}
	}

	// Make the move temporarily to find check and mate
	g.makeMove(m)
	if g.InCheck() {
		if g.IsCheckmate() {
			sb.WriteByte('#')
		} else {
			sb.WriteByte('+')
		}
	}
	g.undoMove()

	return sb.String()
}

// disambiguation returns the origin file, rank or square needed to tell
// m apart from other moves of the same piece type to the same square.
func disambiguation(m move, moves []move) string {
	ambiguous := false
	sameFile := false
	sameRank := false

	for _, other := range moves {
		if other.piece != m.piece || other.to != m.to || other.from == m.from {
			continue
		}
		ambiguous = true
		if other.from.File() == m.from.File() {
			sameFile = true
		}
		if other.from.Rank() == m.from.Rank() {
			sameRank = true
		}
	}

	// No ambiguity
	if !ambiguous {
		return ""
	}

	if !sameFile {
		return string('a' + byte(m.from.File()))
	}
	if !sameRank {
		return string('1' + byte(m.from.Rank()))
	}
	return m.from.String()
}

var (
	sanSuffix = regexp.MustCompile(`[+#]?[?!]*$`)

	// Both squares given: "e2e4", "Ng1-f3", "e7xe8q".
	sanCoordinates = regexp.MustCompile(`^([pnbrqkPNBRQK])?([a-h][1-8])x?-?([a-h][1-8])([qrbnQRBN])?$`)
	// Origin partly given or missing: "Nge7", "N1e2", "Ne7".
	sanPartial = regexp.MustCompile(`^([pnbrqkPNBRQK])?([a-h]?[1-8]?)x?-?([a-h][1-8])([qrbnQRBN])?$`)
	// Two squares anywhere in the text means the piece cannot be inferred.
	sanTwoSquares = regexp.MustCompile(`[a-h]\d.*[a-h]\d`)
)

// strippedSAN drops "=" and the check and annotation suffixes so that
// "e8=Q+!" compares equal to "e8Q".
func strippedSAN(s string) string {
	return sanSuffix.ReplaceAllString(strings.ReplaceAll(s, "=", ""), "")
}

// inferPieceType guesses the moving piece from the first letter of a SAN
// string. It returns NoPieceType with ok set when any piece may match, and
// ok false when the text cannot name a move at all.
func inferPieceType(san string) (pt PieceType, ok bool) {
	if san == "" {
		return NoPieceType, false
	}

	c := san[0]
	switch {
	case c >= 'a' && c <= 'h':
		if sanTwoSquares.MatchString(san) {
			return NoPieceType, true
		}
		return Pawn, true
	case c == 'o' || c == 'O' || c == '0':
		return King, true
	}

	pt = PieceTypeFromChar(c)
	return pt, pt != NoPieceType
}

// moveFromSAN finds the legal move written as san. Strict mode accepts
// only exact SAN (suffixes aside); otherwise the sloppy forms described
// on Move are tried after the exact match fails.
func (g *Game) moveFromSAN(san string, strict bool) (move, bool) {
	clean := strippedSAN(strings.TrimSpace(san))
	if !strict {
		switch clean {
		case "0-0":
			clean = "O-O"
		case "0-0-0":
			clean = "O-O-O"
		}
	}

	pt, ok := inferPieceType(clean)
	if !ok {
		return move{}, false
	}

	moves := g.generateMoves(genOptions{legal: true, square: NoSquare, piece: pt})
	for _, m := range moves {
		if clean == strippedSAN(g.moveToSAN(m, moves)) {
			return m, true
		}
	}

	if strict {
		return move{}, false
	}

	var piece, from, to, promotion string
	overlyDisambiguated := false

	if mm := sanCoordinates.FindStringSubmatch(clean); mm != nil {
		piece, from, to, promotion = mm[1], mm[2], mm[3], mm[4]
	} else if mm := sanPartial.FindStringSubmatch(clean); mm != nil {
		piece, from, to, promotion = mm[1], mm[2], mm[3], mm[4]
		overlyDisambiguated = len(from) == 1
	}
	if to == "" {
		return move{}, false
	}

	filter := pt
	if piece != "" {
		filter = PieceTypeFromChar(piece[0])
	}
	moves = g.generateMoves(genOptions{legal: true, square: NoSquare, piece: filter})

	matchesPiece := func(m move) bool {
		return piece == "" || PieceTypeFromChar(piece[0]) == m.piece
	}
	matchesPromotion := func(m move) bool {
		return promotion == "" || PieceTypeFromChar(promotion[0]) == m.promotion
	}

	// A pawn move may be written with its piece letter, as in "Pd4".
	bare := clean
	if piece == "P" || piece == "p" {
		bare = clean[1:]
	}

	for _, m := range moves {
		if m.to.String() != to {
			continue
		}

		switch {
		case from == "":
			// Only the capture mark may be missing.
			if strings.ReplaceAll(bare, "x", "") == strings.ReplaceAll(strippedSAN(g.moveToSAN(m, moves)), "x", "") {
				return m, true
			}
		case overlyDisambiguated:
			origin := m.from.String()
			if matchesPiece(m) && matchesPromotion(m) && (from == origin[:1] || from == origin[1:]) {
				return m, true
			}
		default:
			if matchesPiece(m) && matchesPromotion(m) && from == m.from.String() {
				return m, true
			}
		}
	}

	return move{}, false
}
