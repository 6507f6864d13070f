package board

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	skipValidation  bool
	preserveHeaders bool
}

// SkipValidation loads the FEN without running ValidateFEN.
func SkipValidation() LoadOption {
	return func(o *loadOptions) { o.skipValidation = true }
}

// PreserveHeaders keeps existing PGN headers in their original order.
// SetUp and FEN are rewritten in place for the loaded position.
func PreserveHeaders() LoadOption {
	return func(o *loadOptions) { o.preserveHeaders = true }
}

// padFEN fills in missing trailing fields so that "<placement> <side>" and
// similar short forms load. Fewer than two fields are left alone.
func padFEN(fen string) []string {
	tokens := strings.Fields(fen)
	if len(tokens) >= 2 && len(tokens) < 6 {
		defaults := []string{"-", "-", "0", "1"}
		tokens = append(tokens, defaults[len(tokens)-2:]...)
	}
	return tokens
}

// Load replaces the position with the one described by fen. Headers are
// dropped unless PreserveHeaders is given. On error the game is unchanged.
func (g *Game) Load(fen string, opts ...LoadOption) error {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	tokens := padFEN(fen)
	if !o.skipValidation {
		if err := ValidateFEN(strings.Join(tokens, " ")); err != nil {
			return err
		}
	} else if len(tokens) < 6 {
		return errors.WithStack(&FENError{Criterion: FENFieldCount, Reason: "must contain six space-delimited fields"})
	}

	g.clearBoard()
	if !o.preserveHeaders {
		g.headers = headers{}
	}

	sq := 0
	for i := 0; i < len(tokens[0]); i++ {
		c := tokens[0][i]
		switch {
		case c == '/':
			sq += 8
		case c >= '0' && c <= '9':
			sq += int(c - '0')
		default:
			if s := Square(sq); s.IsValid() {
				g.put(PieceFromChar(c), s)
			}
			sq++
		}
	}

	if tokens[1] == "b" {
		g.turn = Black
	}

	for _, r := range []struct {
		c     byte
		right CastlingRights
	}{
		{'K', WhiteKingSideCastle},
		{'Q', WhiteQueenSideCastle},
		{'k', BlackKingSideCastle},
		{'q', BlackQueenSideCastle},
	} {
		if strings.IndexByte(tokens[2], r.c) >= 0 {
			g.castling |= r.right
		}
	}

	g.epSquare = squareOf(tokens[3])

	if n, err := strconv.Atoi(tokens[4]); err == nil && n >= 0 {
		g.halfMoves = n
	}
	if n, err := strconv.Atoi(tokens[5]); err == nil && n > 0 {
		g.moveNumber = n
	}

	current := g.FEN()
	g.updateSetup(current)
	g.positions[keyOf(current)]++
	return nil
}

// FEN returns the FEN string for the current position. The en passant
// field is only filled in when an en passant capture is actually legal.
func (g *Game) FEN() string {
	var sb strings.Builder

	empty := 0
	for i := A8; i <= H1; i++ {
		if p := g.board[i]; p != NoPiece {
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(p.String())
		} else {
			empty++
		}

		if (i+1)&0x88 != 0 {
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
			}
			if i != H1 {
				sb.WriteByte('/')
			}
			empty = 0
			i += 8
		}
	}

	sb.WriteByte(' ')
	sb.WriteByte(g.turn.Char())
	sb.WriteByte(' ')
	sb.WriteString(g.castling.String())
	sb.WriteByte(' ')
	sb.WriteString(g.legalEnPassant().String())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(g.halfMoves))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(g.moveNumber))

	return sb.String()
}

// legalEnPassant returns the en passant target if some pawn of the side
// to move can capture onto it without leaving its king in check.
func (g *Game) legalEnPassant() Square {
	if g.epSquare == NoSquare {
		return NoSquare
	}

	us := g.turn
	victim := g.epSquare - pawnOffsets[us][0]
	if !victim.IsValid() || g.board[victim] != NewPiece(Pawn, us.Other()) || g.board[g.epSquare] != NoPiece {
		return NoSquare
	}

	for _, from := range []Square{victim + 1, victim - 1} {
		if !from.IsValid() || g.board[from] != NewPiece(Pawn, us) {
			continue
		}

		g.makeMove(move{
			color:     us,
			from:      from,
			to:        g.epSquare,
			piece:     Pawn,
			captured:  Pawn,
			promotion: NoPieceType,
			flags:     FlagEPCapture,
		})
		legal := !g.isKingAttacked(us)
		g.undoMove()

		if legal {
			return g.epSquare
		}
	}
	return NoSquare
}

// PositionKey returns the repetition key of the current position.
func (g *Game) PositionKey() PositionKey {
	return keyOf(g.FEN())
}

func fenError(c FENCriterion, reason string) error {
	return errors.WithStack(&FENError{Criterion: c, Reason: reason})
}

// ValidateFEN checks fen against the structural FEN rules and returns a
// *FENError (matching ErrInvalidFEN) describing the first rule broken.
func ValidateFEN(fen string) error {
	tokens := strings.Fields(fen)
	if len(tokens) != 6 {
		return fenError(FENFieldCount, "must contain six space-delimited fields")
	}

	if n, err := strconv.Atoi(tokens[5]); err != nil || n <= 0 {
		return fenError(FENMoveNumber, "move number must be a positive integer")
	}

	if n, err := strconv.Atoi(tokens[4]); err != nil || n < 0 {
		return fenError(FENHalfMoves, "half move counter number must be a non-negative integer")
	}

	if ep := tokens[3]; ep != "-" && (len(ep) != 2 || ep[0] < 'a' || ep[0] > 'h' || (ep[1] != '3' && ep[1] != '6')) {
		return fenError(FENEnPassant, "en-passant square is invalid")
	}

	if strings.Trim(tokens[2], "kKqQ-") != "" {
		return fenError(FENCastling, "castling availability is invalid")
	}

	if tokens[1] != "w" && tokens[1] != "b" {
		return fenError(FENSideToMove, "side-to-move is invalid")
	}

	rows := strings.Split(tokens[0], "/")
	if len(rows) != 8 {
		return fenError(FENRowCount, "piece data does not contain 8 '/'-delimited rows")
	}

	for _, row := range rows {
		sum := 0
		previousWasNumber := false
		for i := 0; i < len(row); i++ {
			c := row[i]
			if c >= '0' && c <= '9' {
				if previousWasNumber {
					return fenError(FENConsecutiveDigits, "piece data is invalid (consecutive number)")
				}
				sum += int(c - '0')
				previousWasNumber = true
				continue
			}
			if PieceFromChar(c) == NoPiece {
				return fenError(FENInvalidPiece, "piece data is invalid (invalid piece)")
			}
			sum++
			previousWasNumber = false
		}
		if sum != 8 {
			return fenError(FENRowSum, "piece data is invalid (too many squares in rank)")
		}
	}

	if ep := tokens[3]; ep != "-" && ((ep[1] == '3' && tokens[1] == "w") || (ep[1] == '6' && tokens[1] == "b")) {
		return fenError(FENEnPassantRank, "illegal en-passant square")
	}

	for _, k := range []struct {
		char byte
		name string
	}{{'K', "white"}, {'k', "black"}} {
		switch n := strings.Count(tokens[0], string(k.char)); {
		case n == 0:
			return fenError(FENMissingKing, "missing "+k.name+" king")
		case n > 1:
			return fenError(FENTooManyKings, "too many "+k.name+" kings")
		}
	}

	if strings.ContainsAny(rows[0]+rows[7], "pP") {
		return fenError(FENPawnsOnEdge, "some pawns are on the edge rows")
	}

	return nil
}
