package board

import (
	"fmt"

	"github.com/pkg/errors"
)

// prettyMove builds the public description of m, which must be legal in
// the current position.
func (g *Game) prettyMove(m move) Move {
	pm := Move{
		Color:     m.color,
		From:      m.from.String(),
		To:        m.to.String(),
		Piece:     m.piece,
		Captured:  m.captured,
		Promotion: m.promotion,
		Flags:     m.flags.String(),
		LAN:       m.lan(),
	}

	pm.SAN = g.moveToSAN(m, g.generateMoves(genOptions{legal: true, square: NoSquare, piece: m.piece}))
	pm.Before = g.FEN()
	g.makeMove(m)
	pm.After = g.FEN()
	g.undoMove()

	return pm
}

// commit plays a legal move and records the resulting position.
func (g *Game) commit(m move) Move {
	pm := g.prettyMove(m)
	g.makeMove(m)
	g.positions[keyOf(pm.After)]++
	return pm
}

// Move plays a move given in SAN. Common sloppy forms are accepted as
// well: long algebraic ("e2e4", "e7e8q"), over-disambiguated SAN
// ("Nge7"), missing capture marks and "0-0" castling.
func (g *Game) Move(san string) (Move, error) {
	m, ok := g.moveFromSAN(san, false)
	if !ok {
		return Move{}, errors.WithStack(&MoveError{Move: san})
	}
	return g.commit(m), nil
}

// MoveStrict plays a move given in exact SAN. Check and annotation
// suffixes are optional.
func (g *Game) MoveStrict(san string) (Move, error) {
	m, ok := g.moveFromSAN(san, true)
	if !ok {
		return Move{}, errors.WithStack(&MoveError{Move: san})
	}
	return g.commit(m), nil
}

// MoveCoords plays the legal move from one square to another. promotion
// names the piece a pawn becomes on the last rank and is required for
// promotions; it is ignored otherwise.
func (g *Game) MoveCoords(from, to string, promotion PieceType) (Move, error) {
	for _, m := range g.generateMoves(allLegal()) {
		if m.from.String() != from || m.to.String() != to {
			continue
		}
		if m.promotion != NoPieceType && m.promotion != promotion {
			continue
		}
		return g.commit(m), nil
	}

	desc := fmt.Sprintf("from %s to %s", from, to)
	if promotion != NoPieceType {
		desc += " promoting to " + promotion.String()
	}
	return Move{}, errors.WithStack(&MoveError{Move: desc})
}

// Undo takes back the last move and returns it. ok is false when there
// is nothing to undo.
func (g *Game) Undo() (Move, bool) {
	m, ok := g.undoMove()
	if !ok {
		return Move{}, false
	}

	pm := g.prettyMove(m)
	k := keyOf(pm.After)
	if n := g.positions[k]; n <= 1 {
		delete(g.positions, k)
	} else {
		g.positions[k] = n - 1
	}
	return pm, true
}

// rewind undoes every move and returns them in the order they were played.
func (g *Game) rewind() []move {
	line := make([]move, len(g.history))
	for i := len(line) - 1; i >= 0; i-- {
		m, _ := g.undoMove()
		line[i] = m
	}
	return line
}

// History returns the moves played so far, oldest first.
func (g *Game) History() []Move {
	line := g.rewind()
	out := make([]Move, 0, len(line))
	for _, m := range line {
		out = append(out, g.prettyMove(m))
		g.makeMove(m)
	}
	return out
}

// HistorySAN returns the SAN of every move played so far, oldest first.
func (g *Game) HistorySAN() []string {
	line := g.rewind()
	out := make([]string, 0, len(line))
	for _, m := range line {
		out = append(out, g.moveToSAN(m, g.generateMoves(genOptions{legal: true, square: NoSquare, piece: m.piece})))
		g.makeMove(m)
	}
	return out
}

// Copy returns an independent copy of the game.
func (g *Game) Copy() *Game {
	c := *g
	c.history = append([]historyEntry(nil), g.history...)
	c.headers = g.headers.clone()
	c.comments = make(map[PositionKey]string, len(g.comments))
	for k, v := range g.comments {
		c.comments[k] = v
	}
	c.positions = make(map[PositionKey]int, len(g.positions))
	for k, v := range g.positions {
		c.positions[k] = v
	}
	return &c
}
