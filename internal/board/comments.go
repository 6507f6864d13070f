package board

import "strings"

// Comment is an annotation attached to a position of the game.
type Comment struct {
	Key  PositionKey
	FEN  string
	Text string
}

var braceReplacer = strings.NewReplacer("{", "[", "}", "]")

// SetComment attaches text to the current position. Braces become
// brackets so the comment survives a PGN round trip.
func (g *Game) SetComment(text string) {
	g.comments[g.PositionKey()] = braceReplacer.Replace(text)
}

// GetComment returns the comment on the current position.
func (g *Game) GetComment() (string, bool) {
	c, ok := g.comments[g.PositionKey()]
	return c, ok
}

// DeleteComment removes and returns the comment on the current position.
func (g *Game) DeleteComment() (string, bool) {
	k := g.PositionKey()
	c, ok := g.comments[k]
	delete(g.comments, k)
	return c, ok
}

// Comments returns the comments on positions of the current line, in
// game order. Comments left on positions that were undone are dropped.
func (g *Game) Comments() []Comment {
	return g.pruneComments()
}

// DeleteComments removes every comment and returns what was there.
func (g *Game) DeleteComments() []Comment {
	out := g.pruneComments()
	g.comments = make(map[PositionKey]string)
	return out
}

// pruneComments replays the game, keeping only comments whose position
// occurs in it.
func (g *Game) pruneComments() []Comment {
	kept := make(map[PositionKey]string, len(g.comments))
	var out []Comment

	visit := func() {
		fen := g.FEN()
		k := keyOf(fen)
		if c, ok := g.comments[k]; ok {
			if _, seen := kept[k]; !seen {
				out = append(out, Comment{Key: k, FEN: fen, Text: c})
			}
			kept[k] = c
		}
	}

	line := g.rewind()
	visit()
	for _, m := range line {
		g.makeMove(m)
		visit()
	}

	g.comments = kept
	return out
}
