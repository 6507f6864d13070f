package board

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// PGNOptions controls PGN output.
type PGNOptions struct {
	// Newline separates header lines and wrapped movetext lines.
	// Defaults to "\n".
	Newline string
	// MaxWidth wraps the movetext at this many characters; 0 disables
	// wrapping. Move pairs without comments are never split.
	MaxWidth int
}

// PGNLoadOptions controls LoadPGN.
type PGNLoadOptions struct {
	// Strict accepts only exact SAN and honours the FEN header only when
	// SetUp is "1".
	Strict bool
	// Newline is the line separator used by the input. Defaults to "\n".
	Newline string
}

var pgnValueEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// PGN returns the game in PGN with default options.
func (g *Game) PGN() string {
	return g.PGNWith(PGNOptions{})
}

// appendComment adds the comment of the current position to s.
func (g *Game) appendComment(s string) string {
	c, ok := g.comments[g.PositionKey()]
	if !ok {
		return s
	}
	if s != "" {
		s += " "
	}
	return s + "{" + c + "}"
}

// PGNWith returns the game in PGN: headers in insertion order, then the
// movetext with comments and the result.
func (g *Game) PGNWith(opts PGNOptions) string {
	newline := opts.Newline
	if newline == "" {
		newline = "\n"
	}

	var sb strings.Builder
	for _, k := range g.headers.keys {
		sb.WriteString("[" + k + ` "` + pgnValueEscaper.Replace(g.headers.values[k]) + `"]`)
		sb.WriteString(newline)
	}
	if g.headers.len() > 0 && len(g.history) > 0 {
		sb.WriteString(newline)
	}

	// Units are "N. white black" groups plus their comments.
	var units []string
	line := g.rewind()
	if len(line) == 0 {
		units = append(units, g.appendComment(""))
	}

	unit := ""
	for i, m := range line {
		unit = g.appendComment(unit)

		if i == 0 && m.color == Black {
			prefix := strconv.Itoa(g.moveNumber) + ". ..."
			if unit != "" {
				unit += " " + prefix
			} else {
				unit = prefix
			}
		} else if m.color == White {
			if unit != "" {
				units = append(units, unit)
			}
			unit = strconv.Itoa(g.moveNumber) + "."
		}

		unit += " " + g.moveToSAN(m, g.generateMoves(genOptions{legal: true, square: NoSquare, piece: m.piece}))
		g.makeMove(m)
	}
	if unit != "" {
		units = append(units, g.appendComment(unit))
	}

	if r, ok := g.headers.get("Result"); ok {
		units = append(units, r)
	}

	if opts.MaxWidth <= 0 {
		kept := units[:0:0]
		for _, u := range units {
			if u != "" {
				kept = append(kept, u)
			}
		}
		sb.WriteString(strings.Join(kept, " "))
		return sb.String()
	}

	sb.WriteString(wrapUnits(units, opts.MaxWidth, newline))
	return sb.String()
}

// wrapUnits lays units out in lines of at most width characters. Units
// holding a comment may break at any space; other units stay whole.
// Pieces longer than width get a line of their own.
func wrapUnits(units []string, width int, newline string) string {
	var pieces []string
	for _, u := range units {
		if u == "" {
			continue
		}
		if strings.Contains(u, "{") {
			pieces = append(pieces, strings.Fields(u)...)
		} else {
			pieces = append(pieces, u)
		}
	}

	var sb strings.Builder
	col := 0
	for _, p := range pieces {
		if col > 0 && col+1+len(p) > width {
			sb.WriteString(newline)
			col = 0
		}
		if col > 0 {
			sb.WriteByte(' ')
			col++
		}
		sb.WriteString(p)
		col += len(p)
	}
	return sb.String()
}

// LoadPGN replaces the game with the one in pgn. Headers, comments and
// moves are all restored. A token that is neither a legal move nor a
// result stops loading with a *PGNError; moves before it stay played.
func (g *Game) LoadPGN(pgn string, opts PGNLoadOptions) error {
	text := strings.TrimSpace(pgn)
	if opts.Newline != "" && opts.Newline != "\n" {
		text = strings.ReplaceAll(text, opts.Newline, "\n")
	}

	tokens, lexErr := lexPGN(text)

	g.Reset()

	i := 0
	fen := ""
	for ; i < len(tokens) && tokens[i].kind == tokHeader; i++ {
		g.headers.set(tokens[i].key, tokens[i].text)
		if strings.EqualFold(tokens[i].key, "FEN") {
			fen = tokens[i].text
		}
	}

	if opts.Strict {
		if v, ok := g.headers.get("SetUp"); ok && v == "1" {
			f, ok := g.headers.get("FEN")
			if !ok {
				return errors.WithStack(&PGNError{Reason: "FEN tag must be supplied with SetUp tag"})
			}
			fen = f
		} else {
			fen = ""
		}
	}

	if fen != "" {
		if err := g.Load(fen, PreserveHeaders()); err != nil {
			return errors.WithStack(&PGNError{Token: fen, Reason: "bad FEN header", Err: err})
		}
	}

	result := ""
	for ; i < len(tokens); i++ {
		t := tokens[i]
		switch t.kind {
		case tokHeader:
			return errors.WithStack(&PGNError{Offset: t.offset, Token: t.key, Reason: "header inside movetext"})
		case tokComment:
			g.comments[g.PositionKey()] = t.text
		case tokResult:
			result = t.text
		case tokMove:
			m, ok := g.moveFromSAN(t.text, opts.Strict)
			if !ok {
				return errors.WithStack(&PGNError{Offset: t.offset, Token: t.text, Reason: "invalid move"})
			}
			result = ""
			g.makeMove(m)
			g.positions[g.PositionKey()]++
		}
	}

	if lexErr != nil {
		return lexErr
	}

	if _, ok := g.headers.get("Result"); result != "" && g.headers.len() > 0 && !ok {
		g.headers.set("Result", result)
	}
	return nil
}
