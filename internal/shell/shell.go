// Package shell implements a line-oriented command console over one game
// at a time.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/hailam/chessmate/internal/board"
	"github.com/hailam/chessmate/internal/match"
	"github.com/hailam/chessmate/internal/render"
	"github.com/hailam/chessmate/internal/storage"
)

// Lister lists stored games. *storage.Storage satisfies it.
type Lister interface {
	ListGames() ([]*storage.GameRecord, error)
}

// Shell reads commands, one per line, and applies them to the current game.
type Shell struct {
	matches *match.Manager
	store   Lister
	log     zerolog.Logger

	out     io.Writer
	current string // id of the game commands apply to
}

// Option configures a Shell.
type Option func(*Shell)

// WithLister lets the list command show stored games.
func WithLister(l Lister) Option {
	return func(s *Shell) { s.store = l }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Shell) { s.log = l }
}

// New creates a shell that keeps its games in matches.
func New(matches *match.Manager, opts ...Option) *Shell {
	s := &Shell{
		matches: matches,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type command func(s *Shell, args []string) error

var commands map[string]command

func init() {
	commands = map[string]command{
		"new":      (*Shell).handleNew,
		"position": (*Shell).handlePosition,
		"move":     (*Shell).handleMove,
		"undo":     (*Shell).handleUndo,
		"moves":    (*Shell).handleMoves,
		"fen":      (*Shell).handleFEN,
		"pgn":      (*Shell).handlePGN,
		"loadpgn":  (*Shell).handleLoadPGN,
		"header":   (*Shell).handleHeader,
		"comment":  (*Shell).handleComment,
		"d":        (*Shell).handleDisplay,
		"status":   (*Shell).handleStatus,
		"perft":    (*Shell).handlePerft,
		"render":   (*Shell).handleRender,
		"resign":   (*Shell).handleResign,
		"draw":     (*Shell).handleDraw,
		"id":       (*Shell).handleID,
		"open":     (*Shell).handleOpen,
		"list":     (*Shell).handleList,
		"help":     (*Shell).handleHelp,
	}
}

// Run reads commands from in until EOF or quit, writing replies to out.
// A failing command prints an "error:" line and the loop goes on.
func (s *Shell) Run(in io.Reader, out io.Writer) error {
	s.out = out
	if s.current == "" {
		if err := s.handleNew(nil); err != nil {
			return err
		}
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		if cmd == "quit" || cmd == "exit" {
			return nil
		}

		handler, ok := commands[cmd]
		if !ok {
			s.printf("error: unknown command %q\n", cmd)
			continue
		}
		if err := handler(s, args); err != nil {
			s.log.Debug().Err(err).Str("cmd", cmd).Msg("command failed")
			s.printf("error: %v\n", err)
		}
	}
	return errors.WithStack(scanner.Err())
}

func (s *Shell) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) view(fn func(g *board.Game) error) error {
	return s.matches.View(s.current, fn)
}

func (s *Shell) printStatus(snap match.Snapshot) {
	line := fmt.Sprintf("%s %s", snap.Status, snap.Result)
	if !snap.Status.Finished() {
		line += fmt.Sprintf(", %s to move", strings.ToLower(snap.Turn.String()))
		if snap.Check {
			line += ", check"
		}
	}
	s.printf("status %s\n", line)
}

// handleNew starts a game from the initial position.
func (s *Shell) handleNew(args []string) error {
	snap, err := s.matches.Create("")
	if err != nil {
		return err
	}
	s.current = snap.ID
	s.printf("game %s\n", snap.ID)
	return nil
}

// handlePosition starts a new game from a position and optional moves.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen> [moves ...]
func (s *Shell) handlePosition(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: position startpos|fen <fen> [moves ...]")
	}

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	var fen string
	switch args[0] {
	case "startpos":
	case "fen":
		fen = strings.Join(args[1:movesAt], " ")
		if fen == "" {
			return errors.New("position fen: missing FEN")
		}
	default:
		return errors.Errorf("position: unknown kind %q", args[0])
	}

	snap, err := s.matches.Create(fen)
	if err != nil {
		return err
	}
	s.current = snap.ID

	if movesAt < len(args) {
		for _, mv := range args[movesAt+1:] {
			if snap, err = s.matches.Move(s.current, mv); err != nil {
				return err
			}
		}
	}
	s.printf("game %s\n", snap.ID)
	s.printf("fen %s\n", snap.FEN)
	return nil
}

// handleMove plays one or more moves in SAN or long algebraic form.
func (s *Shell) handleMove(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: move <san|uci> ...")
	}
	for _, mv := range args {
		snap, err := s.matches.Move(s.current, mv)
		if err != nil {
			return err
		}
		s.printf("played %s\n", snap.SAN)
		if snap.Status.Finished() {
			s.printStatus(snap)
		}
	}
	return nil
}

func (s *Shell) handleUndo(args []string) error {
	snap, err := s.matches.Undo(s.current)
	if err != nil {
		return err
	}
	if snap.SAN == "" {
		s.printf("nothing to undo\n")
		return nil
	}
	s.printf("undone %s\n", snap.SAN)
	return nil
}

// handleMoves lists legal moves in SAN, optionally from one square.
func (s *Shell) handleMoves(args []string) error {
	var opts []board.MoveOption
	if len(args) > 0 {
		if _, err := board.ParseSquare(args[0]); err != nil {
			return err
		}
		opts = append(opts, board.FromSquare(args[0]))
	}
	return s.view(func(g *board.Game) error {
		s.printf("moves %s\n", strings.Join(g.Moves(opts...), " "))
		return nil
	})
}

func (s *Shell) handleFEN(args []string) error {
	return s.view(func(g *board.Game) error {
		s.printf("%s\n", g.FEN())
		return nil
	})
}

// handlePGN prints the game, wrapped when a width is given.
func (s *Shell) handlePGN(args []string) error {
	var opts board.PGNOptions
	if len(args) > 0 {
		width, err := strconv.Atoi(args[0])
		if err != nil || width < 0 {
			return errors.Errorf("pgn: invalid width %q", args[0])
		}
		opts.MaxWidth = width
	}
	return s.view(func(g *board.Game) error {
		s.printf("%s\n", g.PGNWith(opts))
		return nil
	})
}

// handleLoadPGN starts a new game from a PGN file.
func (s *Shell) handleLoadPGN(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: loadpgn <file>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return errors.WithStack(err)
	}
	snap, err := s.matches.Import(string(data))
	if err != nil {
		return err
	}
	s.current = snap.ID
	s.printf("game %s\n", snap.ID)
	s.printStatus(snap)
	return nil
}

// handleHeader prints all headers, or sets one: header <key> <value ...>.
func (s *Shell) handleHeader(args []string) error {
	if len(args) == 0 {
		return s.view(func(g *board.Game) error {
			headers := g.Header()
			for _, k := range g.HeaderKeys() {
				s.printf("[%s %q]\n", k, headers[k])
			}
			return nil
		})
	}
	if len(args) < 2 {
		return errors.New("usage: header <key> <value>")
	}
	_, err := s.matches.Edit(s.current, func(g *board.Game) error {
		g.Header(args[0], strings.Join(args[1:], " "))
		return nil
	})
	return err
}

// handleComment prints the comment on the current position, or sets it.
func (s *Shell) handleComment(args []string) error {
	if len(args) == 0 {
		return s.view(func(g *board.Game) error {
			if c, ok := g.GetComment(); ok {
				s.printf("comment %s\n", c)
			} else {
				s.printf("no comment\n")
			}
			return nil
		})
	}
	_, err := s.matches.Edit(s.current, func(g *board.Game) error {
		g.SetComment(strings.Join(args, " "))
		return nil
	})
	return err
}

func (s *Shell) handleDisplay(args []string) error {
	return s.view(func(g *board.Game) error {
		s.printf("%s", g.String())
		return nil
	})
}

func (s *Shell) handleStatus(args []string) error {
	snap, err := s.matches.Get(s.current)
	if err != nil {
		return err
	}
	s.printStatus(snap)
	return nil
}

// handlePerft counts leaf nodes to the given depth.
func (s *Shell) handlePerft(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: perft <depth>")
	}
	depth, err := strconv.Atoi(args[0])
	if err != nil || depth < 0 {
		return errors.Errorf("perft: invalid depth %q", args[0])
	}
	return s.view(func(g *board.Game) error {
		s.printf("perft %d %d\n", depth, g.Perft(depth))
		return nil
	})
}

// handleRender writes a diagram of the position, highlighting the last
// move. Files ending in .svg get SVG, anything else PNG.
func (s *Shell) handleRender(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: render <file> [flip] [coords]")
	}
	path := args[0]
	opts := render.Options{}
	for _, a := range args[1:] {
		switch a {
		case "flip":
			opts.Flip = true
		case "coords":
			opts.Coordinates = true
		default:
			return errors.Errorf("render: unknown option %q", a)
		}
	}

	return s.view(func(g *board.Game) error {
		if h := g.History(); len(h) > 0 {
			last := h[len(h)-1]
			opts.Highlight = []string{last.From, last.To}
		}

		f, err := os.Create(path)
		if err != nil {
			return errors.WithStack(err)
		}
		defer f.Close()

		if strings.EqualFold(filepath.Ext(path), ".svg") {
			_, err = io.WriteString(f, render.SVG(g, opts))
			err = errors.WithStack(err)
		} else {
			err = render.PNG(f, g, opts)
		}
		if err != nil {
			return err
		}
		s.printf("rendered %s\n", path)
		return nil
	})
}

func (s *Shell) handleResign(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: resign white|black")
	}
	var c board.Color
	switch strings.ToLower(args[0]) {
	case "white", "w":
		c = board.White
	case "black", "b":
		c = board.Black
	default:
		return errors.Errorf("resign: unknown color %q", args[0])
	}
	snap, err := s.matches.Resign(s.current, c)
	if err != nil {
		return err
	}
	s.printStatus(snap)
	return nil
}

func (s *Shell) handleDraw(args []string) error {
	snap, err := s.matches.Draw(s.current)
	if err != nil {
		return err
	}
	s.printStatus(snap)
	return nil
}

func (s *Shell) handleID(args []string) error {
	s.printf("game %s\n", s.current)
	return nil
}

// handleOpen switches to a live or stored game.
func (s *Shell) handleOpen(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: open <id>")
	}
	snap, err := s.matches.Restore(args[0])
	if err != nil {
		return err
	}
	s.current = snap.ID
	s.printf("game %s\n", snap.ID)
	s.printStatus(snap)
	return nil
}

// handleList prints stored games when there is a store, live games
// otherwise.
func (s *Shell) handleList(args []string) error {
	if s.store == nil {
		for _, snap := range s.matches.List() {
			s.printf("%s %s %s\n", snap.ID, snap.Status, snap.Result)
		}
		return nil
	}

	games, err := s.store.ListGames()
	if err != nil {
		return err
	}
	sort.Slice(games, func(i, j int) bool {
		return games[i].UpdatedAt.After(games[j].UpdatedAt)
	})
	for _, g := range games {
		s.printf("%s %s %s %s\n", g.ID, g.Status, g.Result, g.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func (s *Shell) handleHelp(args []string) error {
	names := make([]string, 0, len(commands)+1)
	for name := range commands {
		names = append(names, name)
	}
	names = append(names, "quit")
	sort.Strings(names)
	s.printf("commands %s\n", strings.Join(names, " "))
	return nil
}
