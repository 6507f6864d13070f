// Package match keeps a registry of running games. Each game sits behind
// its own mutex, is addressed by a uuid and is written through to storage
// after every change.
package match

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/hailam/chessmate/internal/board"
	"github.com/hailam/chessmate/internal/storage"
)

var (
	ErrNotFound = errors.New("match not found")
	ErrGameOver = errors.New("game is over")
)

// Store is the persistence the manager writes through to.
// *storage.Storage satisfies it.
type Store interface {
	SaveGame(rec *storage.GameRecord) error
	LoadGame(id string) (*storage.GameRecord, error)
	RecordResult(status, result string) error
}

// DefaultAbandonAfter is how long a game waits for a player who left
// before it is scored as abandoned.
const DefaultAbandonAfter = time.Minute

// Manager owns every live game.
type Manager struct {
	mu           sync.RWMutex
	sessions     map[string]*session
	store        Store
	log          zerolog.Logger
	abandonAfter time.Duration
}

// Option configures a Manager.
type Option func(*Manager)

// WithStore persists every change to s.
func WithStore(s Store) Option {
	return func(m *Manager) { m.store = s }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithAbandonAfter sets the grace period used by Leave.
func WithAbandonAfter(d time.Duration) Option {
	return func(m *Manager) { m.abandonAfter = d }
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions:     make(map[string]*session),
		log:          zerolog.Nop(),
		abandonAfter: DefaultAbandonAfter,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a game from fen, or from the initial position when fen
// is empty.
func (m *Manager) Create(fen string) (Snapshot, error) {
	g := board.NewGame()
	if fen != "" {
		var err error
		if g, err = board.NewGameFromFEN(fen); err != nil {
			return Snapshot{}, err
		}
	}

	s := &session{
		id:        uuid.NewString(),
		game:      g,
		status:    StatusOngoing,
		result:    "*",
		createdAt: time.Now(),
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	m.log.Info().Str("game", s.id).Str("fen", g.FEN()).Msg("game created")
	return s.snapshot(""), m.persist(s)
}

// Import starts a game from PGN text. A game that already ends in mate or
// a draw on the board is registered as finished.
func (m *Manager) Import(pgn string) (Snapshot, error) {
	g := board.NewGame()
	if err := g.LoadPGN(pgn, board.PGNLoadOptions{}); err != nil {
		return Snapshot{}, err
	}

	s := &session{
		id:        uuid.NewString(),
		game:      g,
		status:    StatusOngoing,
		result:    "*",
		createdAt: time.Now(),
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	m.log.Info().Str("game", s.id).Int("plies", len(g.HistorySAN())).Msg("game imported")
	if status, result := outcome(g); status.Finished() {
		m.finish(s, status, result)
	}
	return s.snapshot(""), m.persist(s)
}

// View runs fn with the game locked. fn must not keep g.
func (m *Manager) View(id string, fn func(g *board.Game) error) error {
	s, err := m.session(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.game)
}

// Edit runs fn with the game locked and persists the result. It is meant
// for annotations (headers, comments); moves go through Move so the
// status stays in step with the board.
func (m *Manager) Edit(id string, fn func(g *board.Game) error) (Snapshot, error) {
	s, err := m.session(id)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.game); err != nil {
		return s.snapshot(""), err
	}
	return s.snapshot(""), m.persist(s)
}

func (m *Manager) session(id string) (*session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "id %s", id)
	}
	return s, nil
}

// Get returns the current state of a game.
func (m *Manager) Get(id string) (Snapshot, error) {
	s, err := m.session(id)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(""), nil
}

// List returns the live games ordered by id.
func (m *Manager) List() []Snapshot {
	m.mu.RLock()
	sessions := make([]*session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	out := make([]Snapshot, 0, len(sessions))
	for _, s := range sessions {
		s.mu.Lock()
		out = append(out, s.snapshot(""))
		s.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Move plays a SAN move (permissive parsing) in game id.
func (m *Manager) Move(id, san string) (Snapshot, error) {
	return m.play(id, func(g *board.Game) (board.Move, error) {
		return g.Move(san)
	})
}

// MoveCoords plays the move from-to in game id. promotion is required
// when a pawn reaches the last rank and ignored otherwise.
func (m *Manager) MoveCoords(id, from, to string, promotion board.PieceType) (Snapshot, error) {
	return m.play(id, func(g *board.Game) (board.Move, error) {
		return g.MoveCoords(from, to, promotion)
	})
}

func (m *Manager) play(id string, apply func(*board.Game) (board.Move, error)) (Snapshot, error) {
	s, err := m.session(id)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusOngoing {
		return s.snapshot(""), errors.Wrapf(ErrGameOver, "game %s is %s", id, s.status)
	}

	mv, err := apply(s.game)
	if err != nil {
		return s.snapshot(""), err
	}

	m.log.Debug().Str("game", id).Str("san", mv.SAN).Str("fen", mv.After).Msg("move")

	if status, result := outcome(s.game); status != StatusOngoing {
		m.finish(s, status, result)
	}
	return s.snapshot(mv.SAN), m.persist(s)
}

// Undo takes back the last move of an unfinished game. Snapshot.SAN is
// the move taken back, empty when there was none.
func (m *Manager) Undo(id string) (Snapshot, error) {
	s, err := m.session(id)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusOngoing {
		return s.snapshot(""), errors.Wrapf(ErrGameOver, "game %s is %s", id, s.status)
	}

	mv, ok := s.game.Undo()
	if !ok {
		return s.snapshot(""), nil
	}
	m.log.Debug().Str("game", id).Str("san", mv.SAN).Msg("undo")
	return s.snapshot(mv.SAN), m.persist(s)
}

// Resign ends game id with a win for the opponent of c.
func (m *Manager) Resign(id string, c board.Color) (Snapshot, error) {
	return m.end(id, StatusResigned, winFor(c.Other()))
}

// Draw ends game id as an agreed draw.
func (m *Manager) Draw(id string) (Snapshot, error) {
	return m.end(id, StatusDraw, "1/2-1/2")
}

func (m *Manager) end(id string, status Status, result string) (Snapshot, error) {
	s, err := m.session(id)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusOngoing {
		return s.snapshot(""), errors.Wrapf(ErrGameOver, "game %s is %s", id, s.status)
	}
	m.finish(s, status, result)
	return s.snapshot(""), m.persist(s)
}

// Leave starts the abandon timer for c. Unless Rejoin is called before
// it fires, the game is scored as a loss for c.
func (m *Manager) Leave(id string, c board.Color) (Snapshot, error) {
	s, err := m.session(id)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusOngoing {
		return s.snapshot(""), errors.Wrapf(ErrGameOver, "game %s is %s", id, s.status)
	}

	s.stopTimer()
	gen := s.gen
	s.abandon = time.AfterFunc(m.abandonAfter, func() {
		m.abandoned(s, gen, c)
	})

	m.log.Info().Str("game", id).Stringer("color", c).Dur("after", m.abandonAfter).Msg("player left")
	return s.snapshot(""), nil
}

// Rejoin cancels a pending abandon timer.
func (m *Manager) Rejoin(id string) (Snapshot, error) {
	s, err := m.session(id)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopTimer() {
		m.log.Info().Str("game", id).Msg("player rejoined")
	}
	return s.snapshot(""), nil
}

// abandoned runs on the timer goroutine. A timer stopped or replaced
// after it fired finds a newer generation and does nothing.
func (m *Manager) abandoned(s *session, gen int, leaver board.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen || s.status != StatusOngoing {
		return
	}
	s.abandon = nil
	m.finish(s, StatusAbandoned, winFor(leaver.Other()))
	if err := m.persist(s); err != nil {
		m.log.Error().Err(err).Str("game", s.id).Msg("persist abandoned game")
	}
}

// Restore brings a stored game back into the registry by replaying its
// PGN. A game that is already live is returned as is.
func (m *Manager) Restore(id string) (Snapshot, error) {
	if s, err := m.session(id); err == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.snapshot(""), nil
	}
	if m.store == nil {
		return Snapshot{}, errors.Wrapf(ErrNotFound, "id %s", id)
	}

	rec, err := m.store.LoadGame(id)
	if errors.Is(err, storage.ErrNotFound) {
		return Snapshot{}, errors.Wrapf(ErrNotFound, "id %s", id)
	}
	if err != nil {
		return Snapshot{}, err
	}

	g := board.NewGame()
	if err := g.LoadPGN(rec.PGN, board.PGNLoadOptions{}); err != nil {
		return Snapshot{}, errors.Wrapf(err, "restore game %s", id)
	}

	s := &session{
		id:        id,
		game:      g,
		status:    Status(rec.Status),
		result:    rec.Result,
		createdAt: rec.CreatedAt,
	}
	if s.status == "" {
		s.status = StatusOngoing
	}
	if s.result == "" {
		s.result = "*"
	}

	m.mu.Lock()
	if live, ok := m.sessions[id]; ok {
		s = live
	} else {
		m.sessions[id] = s
	}
	m.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	m.log.Info().Str("game", id).Str("status", string(s.status)).Msg("game restored")
	return s.snapshot(""), nil
}

// Close stops every pending timer, persists every game and empties the
// registry.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result error
	for id, s := range m.sessions {
		s.mu.Lock()
		s.stopTimer()
		if err := m.persist(s); err != nil {
			result = multierror.Append(result, err)
		}
		s.mu.Unlock()
		delete(m.sessions, id)
	}
	return result
}

// finish moves s into a terminal status. Caller holds s.mu.
func (m *Manager) finish(s *session, status Status, result string) {
	s.stopTimer()
	s.status = status
	s.result = result
	s.game.Header("Result", result)

	m.log.Info().Str("game", s.id).Str("status", string(status)).Str("result", result).Msg("game over")

	if m.store != nil {
		if err := m.store.RecordResult(string(status), result); err != nil {
			m.log.Error().Err(err).Str("game", s.id).Msg("record result")
		}
	}
}

// persist writes s through to the store. Caller holds s.mu.
func (m *Manager) persist(s *session) error {
	if m.store == nil {
		return nil
	}
	err := m.store.SaveGame(&storage.GameRecord{
		ID:        s.id,
		FEN:       s.game.FEN(),
		PGN:       s.game.PGN(),
		Status:    string(s.status),
		Result:    s.result,
		CreatedAt: s.createdAt,
	})
	return errors.Wrapf(err, "persist game %s", s.id)
}

// outcome derives the status of a game from the position on the board.
func outcome(g *board.Game) (Status, string) {
	switch {
	case g.IsCheckmate():
		return StatusCheckmate, g.Result()
	case g.IsStalemate():
		return StatusStalemate, "1/2-1/2"
	case g.IsDraw():
		return StatusDraw, "1/2-1/2"
	}
	return StatusOngoing, "*"
}

func winFor(c board.Color) string {
	if c == board.White {
		return "1-0"
	}
	return "0-1"
}
