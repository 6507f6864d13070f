package match

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/chessmate/internal/board"
	"github.com/hailam/chessmate/internal/storage"
)

func newStore(t *testing.T) *storage.Storage {
	t.Helper()
	s, err := storage.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func playAll(t *testing.T, m *Manager, id string, sans ...string) Snapshot {
	t.Helper()
	var snap Snapshot
	for _, san := range sans {
		var err error
		snap, err = m.Move(id, san)
		require.NoError(t, err, san)
	}
	return snap
}

func TestCreateAndMove(t *testing.T) {
	m := NewManager()

	snap, err := m.Create("")
	require.NoError(t, err)
	assert.Equal(t, board.StartFEN, snap.FEN)
	assert.Equal(t, StatusOngoing, snap.Status)
	assert.Equal(t, "*", snap.Result)

	snap, err = m.Move(snap.ID, "e4")
	require.NoError(t, err)
	assert.Equal(t, "e4", snap.SAN)
	assert.Equal(t, board.Black, snap.Turn)

	snap, err = m.MoveCoords(snap.ID, "e7", "e5", board.NoPieceType)
	require.NoError(t, err)
	assert.Equal(t, "e5", snap.SAN)
	assert.Equal(t, "1. e4 e5", snap.PGN)

	_, err = m.Move(snap.ID, "Ke3")
	assert.True(t, errors.Is(err, board.ErrInvalidMove))

	_, err = m.Get("nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCreateFromFEN(t *testing.T) {
	m := NewManager()

	_, err := m.Create("not a fen")
	assert.True(t, errors.Is(err, board.ErrInvalidFEN))

	snap, err := m.Create("4k3/8/8/8/8/8/4P3/4K3 b - - 0 1")
	require.NoError(t, err)
	assert.Equal(t, board.Black, snap.Turn)
}

func TestCheckmateFinishesGame(t *testing.T) {
	store := newStore(t)
	m := NewManager(WithStore(store))

	snap, err := m.Create("")
	require.NoError(t, err)

	snap = playAll(t, m, snap.ID, "f3", "e5", "g4", "Qh4#")
	assert.Equal(t, StatusCheckmate, snap.Status)
	assert.Equal(t, "0-1", snap.Result)
	assert.True(t, snap.Check)
	assert.Contains(t, snap.PGN, "[Result \"0-1\"]")

	_, err = m.Move(snap.ID, "a3")
	assert.True(t, errors.Is(err, ErrGameOver))
	_, err = m.Undo(snap.ID)
	assert.True(t, errors.Is(err, ErrGameOver))

	rec, err := store.LoadGame(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "checkmate", rec.Status)
	assert.Equal(t, "0-1", rec.Result)

	stats, err := store.LoadStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.BlackWins)
}

func TestImportFinishedGame(t *testing.T) {
	store := newStore(t)
	m := NewManager(WithStore(store))

	snap, err := m.Import("[Event \"x\"]\n\n1. f3 e5 2. g4 Qh4# 0-1")
	require.NoError(t, err)
	assert.Equal(t, StatusCheckmate, snap.Status)
	assert.Equal(t, "0-1", snap.Result)

	rec, err := store.LoadGame(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "checkmate", rec.Status)

	stats, err := store.LoadStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.BlackWins)

	snap, err = m.Import("1. e4 e5")
	require.NoError(t, err)
	assert.Equal(t, StatusOngoing, snap.Status)
	assert.Equal(t, "*", snap.Result)
}

func TestStalemateFinishesGame(t *testing.T) {
	m := NewManager()
	snap, err := m.Create("7k/4Q3/6K1/8/8/8/8/8 w - - 0 1")
	require.NoError(t, err)

	snap, err = m.Move(snap.ID, "Qf7")
	require.NoError(t, err)
	assert.Equal(t, StatusStalemate, snap.Status)
	assert.Equal(t, "1/2-1/2", snap.Result)
}

func TestUndo(t *testing.T) {
	m := NewManager()
	snap, err := m.Create("")
	require.NoError(t, err)

	snap, err = m.Undo(snap.ID)
	require.NoError(t, err)
	assert.Empty(t, snap.SAN)

	playAll(t, m, snap.ID, "d4")
	snap, err = m.Undo(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "d4", snap.SAN)
	assert.Equal(t, board.StartFEN, snap.FEN)
}

func TestResignAndDraw(t *testing.T) {
	m := NewManager()

	a, err := m.Create("")
	require.NoError(t, err)
	a, err = m.Resign(a.ID, board.White)
	require.NoError(t, err)
	assert.Equal(t, StatusResigned, a.Status)
	assert.Equal(t, "0-1", a.Result)

	_, err = m.Draw(a.ID)
	assert.True(t, errors.Is(err, ErrGameOver))

	b, err := m.Create("")
	require.NoError(t, err)
	b, err = m.Draw(b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDraw, b.Status)
	assert.Equal(t, "1/2-1/2", b.Result)
	assert.True(t, b.Status.Finished())

	assert.Len(t, m.List(), 2)
}

func TestLeaveAbandonsGame(t *testing.T) {
	m := NewManager(WithAbandonAfter(10 * time.Millisecond))
	snap, err := m.Create("")
	require.NoError(t, err)

	_, err = m.Leave(snap.ID, board.Black)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		s, err := m.Get(snap.ID)
		return err == nil && s.Status == StatusAbandoned
	}, time.Second, 5*time.Millisecond)

	snap, err = m.Get(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "1-0", snap.Result)
}

func TestRejoinCancelsAbandon(t *testing.T) {
	m := NewManager(WithAbandonAfter(30 * time.Millisecond))
	snap, err := m.Create("")
	require.NoError(t, err)

	_, err = m.Leave(snap.ID, board.White)
	require.NoError(t, err)
	_, err = m.Rejoin(snap.ID)
	require.NoError(t, err)

	time.Sleep(80 * time.Millisecond)

	snap, err = m.Get(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOngoing, snap.Status)
}

func TestFinishCancelsAbandon(t *testing.T) {
	m := NewManager(WithAbandonAfter(30 * time.Millisecond))
	snap, err := m.Create("")
	require.NoError(t, err)

	_, err = m.Leave(snap.ID, board.White)
	require.NoError(t, err)
	_, err = m.Resign(snap.ID, board.Black)
	require.NoError(t, err)

	time.Sleep(80 * time.Millisecond)

	snap, err = m.Get(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusResigned, snap.Status)
	assert.Equal(t, "1-0", snap.Result)
}

func TestRestore(t *testing.T) {
	store := newStore(t)

	first := NewManager(WithStore(store))
	snap, err := first.Create("")
	require.NoError(t, err)
	playAll(t, first, snap.ID, "e4", "c5", "Nf3")
	want, err := first.Get(snap.ID)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	_, err = first.Get(snap.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	second := NewManager(WithStore(store))
	got, err := second.Restore(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, want.FEN, got.FEN)
	assert.Equal(t, want.PGN, got.PGN)
	assert.Equal(t, StatusOngoing, got.Status)

	got, err = second.Move(snap.ID, "d6")
	require.NoError(t, err)
	assert.Equal(t, "d6", got.SAN)

	_, err = second.Restore("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRestoreWithoutStore(t *testing.T) {
	m := NewManager()
	_, err := m.Restore("anything")
	assert.True(t, errors.Is(err, ErrNotFound))
}
