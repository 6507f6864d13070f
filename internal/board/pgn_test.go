package board

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPGNOutput(t *testing.T) {
	g := NewGame()
	g.Header("Event", "Casual", "White", "A")
	play(t, g, "e4", "e5", "Nf3", "Nc6", "Bb5")

	want := "[Event \"Casual\"]\n[White \"A\"]\n\n1. e4 e5 2. Nf3 Nc6 3. Bb5"
	assert.Equal(t, want, g.PGN())

	g.Header("Result", "*")
	want = "[Event \"Casual\"]\n[White \"A\"]\n[Result \"*\"]\n\n1. e4 e5 2. Nf3 Nc6 3. Bb5 *"
	assert.Equal(t, want, g.PGN())
	assert.Equal(t, "Casual", g.Header()["Event"])
	assert.Equal(t, []string{"Event", "White", "Result"}, g.HeaderKeys())

	assert.True(t, g.RemoveHeader("White"))
	assert.False(t, g.RemoveHeader("White"))
}

func TestPGNBlackToMoveFirst(t *testing.T) {
	g := mustLoad(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	play(t, g, "e5", "Nf3")

	want := "[SetUp \"1\"]\n" +
		"[FEN \"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1\"]\n" +
		"\n" +
		"1. ... e5 2. Nf3"
	assert.Equal(t, want, g.PGN())
}

func TestPGNComments(t *testing.T) {
	g := NewGame()
	g.SetComment("start")
	play(t, g, "e4")
	g.SetComment("good {really}")
	play(t, g, "e5")

	assert.Equal(t, "{start} 1. e4 {good [really]} e5", g.PGN())

	c, ok := g.GetComment()
	assert.False(t, ok)
	assert.Empty(t, c)

	comments := g.Comments()
	require.Len(t, comments, 2)
	assert.Equal(t, "start", comments[0].Text)
	assert.Equal(t, StartFEN, comments[0].FEN)
	assert.Equal(t, "good [really]", comments[1].Text)
}

func TestCommentsPrunedAfterUndo(t *testing.T) {
	g := NewGame()
	play(t, g, "e4")
	g.SetComment("gone soon")
	g.Undo()

	assert.Empty(t, g.Comments())

	play(t, g, "e4")
	_, ok := g.GetComment()
	assert.False(t, ok)
}

func TestDeleteComments(t *testing.T) {
	g := NewGame()
	g.SetComment("a")
	play(t, g, "d4")
	g.SetComment("b")

	text, ok := g.DeleteComment()
	assert.True(t, ok)
	assert.Equal(t, "b", text)

	removed := g.DeleteComments()
	require.Len(t, removed, 1)
	assert.Equal(t, "a", removed[0].Text)
	assert.Empty(t, g.Comments())
}

func TestPGNWrap(t *testing.T) {
	g := NewGame()
	play(t, g, "e4", "e5", "Nf3", "Nc6", "Bb5", "a6", "Ba4", "Nf6", "O-O", "Be7")

	want := "1. e4 e5 2. Nf3 Nc6\n3. Bb5 a6 4. Ba4 Nf6\n5. O-O Be7"
	assert.Equal(t, want, g.PGNWith(PGNOptions{MaxWidth: 20}))

	want = "1. e4 e5 2. Nf3 Nc6\r\n3. Bb5 a6 4. Ba4 Nf6\r\n5. O-O Be7"
	assert.Equal(t, want, g.PGNWith(PGNOptions{MaxWidth: 20, Newline: "\r\n"}))
}

func TestPGNWrapSplitsComments(t *testing.T) {
	g := NewGame()
	play(t, g, "e4")
	g.SetComment("a long remark here")
	play(t, g, "e5")

	want := "1. e4 {a long\nremark here} e5"
	assert.Equal(t, want, g.PGNWith(PGNOptions{MaxWidth: 15}))
}

func TestLoadPGN(t *testing.T) {
	pgn := `[Event "Test"]
[Site "?"]
[Result "1-0"]

1. e4 {open} e5 (1... c5 2. Nf3 {sicilian}) 2. Nf3 $1 Nc6 3.Bb5 a6 1-0`

	g := NewGame()
	require.NoError(t, g.LoadPGN(pgn, PGNLoadOptions{}))

	assert.Equal(t, []string{"e4", "e5", "Nf3", "Nc6", "Bb5", "a6"}, g.HistorySAN())
	assert.Equal(t, map[string]string{"Event": "Test", "Site": "?", "Result": "1-0"}, g.Header())

	comments := g.Comments()
	require.Len(t, comments, 1)
	assert.Equal(t, "open", comments[0].Text)

	want := "[Event \"Test\"]\n[Site \"?\"]\n[Result \"1-0\"]\n\n1. e4 {open} e5 2. Nf3 Nc6 3. Bb5 a6 1-0"
	assert.Equal(t, want, g.PGN())
}

func TestLoadPGNRoundTrip(t *testing.T) {
	g := NewGame()
	g.Header("White", "Morphy", "Black", "Allies")
	play(t, g, "e4", "e5", "Nf3", "d6", "d4", "Bg4", "dxe5", "Bxf3", "Qxf3", "dxe5", "Bc4", "Nf6", "Qb3", "Qe7")
	g.SetComment("double attack")
	play(t, g, "Nc3", "c6", "Bg5", "b5")

	out := g.PGN()

	loaded := NewGame()
	require.NoError(t, loaded.LoadPGN(out, PGNLoadOptions{Strict: true}))
	assert.Equal(t, g.FEN(), loaded.FEN())
	assert.Equal(t, g.HistorySAN(), loaded.HistorySAN())
	assert.Equal(t, g.Comments(), loaded.Comments())
	assert.Equal(t, out, loaded.PGN())
}

func TestLoadPGNSetsResultFromMovetext(t *testing.T) {
	g := NewGame()
	require.NoError(t, g.LoadPGN("[Event \"x\"]\n\n1. e4 e5 0-1", PGNLoadOptions{}))
	assert.Equal(t, "0-1", g.Header()["Result"])

	require.NoError(t, g.LoadPGN("1. e4 e5 0-1", PGNLoadOptions{}))
	_, ok := g.Header()["Result"]
	assert.False(t, ok, "no headers, no result header")
}

func TestLoadPGNInvalidMove(t *testing.T) {
	g := NewGame()
	err := g.LoadPGN("1. e4 e5 2. Ke3 Nc6", PGNLoadOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPGN))

	var pgnErr *PGNError
	require.True(t, errors.As(err, &pgnErr))
	assert.Equal(t, "Ke3", pgnErr.Token)
	assert.Equal(t, 12, pgnErr.Offset)

	assert.Equal(t, []string{"e4", "e5"}, g.HistorySAN())
}

func TestLoadPGNFENHeader(t *testing.T) {
	pgn := "[SetUp \"1\"]\n[FEN \"4k3/8/8/8/8/8/4P3/4K3 w - - 0 1\"]\n\n1. e4 Kd7"

	for _, strict := range []bool{false, true} {
		g := NewGame()
		require.NoError(t, g.LoadPGN(pgn, PGNLoadOptions{Strict: strict}))
		assert.Equal(t, "8/3k4/8/8/4P3/8/8/4K3 w - - 1 2", g.FEN())
	}
}

func TestLoadPGNKeepsHeaderOrder(t *testing.T) {
	pgn := "[Event \"x\"]\n[SetUp \"1\"]\n[FEN \"4k3/8/8/8/8/8/4P3/4K3 w - - 0 1\"]\n[White \"A\"]\n\n1. e4 *"

	g := NewGame()
	require.NoError(t, g.LoadPGN(pgn, PGNLoadOptions{}))
	assert.Equal(t, []string{"Event", "SetUp", "FEN", "White", "Result"}, g.HeaderKeys())
	assert.Equal(t, "[Event \"x\"]\n[SetUp \"1\"]\n[FEN \"4k3/8/8/8/8/8/4P3/4K3 w - - 0 1\"]\n[White \"A\"]\n[Result \"*\"]\n\n1. e4 *", g.PGN())
}

func TestLoadPGNStrictNeedsFEN(t *testing.T) {
	g := NewGame()
	err := g.LoadPGN("[SetUp \"1\"]\n\n1. e4", PGNLoadOptions{Strict: true})
	assert.True(t, errors.Is(err, ErrInvalidPGN))
}

func TestLoadPGNBadFENHeader(t *testing.T) {
	g := NewGame()
	err := g.LoadPGN("[FEN \"8/8/8 w - - 0 1\"]\n\n1. e4", PGNLoadOptions{})
	assert.True(t, errors.Is(err, ErrInvalidPGN))
	assert.True(t, errors.Is(err, ErrInvalidFEN))
}

func TestLoadPGNLineComment(t *testing.T) {
	g := NewGame()
	require.NoError(t, g.LoadPGN("1. e4 ; best by test\ne5", PGNLoadOptions{}))

	comments := g.Comments()
	require.Len(t, comments, 1)
	assert.Equal(t, "best by test", comments[0].Text)
	assert.Len(t, g.HistorySAN(), 2)
}

func TestLoadPGNCustomNewline(t *testing.T) {
	g := NewGame()
	pgn := "[Event \"x\"]|[Site \"y\"]||1. d4 d5"
	require.NoError(t, g.LoadPGN(pgn, PGNLoadOptions{Newline: "|"}))
	assert.Equal(t, "y", g.Header()["Site"])
	assert.Equal(t, []string{"d4", "d5"}, g.HistorySAN())
}

func TestLoadPGNLexErrors(t *testing.T) {
	for _, pgn := range []string{
		"1. e4 {unterminated",
		"1. e4 (1. d4",
		"1. e4 )",
		"[Event \"x\"\n\n1. e4",
	} {
		g := NewGame()
		err := g.LoadPGN(pgn, PGNLoadOptions{})
		assert.True(t, errors.Is(err, ErrInvalidPGN), pgn)
	}
}
