package board

import (
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/notnil/chess"
	"github.com/stretchr/testify/require"
)

// TestRandomWalksAgainstReference plays random games and compares the legal
// move set and the first three FEN fields with an independent move generator
// after every ply.
func TestRandomWalksAgainstReference(t *testing.T) {
	rng := rand.New(rand.NewSource(20240601))

	starts := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	}

	for _, fen := range starts {
		for walk := 0; walk < 6; walk++ {
			g := mustLoad(t, fen)

			opt, err := chess.FEN(fen)
			require.NoError(t, err)
			ref := chess.NewGame(opt)

			for ply := 0; ply < 80; ply++ {
				ours := lanSet(g)
				theirs := make(map[string]*chess.Move)
				var theirKeys []string
				for _, m := range ref.ValidMoves() {
					lan := chess.UCINotation{}.Encode(ref.Position(), m)
					theirs[lan] = m
					theirKeys = append(theirKeys, lan)
				}
				sort.Strings(theirKeys)

				require.Equal(t, theirKeys, ours, "move sets differ at %s", g.FEN())
				require.Equal(t, fenPrefix(ref.Position().String()), fenPrefix(g.FEN()))

				if len(ours) == 0 {
					break
				}

				pick := ours[rng.Intn(len(ours))]
				promo := NoPieceType
				if len(pick) == 5 {
					promo = PieceTypeFromChar(pick[4])
				}
				_, err := g.MoveCoords(pick[:2], pick[2:4], promo)
				require.NoError(t, err)
				require.NoError(t, ref.Move(theirs[pick]))
			}
		}
	}
}

func lanSet(g *Game) []string {
	var out []string
	for _, m := range g.generateMoves(allLegal()) {
		out = append(out, m.lan())
	}
	sort.Strings(out)
	return out
}

// fenPrefix keeps placement, side to move and castling rights.
func fenPrefix(fen string) string {
	return strings.Join(strings.Fields(fen)[:3], " ")
}
