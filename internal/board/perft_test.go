package board

import "testing"

func mustLoad(t *testing.T, fen string) *Game {
	t.Helper()
	g, err := NewGameFromFEN(fen)
	if err != nil {
		t.Fatalf("Failed to load FEN %q: %v", fen, err)
	}
	return g
}

// TestPerftStartingPosition tests move generation from the starting position.
func TestPerftStartingPosition(t *testing.T) {
	g := NewGame()

	tests := []struct {
		depth    int
		expected int
	}{
		{0, 1},
		{1, 20},
		{2, 400},
		{3, 8902},
		{4, 197281},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := g.Perft(tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}

	if g.FEN() != StartFEN {
		t.Errorf("perft left the position changed: %s", g.FEN())
	}
}

// TestPerftKiwipete tests the famous Kiwipete position with many edge cases.
// FEN: r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -
func TestPerftKiwipete(t *testing.T) {
	g := mustLoad(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -")

	tests := []struct {
		depth    int
		expected int
	}{
		{1, 48},
		{2, 2039},
		{3, 97862},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := g.Perft(tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

// TestPerftPosition3 tests en passant edge cases.
// FEN: 8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -
func TestPerftPosition3(t *testing.T) {
	g := mustLoad(t, "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -")

	tests := []struct {
		depth    int
		expected int
	}{
		{1, 14},
		{2, 191},
		{3, 2812},
		{4, 43238},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := g.Perft(tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

// TestPerftPosition4 covers promotions and castling through checks.
func TestPerftPosition4(t *testing.T) {
	g := mustLoad(t, "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1")

	tests := []struct {
		depth    int
		expected int
	}{
		{1, 6},
		{2, 264},
		{3, 9467},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := g.Perft(tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

// TestPerftEnPassantPin tests the specific en passant horizontal pin edge case.
// FEN: 8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1
// Black pawn on e4 can capture en passant d3, but this would expose the black king
// on a4 to the white rook on h4.
func TestPerftEnPassantPin(t *testing.T) {
	g := mustLoad(t, "8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1")

	// The en passant capture should be illegal
	for _, m := range g.MovesVerbose() {
		if m.IsEnPassant() {
			t.Errorf("En passant move %v should be illegal (horizontal pin)", m)
		}
	}

	// Nor may FEN advertise it.
	if got := g.FEN(); got != "8/8/8/8/k2Pp2R/8/8/4K3 b - - 0 1" {
		t.Errorf("FEN() = %s, want the en passant field cleared", got)
	}

	// Depth 1: Ka3, Ka5, Kb3, Kb4, Kb5, e3 = 6 moves
	// Depth 2: After e4e3 (14), after king moves (16 each x5) = 14 + 80 = 94
	tests := []struct {
		depth    int
		expected int
	}{
		{1, 6},
		{2, 94},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := g.Perft(tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}
