package match

import (
	"sync"
	"time"

	"github.com/hailam/chessmate/internal/board"
)

// Status is the lifecycle state of a game.
type Status string

const (
	StatusOngoing   Status = "ongoing"
	StatusCheckmate Status = "checkmate"
	StatusStalemate Status = "stalemate"
	StatusDraw      Status = "draw"
	StatusResigned  Status = "resigned"
	StatusAbandoned Status = "abandoned"
)

// Finished reports whether the status is terminal.
func (s Status) Finished() bool {
	return s != StatusOngoing
}

// Snapshot is a copy of a game's state, safe to hand out.
type Snapshot struct {
	ID     string
	FEN    string
	PGN    string
	Turn   board.Color
	Status Status
	Result string
	Check  bool
	// SAN is the move just played or taken back, if any.
	SAN string
}

type session struct {
	mu        sync.Mutex
	id        string
	game      *board.Game
	status    Status
	result    string
	createdAt time.Time

	// abandon is the pending Leave timer. gen is bumped whenever it is
	// stopped so a timer that already fired can tell it lost.
	abandon *time.Timer
	gen     int
}

func (s *session) snapshot(san string) Snapshot {
	return Snapshot{
		ID:     s.id,
		FEN:    s.game.FEN(),
		PGN:    s.game.PGN(),
		Turn:   s.game.Turn(),
		Status: s.status,
		Result: s.result,
		Check:  s.game.InCheck(),
		SAN:    san,
	}
}

// stopTimer cancels the pending abandon timer and reports whether there
// was one.
func (s *session) stopTimer() bool {
	s.gen++
	if s.abandon == nil {
		return false
	}
	s.abandon.Stop()
	s.abandon = nil
	return true
}
