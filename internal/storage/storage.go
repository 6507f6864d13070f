package storage

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

// Storage keys
const (
	prefixGame = "game/"
	keyStats   = "stats"
)

// ErrNotFound is returned when no game is stored under the requested ID.
var ErrNotFound = errors.New("game not found")

// GameRecord is a stored game: enough to rebuild it (the PGN) plus the
// fields needed to list it without replaying.
type GameRecord struct {
	ID        string    `json:"id"`
	FEN       string    `json:"fen"`
	PGN       string    `json:"pgn"`
	Status    string    `json:"status"`
	Result    string    `json:"result"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Stats counts finished games.
type Stats struct {
	GamesFinished int            `json:"games_finished"`
	WhiteWins     int            `json:"white_wins"`
	BlackWins     int            `json:"black_wins"`
	Draws         int            `json:"draws"`
	ByStatus      map[string]int `json:"by_status"`
}

// NewStats returns empty statistics
func NewStats() *Stats {
	return &Stats{
		ByStatus: make(map[string]int),
	}
}

// DrawRate returns the share of finished games drawn, as a percentage (0-100)
func (s *Stats) DrawRate() float64 {
	if s.GamesFinished == 0 {
		return 0
	}
	return float64(s.Draws) / float64(s.GamesFinished) * 100
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// NewStorage opens the database in the platform data directory
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Open opens (or creates) the database in dir
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open database %s", dir)
	}

	return &Storage{db: db}, nil
}

// OpenInMemory opens a database that lives only as long as the process
func OpenInMemory() (*Storage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "open in-memory database")
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func gameKey(id string) []byte {
	return []byte(prefixGame + id)
}

// SaveGame stores rec under its ID, stamping CreatedAt on first save and
// UpdatedAt on every save
func (s *Storage) SaveGame(rec *GameRecord) error {
	if rec.ID == "" {
		return errors.New("game record has no id")
	}

	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	data, err := json.Marshal(rec)
	if err != nil {
		return errors.WithStack(err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gameKey(rec.ID), data)
	})
}

// LoadGame returns the game stored under id, or ErrNotFound
func (s *Storage) LoadGame(id string) (*GameRecord, error) {
	rec := &GameRecord{}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gameKey(id))
		if err == badger.ErrKeyNotFound {
			return errors.Wrapf(ErrNotFound, "id %s", id)
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, rec)
		})
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// DeleteGame removes the game stored under id, or returns ErrNotFound
func (s *Storage) DeleteGame(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(gameKey(id))
		if err == badger.ErrKeyNotFound {
			return errors.Wrapf(ErrNotFound, "id %s", id)
		}
		if err != nil {
			return err
		}
		return txn.Delete(gameKey(id))
	})
}

// ListGames returns every stored game, ordered by key
func (s *Storage) ListGames() ([]*GameRecord, error) {
	var games []*GameRecord

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixGame)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			rec := &GameRecord{}
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, rec)
			})
			if err != nil {
				return errors.Wrapf(err, "decode %s", it.Item().Key())
			}
			games = append(games, rec)
		}
		return nil
	})

	return games, err
}

// SaveStats saves game statistics
func (s *Storage) SaveStats(stats *Stats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return errors.WithStack(err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyStats), data)
	})
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*Stats, error) {
	stats := NewStats()

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyStats))
		if err == badger.ErrKeyNotFound {
			return nil // Use empty stats
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, stats)
		})
	})

	if stats.ByStatus == nil {
		stats.ByStatus = make(map[string]int)
	}
	return stats, err
}

// RecordResult counts a finished game with the given status and PGN
// result ("1-0", "0-1", "1/2-1/2")
func (s *Storage) RecordResult(status, result string) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.GamesFinished++
	stats.ByStatus[status]++

	switch result {
	case "1-0":
		stats.WhiteWins++
	case "0-1":
		stats.BlackWins++
	case "1/2-1/2":
		stats.Draws++
	}

	return s.SaveStats(stats)
}
