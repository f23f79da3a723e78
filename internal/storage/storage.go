// Package storage archives games in BadgerDB so they survive a restart.
// A game is stored as the ordered list of accepted move requests and is
// rebuilt by replaying them through the rules engine.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/dgraph-io/badger/v4"
)

const gameKeyPrefix = "game/"

var ErrNotFound = errors.New("game record not found")

// GameRecord is the persisted form of a game.
type GameRecord struct {
	ID        string              `json:"id"`
	White     string              `json:"white"`
	Black     string              `json:"black"`
	Moves     []model.MoveRequest `json:"moves"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// NewRecord captures the current state of g.
func NewRecord(g *model.Game) GameRecord {
	white, black := g.Players()
	return GameRecord{
		ID:        g.ID,
		White:     white,
		Black:     black,
		Moves:     g.Moves(),
		CreatedAt: g.CreatedAt,
	}
}

// Restore rebuilds a live game from the record.
func (r GameRecord) Restore(clock time.Duration) (*model.Game, error) {
	g := model.NewGame(r.ID, clock)
	g.CreatedAt = r.CreatedAt
	if err := g.Restore(r.White, r.Black, r.Moves); err != nil {
		return nil, fmt.Errorf("restore game %s: %w", r.ID, err)
	}
	return g, nil
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// Options selects where the database lives. InMemory ignores Dir.
type Options struct {
	Dir      string
	InMemory bool
}

func Open(opts Options) (*Storage, error) {
	bopts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts.Logger = nil // Disable logging

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
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
	return []byte(gameKeyPrefix + id)
}

// SaveGame writes rec, stamping UpdatedAt.
func (s *Storage) SaveGame(rec GameRecord) error {
	rec.UpdatedAt = time.Now()
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gameKey(rec.ID), data)
	})
}

// LoadGame returns the record for id or ErrNotFound.
func (s *Storage) LoadGame(id string) (GameRecord, error) {
	var rec GameRecord

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gameKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})

	return rec, err
}

// ListGames returns every archived record, most recently updated first.
func (s *Storage) ListGames() ([]GameRecord, error) {
	records := []GameRecord{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(gameKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec GameRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})
	return records, nil
}

func (s *Storage) DeleteGame(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(gameKey(id))
	})
}
