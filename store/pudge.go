package store

import (
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/recoilme/pudge"

	"krist-explorer/listing"
	"krist-explorer/models"
	"krist-explorer/utils"
)

const (
	historyKey = "history"
	walletsKey = "wallets"
)

// Store keeps explorer state between runs in a pudge key/value file.
// Values are stored as JSON.
type Store struct {
	db   *pudge.Db
	path string
	mu   sync.Mutex
}

// Open opens (or creates) the state file
func Open(path string) (*Store, error) {
	if err := utils.EnsureDirectory(filepath.Dir(path)); err != nil {
		return nil, errors.Wrap(err, "creating state directory")
	}

	db, err := pudge.Open(path, &pudge.Config{
		SyncInterval: 1,
		FileMode:     0o644,
		DirMode:      0o755,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "opening state file %s", path)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the state file location
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	return errors.Wrap(s.db.Close(), "closing state file")
}

func (s *Store) load(key string, out any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw []byte
	if err := s.db.Get(key, &raw); err != nil {
		if errors.Is(err, pudge.ErrKeyNotFound) {
			return false, nil
		}
		return false, errors.Wrapf(err, "reading %s", key)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, errors.Wrapf(err, "decoding %s", key)
	}
	return true, nil
}

func (s *Store) save(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Wrapf(s.db.Set(key, raw), "writing %s", key)
}

// LoadHistory implements listing.Backend
func (s *Store) LoadHistory() (*listing.Snapshot, error) {
	var snap listing.Snapshot
	found, err := s.load(historyKey, &snap)
	if err != nil || !found {
		return nil, err
	}
	return &snap, nil
}

// SaveHistory implements listing.Backend
func (s *Store) SaveHistory(snap *listing.Snapshot) error {
	return s.save(historyKey, snap)
}

// LoadWallets returns the saved wallets, or none
func (s *Store) LoadWallets() ([]models.Wallet, error) {
	var wallets []models.Wallet
	if _, err := s.load(walletsKey, &wallets); err != nil {
		return nil, err
	}
	return wallets, nil
}

// SaveWallets replaces the saved wallets
func (s *Store) SaveWallets(wallets []models.Wallet) error {
	return s.save(walletsKey, wallets)
}
