package storage

import (
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"airbnb-pricer/models"
	"airbnb-pricer/utils"
)

// Key prefixes for the artifact store
const (
	frequencyKeyPrefix = "frequency:"
	modelKey           = "model:current"
)

// ErrArtifactNotFound is returned when a requested artifact was never stored.
var ErrArtifactNotFound = errors.New("artifact not found")

// ArtifactStore keeps model artifacts and frozen frequency snapshots in BadgerDB.
type ArtifactStore struct {
	db     *badger.DB
	logger *utils.Logger
}

// OpenArtifactStore opens (or creates) the store in dir.
func OpenArtifactStore(dir string, logger *utils.Logger) (*ArtifactStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("artifacts: create dir: %w", err)
	}
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	return openArtifactStore(opts, logger)
}

// OpenInMemoryArtifactStore opens a store that lives only as long as the process.
func OpenInMemoryArtifactStore(logger *utils.Logger) (*ArtifactStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return openArtifactStore(opts, logger)
}

func openArtifactStore(opts badger.Options, logger *utils.Logger) (*ArtifactStore, error) {
	if logger == nil {
		logger = utils.Nop()
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("artifacts: open badger: %w", err)
	}
	return &ArtifactStore{db: db, logger: logger}, nil
}

// SaveFrequencies stores a snapshot under its column name, replacing any earlier one.
func (s *ArtifactStore) SaveFrequencies(snap *models.FrequencySnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal frequency snapshot: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(frequencyKeyPrefix+snap.Column), data)
	})
	if err != nil {
		return fmt.Errorf("artifacts: save frequencies: %w", err)
	}
	s.logger.Info().Str("column", snap.Column).Int("categories", len(snap.Counts)).Msg("[artifacts] Frequency snapshot saved")
	return nil
}

// LoadFrequencies returns the snapshot stored for column.
func (s *ArtifactStore) LoadFrequencies(column string) (*models.FrequencySnapshot, error) {
	var snap models.FrequencySnapshot
	err := s.get(frequencyKeyPrefix+column, func(val []byte) error {
		return json.Unmarshal(val, &snap)
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// SaveModel stores the raw bytes of the active model artifact.
func (s *ArtifactStore) SaveModel(artifact []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(modelKey), artifact)
	})
	if err != nil {
		return fmt.Errorf("artifacts: save model: %w", err)
	}
	s.logger.Info().Int("bytes", len(artifact)).Msg("[artifacts] Model artifact saved")
	return nil
}

// LoadModel returns the raw bytes of the active model artifact.
func (s *ArtifactStore) LoadModel() ([]byte, error) {
	var out []byte
	err := s.get(modelKey, func(val []byte) error {
		out = append([]byte(nil), val...)
		return nil
	})
	return out, err
}

func (s *ArtifactStore) get(key string, fn func(val []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrArtifactNotFound, key)
		}
		if err != nil {
			return fmt.Errorf("artifacts: get %s: %w", key, err)
		}
		return item.Value(fn)
	})
}

// Close closes the underlying database.
func (s *ArtifactStore) Close() error {
	return s.db.Close()
}
