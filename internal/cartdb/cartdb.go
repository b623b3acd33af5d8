// Package cartdb persists one terminal's cart as a JSON blob in a local
// bbolt file, so an in-progress sale survives a restart.
package cartdb

import (
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/cashtill/tillgate/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	bucketCart = []byte("cart")
	keyCurrent = []byte("current")
)

type Store struct {
	db *bolt.DB
}

// Open creates or opens the cart database file.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open cart db %s", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCart)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "init cart bucket")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveCart replaces the stored cart blob.
func (s *Store) SaveCart(lines []domain.CartLine) error {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	blob, err := json.Marshal(lines)
	if err != nil {
		return errors.Wrap(err, "marshal cart")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCart).Put(keyCurrent, blob)
	})
}

// LoadCart returns the stored cart lines, or nil when none were ever saved.
func (s *Store) LoadCart() ([]domain.CartLine, error) {
	var blob []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketCart).Get(keyCurrent); v != nil {
			blob = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "read cart blob")
	}
	if blob == nil {
		return nil, nil
	}
	var lines []domain.CartLine
	if err := json.Unmarshal(blob, &lines); err != nil {
		return nil, errors.Wrap(err, "unmarshal cart")
	}
	return lines, nil
}
