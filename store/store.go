package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/somnia-sleep/somnia/internal/osutil"
)

const blobBucket = "somnia"

// Bolt is a bbolt-backed KV that keeps every blob in a single bucket.
type Bolt struct {
	*bolt.DB
}

func (b *Bolt) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte

	err := b.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(blobBucket)).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}

		// bbolt values are only valid for the life of the transaction
		value = append([]byte(nil), v...)

		return nil
	})

	return value, err
}

func (b *Bolt) Put(_ context.Context, key string, value []byte) error {
	err := b.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(blobBucket)).Put([]byte(key), value)
	})
	if err != nil {
		return errStorage.Fmt(key).Wrap(err)
	}

	return nil
}

func (b *Bolt) Delete(_ context.Context, key string) error {
	err := b.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(blobBucket)).Delete([]byte(key))
	})
	if err != nil {
		return errStorage.Fmt(key).Wrap(err)
	}

	return nil
}

// openDB creates or opens a database and locks it.
func openDB(pathToDB string) (*bolt.DB, error) {
	var fileMode fs.FileMode = osutil.FilePermission

	err := os.MkdirAll(filepath.Dir(pathToDB), osutil.DirPermission)
	if err != nil {
		return nil, err
	}

	db, err := bolt.Open(
		pathToDB,
		fileMode,
		&bolt.Options{Timeout: 1 * time.Second},
	)
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, errSomniaRunning
		}

		return nil, err
	}

	return db, nil
}

// NewBolt opens the database at dbPath and creates the blob bucket if it
// does not exist yet.
func NewBolt(dbPath string) (*Bolt, error) {
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err = tx.CreateBucketIfNotExists([]byte(blobBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Bolt{
		db,
	}, nil
}
