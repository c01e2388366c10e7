package fsstore

import (
	"bytes"
	"encoding/gob"
	"errors"

	"github.com/dgraph-io/badger/v4"
)

// cacheVersion is incremented when the entry format changes. Entries
// written by another version are treated as misses.
const cacheVersion = 2

// keySeparator separates root from relative path in cache keys.
const keySeparator = '\x00'

var errCacheMiss = errors.New("metadata cache miss")

// cachedMeta is the parsed metadata of one file, valid while the file's
// size and mtime are unchanged.
type cachedMeta struct {
	Version   int
	Size      int64
	Mtime     int64 // UnixNano
	CreatedAt int64 // UnixNano, 0 when unknown
	Width     int
	Height    int
	Duration  int64 // nanoseconds
}

func (m *cachedMeta) encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m *cachedMeta) decode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(m)
}

// fresh reports whether the entry still describes a file of this size
// and mtime.
func (m *cachedMeta) fresh(size, mtime int64) bool {
	return m.Version == cacheVersion && m.Size == size && m.Mtime == mtime
}

func makeKey(root, relPath string) []byte {
	return []byte(root + string(keySeparator) + relPath)
}

// metaCache persists parsed metadata in badger so repeat loads skip
// EXIF and container parsing for unchanged files.
type metaCache struct {
	db *badger.DB
}

func openMetaCache(path string) (*metaCache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &metaCache{db: db}, nil
}

func (c *metaCache) close() error {
	return c.db.Close()
}

func (c *metaCache) get(root, relPath string) (*cachedMeta, error) {
	var m cachedMeta
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(makeKey(root, relPath))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errCacheMiss
		}
		if err != nil {
			return err
		}
		return item.Value(m.decode)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// putBatch stores entries keyed by relative path in one write batch.
func (c *metaCache) putBatch(root string, entries map[string]*cachedMeta) error {
	if len(entries) == 0 {
		return nil
	}

	wb := c.db.NewWriteBatch()
	defer wb.Cancel()

	for relPath, m := range entries {
		value, err := m.encode()
		if err != nil {
			return err
		}
		if err := wb.Set(makeKey(root, relPath), value); err != nil {
			return err
		}
	}
	return wb.Flush()
}

func (c *metaCache) deleteKeys(root string, relPaths []string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		for _, rel := range relPaths {
			if err := txn.Delete(makeKey(root, rel)); err != nil {
				return err
			}
		}
		return nil
	})
}
