// Package store persists bookmark markers across sessions in a bolt
// database, keyed by document.
package store

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	bolt "go.etcd.io/bbolt"

	"github.com/editkit/editkit/marker"
)

var bucketBookmarks = []byte("bookmarks")

// Store is a bolt-backed bookmark database. It is safe for concurrent
// use; bolt serializes writers internally.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening bookmark store %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketBookmarks)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing bookmark store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveBookmarks replaces the persisted bookmarks for docKey. Only
// bookmark-kind markers are stored; transient markers like cursors and
// search results do not survive a session.
func (s *Store) SaveBookmarks(docKey string, markers []marker.Marker) error {
	doc := "[]"
	for _, m := range markers {
		if m.Type.Kind != marker.KindBookmark {
			continue
		}
		entry, _ := sjson.Set("", "name", m.Name)
		entry, _ = sjson.Set(entry, "position", m.Position)
		if m.Data != "" {
			entry, _ = sjson.SetRaw(entry, "data", m.Data)
		}
		doc, _ = sjson.SetRaw(doc, "-1", entry)
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBookmarks).Put([]byte(docKey), []byte(doc))
	})
	if err != nil {
		return fmt.Errorf("saving bookmarks for %s: %w", docKey, err)
	}
	return nil
}

// LoadBookmarks returns the persisted bookmarks for docKey, in saved
// order. An unknown key yields an empty slice.
func (s *Store) LoadBookmarks(docKey string) ([]marker.Marker, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketBookmarks).Get([]byte(docKey))
		if v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading bookmarks for %s: %w", docKey, err)
	}
	if raw == nil {
		return nil, nil
	}

	var markers []marker.Marker
	gjson.ParseBytes(raw).ForEach(func(_, entry gjson.Result) bool {
		m := marker.Marker{
			Name:     entry.Get("name").String(),
			Position: entry.Get("position").Int(),
			Type:     marker.Bookmark(),
		}
		if data := entry.Get("data"); data.Exists() {
			m.Data = data.Raw
		}
		markers = append(markers, m)
		return true
	})
	return markers, nil
}

// DeleteBookmarks removes the persisted bookmarks for docKey.
func (s *Store) DeleteBookmarks(docKey string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBookmarks).Delete([]byte(docKey))
	})
	if err != nil {
		return fmt.Errorf("deleting bookmarks for %s: %w", docKey, err)
	}
	return nil
}

// DocKeys lists every document with persisted bookmarks.
func (s *Store) DocKeys() ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBookmarks).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("listing bookmark documents: %w", err)
	}
	return keys, nil
}
