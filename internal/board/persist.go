package board

import (
	"encoding/json"
	"fmt"

	"boardsync/internal/model"
	"go.etcd.io/bbolt"
)

// Record is one board as stored: metadata plus the full drawable state.
type Record struct {
	Board model.Board     `json:"board"`
	Data  model.BoardData `json:"data"`
}

// Persister is the CRUD collaborator that keeps board snapshots across
// restarts. The realtime path never waits on it; the store flushes
// dirty boards in the background.
type Persister interface {
	LoadBoards() ([]Record, error)
	SaveBoard(rec Record) error
	DeleteBoard(boardID string) error
	Close() error
}

var bucketBoards = []byte("boards")

// BoltPersister stores one JSON record per board in a bbolt bucket.
type BoltPersister struct {
	db *bbolt.DB
}

func OpenBolt(path string) (*BoltPersister, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open board db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketBoards)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init board bucket: %w", err)
	}
	return &BoltPersister{db: db}, nil
}

func (p *BoltPersister) LoadBoards() ([]Record, error) {
	var records []Record
	err := p.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketBoards)
		return bucket.ForEach(func(k, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decode board %s: %w", k, err)
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (p *BoltPersister) SaveBoard(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode board %s: %w", rec.Board.ID, err)
	}
	return p.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketBoards).Put([]byte(rec.Board.ID), data)
	})
}

func (p *BoltPersister) DeleteBoard(boardID string) error {
	return p.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketBoards).Delete([]byte(boardID))
	})
}

func (p *BoltPersister) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}
