package board

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"boardsync/internal/model"
	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("board not found")
	ErrInvalidShape = errors.New("invalid shape")
)

// Store is the authoritative owner of board state. Board membership of
// the map is guarded by mu; each board carries its own lock so two
// boards never contend with each other.
type Store struct {
	mu     sync.RWMutex
	boards map[string]*boardState

	persister Persister
}

type boardState struct {
	mu      sync.Mutex
	meta    model.Board
	shapes  []model.Shape
	present map[string]struct{}
	version int
	dirty   bool
}

func New() *Store {
	return &Store{boards: make(map[string]*boardState)}
}

// NewWithPersister loads previously saved boards from p and keeps it
// attached for Flush. Load failures skip the bad record, never fail
// startup wholesale.
func NewWithPersister(p Persister) (*Store, error) {
	s := New()
	s.persister = p

	records, err := p.LoadBoards()
	if err != nil {
		return nil, fmt.Errorf("load boards: %w", err)
	}
	for _, rec := range records {
		if rec.Board.ID == "" {
			continue
		}
		st := &boardState{
			meta:    rec.Board,
			shapes:  rec.Data.Objects,
			present: make(map[string]struct{}, len(rec.Data.Objects)),
			version: rec.Data.Version,
		}
		for _, sh := range rec.Data.Objects {
			st.present[sh.ID] = struct{}{}
		}
		s.boards[rec.Board.ID] = st
	}
	return s, nil
}

func (s *Store) CreateBoard(projectID, name string) model.Board {
	now := time.Now().UTC()
	meta := model.Board{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.boards[meta.ID] = &boardState{
		meta:    meta,
		present: make(map[string]struct{}),
		dirty:   true,
	}
	s.mu.Unlock()
	return meta
}

func (s *Store) GetBoard(boardID string) (model.Board, error) {
	st, err := s.get(boardID)
	if err != nil {
		return model.Board{}, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.meta, nil
}

func (s *Store) ListBoards(projectID string) []model.Board {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Board, 0)
	for _, st := range s.boards {
		st.mu.Lock()
		if st.meta.ProjectID == projectID {
			result = append(result, st.meta)
		}
		st.mu.Unlock()
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

func (s *Store) RenameBoard(boardID, name string) (model.Board, error) {
	st, err := s.get(boardID)
	if err != nil {
		return model.Board{}, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.meta.Name = name
	st.meta.UpdatedAt = time.Now().UTC()
	st.dirty = true
	return st.meta, nil
}

// GetSnapshot returns the shapes in drawing order plus the current
// version. The slice is a copy; callers may hold it across mutations.
func (s *Store) GetSnapshot(boardID string) (model.BoardData, error) {
	st, err := s.get(boardID)
	if err != nil {
		return model.BoardData{}, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	shapes := make([]model.Shape, len(st.shapes))
	copy(shapes, st.shapes)
	return model.BoardData{Objects: shapes, Version: st.version}, nil
}

// AppendShape validates and appends one shape, returning the new
// version and whether the shape was actually added. A duplicate id is
// a no-op success with added=false: retried network sends must not
// create visual duplicates, and callers should not rebroadcast them.
func (s *Store) AppendShape(boardID string, shape model.Shape) (int, bool, error) {
	if err := shape.Validate(); err != nil {
		return 0, false, fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}

	st, err := s.get(boardID)
	if err != nil {
		return 0, false, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if _, dup := st.present[shape.ID]; dup {
		return st.version, false, nil
	}
	st.shapes = append(st.shapes, shape)
	st.present[shape.ID] = struct{}{}
	st.version++
	st.meta.UpdatedAt = time.Now().UTC()
	st.dirty = true
	return st.version, true, nil
}

// RemoveShape removes by id. An absent id is a no-op that leaves the
// version untouched.
func (s *Store) RemoveShape(boardID, shapeID string) (int, error) {
	st, err := s.get(boardID)
	if err != nil {
		return 0, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.present[shapeID]; !ok {
		return st.version, nil
	}
	for i, sh := range st.shapes {
		if sh.ID == shapeID {
			st.shapes = append(st.shapes[:i], st.shapes[i+1:]...)
			break
		}
	}
	delete(st.present, shapeID)
	st.version++
	st.meta.UpdatedAt = time.Now().UTC()
	st.dirty = true
	return st.version, nil
}

func (s *Store) Clear(boardID string) (int, error) {
	st, err := s.get(boardID)
	if err != nil {
		return 0, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.shapes = nil
	st.present = make(map[string]struct{})
	st.version++
	st.meta.UpdatedAt = time.Now().UTC()
	st.dirty = true
	return st.version, nil
}

func (s *Store) DeleteBoard(boardID string) error {
	s.mu.Lock()
	_, ok := s.boards[boardID]
	delete(s.boards, boardID)
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	if s.persister != nil {
		if err := s.persister.DeleteBoard(boardID); err != nil {
			log.Printf("board store: delete %s from persister: %v", boardID, err)
		}
	}
	return nil
}

// Flush writes every dirty board through the persister. Safe to call
// with no persister attached.
func (s *Store) Flush() {
	if s.persister == nil {
		return
	}

	s.mu.RLock()
	states := make([]*boardState, 0, len(s.boards))
	for _, st := range s.boards {
		states = append(states, st)
	}
	s.mu.RUnlock()

	for _, st := range states {
		st.mu.Lock()
		if !st.dirty {
			st.mu.Unlock()
			continue
		}
		rec := Record{Board: st.meta}
		rec.Data.Objects = make([]model.Shape, len(st.shapes))
		copy(rec.Data.Objects, st.shapes)
		rec.Data.Version = st.version
		st.dirty = false
		st.mu.Unlock()

		if err := s.persister.SaveBoard(rec); err != nil {
			log.Printf("board store: save %s: %v", rec.Board.ID, err)
			st.mu.Lock()
			st.dirty = true
			st.mu.Unlock()
		}
	}
}

// FlushLoop flushes on the given interval until stop closes, then once
// more on the way out.
func (s *Store) FlushLoop(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Flush()
		case <-stop:
			s.Flush()
			return
		}
	}
}

func (s *Store) get(boardID string) (*boardState, error) {
	s.mu.RLock()
	st, ok := s.boards[boardID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return st, nil
}
