package client

import (
	"sync"
	"time"

	"boardsync/internal/model"
	"github.com/google/uuid"
)

// Reconciler owns the local mirror of a board: shapes in drawing order
// plus the set of known ids. It merges the initial snapshot, the user's
// own optimistic draws, and remote broadcasts without duplication. All
// state changes go through its methods.
type Reconciler struct {
	mu     sync.Mutex
	shapes []model.Shape
	known  map[string]struct{}
}

func NewReconciler() *Reconciler {
	return &Reconciler{known: make(map[string]struct{})}
}

// ApplySync replaces the local state wholesale with the server
// snapshot.
func (r *Reconciler) ApplySync(shapes []model.Shape) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shapes = make([]model.Shape, len(shapes))
	copy(r.shapes, shapes)
	r.known = make(map[string]struct{}, len(shapes))
	for _, sh := range shapes {
		r.known[sh.ID] = struct{}{}
	}
}

// LocalDraw stamps a fresh id and timestamp onto the shape and inserts
// it optimistically; the shape is visible before the server confirms.
// Returns the completed shape to send.
func (r *Reconciler) LocalDraw(shape model.Shape) model.Shape {
	shape.ID = uuid.NewString()
	shape.CreatedAt = time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.shapes = append(r.shapes, shape)
	r.known[shape.ID] = struct{}{}
	return shape
}

// ApplyDraw merges a broadcast shape. A reconnect race can redeliver a
// shape the client already holds; known ids are skipped. Reports
// whether the shape was added.
func (r *Reconciler) ApplyDraw(shape model.Shape) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.known[shape.ID]; ok {
		return false
	}
	r.shapes = append(r.shapes, shape)
	r.known[shape.ID] = struct{}{}
	return true
}

// ApplyDelete removes by id. Idempotent; unknown ids are ignored.
func (r *Reconciler) ApplyDelete(shapeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.known[shapeID]; !ok {
		return
	}
	for i, sh := range r.shapes {
		if sh.ID == shapeID {
			r.shapes = append(r.shapes[:i], r.shapes[i+1:]...)
			break
		}
	}
	delete(r.known, shapeID)
}

func (r *Reconciler) ApplyClear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shapes = nil
	r.known = make(map[string]struct{})
}

// Shapes returns a copy of the local list in drawing order.
func (r *Reconciler) Shapes() []model.Shape {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Shape, len(r.shapes))
	copy(out, r.shapes)
	return out
}

func (r *Reconciler) Knows(shapeID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.known[shapeID]
	return ok
}
