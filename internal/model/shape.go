package model

import (
	"errors"
	"fmt"
	"time"
)

// Shape kinds. The string values are part of the wire format.
const (
	KindPath   = "path"
	KindLine   = "line"
	KindRect   = "rect"
	KindCircle = "circle"
	KindText   = "text"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Shape is one drawn primitive. It is immutable once accepted by the
// board store; edits are modeled as delete + recreate. The id is
// client-generated and serves as the de-duplication key, so field names
// must stay stable across serialize/deserialize.
type Shape struct {
	ID        string    `json:"id"`
	Kind      string    `json:"type"`
	Points    []Point   `json:"points,omitempty"`
	X         float64   `json:"x,omitempty"`
	Y         float64   `json:"y,omitempty"`
	Width     float64   `json:"width,omitempty"`
	Height    float64   `json:"height,omitempty"`
	Radius    float64   `json:"radius,omitempty"`
	Text      string    `json:"text,omitempty"`
	Color     string    `json:"color"`
	LineWidth float64   `json:"lineWidth"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

var (
	ErrMissingID      = errors.New("shape id is required")
	ErrUnknownKind    = errors.New("unknown shape kind")
	ErrTooFewPoints   = errors.New("not enough points")
	ErrNegativeExtent = errors.New("negative extent")
	ErrBadLineWidth   = errors.New("line width must be positive")
)

// Validate checks the per-kind geometry constraints. Shapes failing
// validation are rejected by the sync engine, never repaired.
func (s Shape) Validate() error {
	if s.ID == "" {
		return ErrMissingID
	}
	if s.LineWidth <= 0 {
		return fmt.Errorf("shape %s: %w", s.ID, ErrBadLineWidth)
	}

	switch s.Kind {
	case KindPath:
		if len(s.Points) < 1 {
			return fmt.Errorf("path %s: %w (need at least 1)", s.ID, ErrTooFewPoints)
		}
	case KindLine:
		if len(s.Points) < 2 {
			return fmt.Errorf("line %s: %w (need at least 2)", s.ID, ErrTooFewPoints)
		}
	case KindRect:
		if s.Width < 0 || s.Height < 0 {
			return fmt.Errorf("rect %s: %w", s.ID, ErrNegativeExtent)
		}
	case KindCircle:
		if s.Radius < 0 {
			return fmt.Errorf("circle %s: %w", s.ID, ErrNegativeExtent)
		}
	case KindText:
		// Any content, including empty, is accepted.
	default:
		return fmt.Errorf("shape %s: %w %q", s.ID, ErrUnknownKind, s.Kind)
	}
	return nil
}
