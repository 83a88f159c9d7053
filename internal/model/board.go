package model

import "time"

// Board is the metadata of one collaborative canvas. Its shape list and
// version live in the board store; they travel together as a BoardData
// snapshot.
type Board struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BoardData is the full drawable state of a board: shapes in drawing
// order plus the version counter bumped on every accepted mutation.
type BoardData struct {
	Objects []Shape `json:"objects"`
	Version int     `json:"version"`
}
