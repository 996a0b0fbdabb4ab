package activity

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one audit record: who did what to which entity, and when.
type Entry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *Entry) normalize() {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
}
