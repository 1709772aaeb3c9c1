package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Transcript is an archived query with the view rendered for it.
type Transcript struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	View      View      `json:"view"`
}

// NewTranscript stamps a view with its creation time. The ID sorts by time
// to the nanosecond and carries a short digest of the query, e.g.
// "20260102T030405123456789-1a2b3c4d". The same query archived twice at
// the same instant gets the same ID, and the later save replaces the
// earlier one.
func NewTranscript(v View, now time.Time) *Transcript {
	now = now.UTC()
	sum := sha256.Sum256([]byte(v.Query))
	return &Transcript{
		ID:        now.Format("20060102T150405") + fmt.Sprintf("%09d", now.Nanosecond()) + "-" + hex.EncodeToString(sum[:4]),
		CreatedAt: now,
		View:      v,
	}
}
