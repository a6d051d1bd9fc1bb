package models

import "time"

// Link is one shortened URL owned by a user. Code is unique across the
// whole registry and case-sensitive.
type Link struct {
	Code        string    `json:"short_code"`
	OwnerID     string    `json:"-"`
	OriginalURL string    `json:"original_url"`
	CreatedAt   time.Time `json:"created_at"`

	// Clicks is populated by listing queries, not stored on the row.
	Clicks int64 `json:"clicks"`
}
