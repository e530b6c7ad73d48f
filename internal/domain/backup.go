package domain

import "time"

// Backup is one completed dump artifact. A record exists only after its
// artifact has been fully stored; records are never mutated.
type Backup struct {
	ID         string
	DatabaseID string
	Key        string
	Bucket     string
	ETag       string
	CreatedAt  time.Time
}
