package model

import "time"

// Match is the persisted pairing between two users. User1ID and User2ID
// are stored in canonical order (smaller id first), so any (a, b) pair
// maps to exactly one row.
type Match struct {
	ID        int64     `json:"id"`
	User1ID   int64     `json:"user1_id"`
	User2ID   int64     `json:"user2_id"`
	View1     bool      `json:"view1"`
	View2     bool      `json:"view2"`
	CreatedAt time.Time `json:"created_at"`
}
