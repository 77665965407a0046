package model

import "time"

// UserMatch is the "have these two users seen each other" ledger,
// tracked separately from the per-match view flags. The pair is stored
// in canonical order like Match.
type UserMatch struct {
	ID        int64     `json:"id"`
	User1ID   int64     `json:"user1_id"`
	User2ID   int64     `json:"user2_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
