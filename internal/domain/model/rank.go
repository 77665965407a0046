package model

// RankEntry is one row of the match-count aggregate. Derived at read
// time, never persisted.
type RankEntry struct {
	UserID   int64 `json:"user_id"`
	MatchQty int64 `json:"match_qty"`
}
