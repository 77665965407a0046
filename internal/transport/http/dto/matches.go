package dto

import "time"

type CreateMatchRequest struct {
	User1ID int64 `json:"user1_id"`
	User2ID int64 `json:"user2_id"`
}

type CreateMatchResponse struct {
	MatchID int64 `json:"match_id"`
	ChatID  int64 `json:"chat_id"`
}

type MatchResponse struct {
	ID        int64     `json:"id"`
	User1ID   int64     `json:"user1_id"`
	User2ID   int64     `json:"user2_id"`
	View1     bool      `json:"view1"`
	View2     bool      `json:"view2"`
	CreatedAt time.Time `json:"created_at"`
}

type MatchListResponse struct {
	Count int             `json:"count"`
	Items []MatchResponse `json:"items"`
}

type UpdateMatchRequest struct {
	User1ID int64 `json:"user1_id"`
	User2ID int64 `json:"user2_id"`
}

type UpdateMatchResponse struct {
	OK      bool `json:"ok"`
	Updated bool `json:"updated"`
}

type DeleteMatchResponse struct {
	OK bool `json:"ok"`
}
