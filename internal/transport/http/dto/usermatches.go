package dto

import "time"

type UserMatchItemResponse struct {
	UserMatchID int64            `json:"user_match_id"`
	MatchID     int64            `json:"match_id"`
	User1ID     int64            `json:"user1_id"`
	User2ID     int64            `json:"user2_id"`
	View1       bool             `json:"view1"`
	View2       bool             `json:"view2"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Profile     *ProfileResponse `json:"profile,omitempty"`
}

type MyMatchesResponse struct {
	Count    int                     `json:"count"`
	Degraded bool                    `json:"degraded"`
	Me       *ProfileResponse        `json:"me,omitempty"`
	Items    []UserMatchItemResponse `json:"items"`
}

type MarkSeenRequest struct {
	TargetID int64 `json:"target_id"`
}

type MarkSeenResponse struct {
	OK bool `json:"ok"`
}
