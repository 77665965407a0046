package dto

type RankItemResponse struct {
	UserID   int64            `json:"user_id"`
	MatchQty int64            `json:"match_qty"`
	Profile  *ProfileResponse `json:"profile,omitempty"`
}

type RankResponse struct {
	Items []RankItemResponse `json:"items"`
}
