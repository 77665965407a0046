package model

// Profile is the user summary served by the remote users service. Only
// the fields this service consumes are modeled.
type Profile struct {
	UserID      int64  `json:"user_id"`
	Name        string `json:"name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	ImageURL    string `json:"image_url"`
	Description string `json:"description"`
}
