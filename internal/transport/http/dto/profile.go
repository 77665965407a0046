package dto

type ProfileResponse struct {
	UserID      int64  `json:"user_id"`
	Name        string `json:"name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	ImageURL    string `json:"image_url"`
	Description string `json:"description"`
}
