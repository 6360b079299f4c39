package dto

type RegisterRequest struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email"`
	FirstPassword   string `json:"first_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type DeleteImageRequest struct {
	FileID string `json:"file_id" binding:"required"`
}
