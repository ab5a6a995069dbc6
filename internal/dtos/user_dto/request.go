package user_dto

type LoginRequest struct {
	Credential string `json:"credential" validate:"required"` // username or email
	Password   string `json:"password" validate:"required,min=8"`
}
