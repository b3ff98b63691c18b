package request

import "time"

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
	DisplayName string `json:"display_name" validate:"omitempty,max=64"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest is the request body for changing the public identity
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"omitempty,max=64"`
	AvatarURL   string `json:"avatar_url" validate:"omitempty,url,max=512"`
}

// SpendEnergyRequest is the request body for spending energy
type SpendEnergyRequest struct {
	Amount int `json:"amount" validate:"min=0"`
}

// GrantXPRequest is the request body for an administrator XP grant
type GrantXPRequest struct {
	Amount int    `json:"amount" validate:"min=0"`
	Reason string `json:"reason" validate:"omitempty,max=32"`
}

// CreateSeasonRequest is the request body for defining a season
type CreateSeasonRequest struct {
	Name     string    `json:"name" validate:"required,max=64"`
	StartsAt time.Time `json:"starts_at" validate:"required"`
	EndsAt   time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
}
