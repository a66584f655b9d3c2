package auth

import (
	"time"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/user"
)

type LoginInput struct {
	TenantSlug string `json:"tenant" validate:"required,max=64"`
	Email      string `json:"email" validate:"required,email,max=255"`
	Password   string `json:"password" validate:"required,max=72"`
}

type LoginResult struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      *user.User `json:"user"`
}

type ChangePasswordInput struct {
	Current string `json:"current_password" validate:"required"`
	New     string `json:"new_password" validate:"required"`
}
