package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type User struct {
	Username     string     `json:"username"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"password,omitempty"`
	Active       bool       `json:"active"`
	RoleID       int        `json:"role_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

type UpdateUserRequest struct {
	Username string  `json:"username"`
	Name     *string `json:"name"`
	Active   *bool   `json:"active"`
	RoleID   *int    `json:"role_id"`
}

type Claims struct {
	Username   string
	UserName   string
	UserActive bool
	UserRoleID int
	jwt.RegisteredClaims
}
