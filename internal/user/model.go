package user

import "errors"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID           int64
	Name         string
	Email        string
	Role         Role
	PasswordHash string
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidOldPassword = errors.New("the current password is incorrect")
	ErrInvalidUser        = errors.New("invalid user")
)
