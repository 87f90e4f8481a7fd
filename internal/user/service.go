package user

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

type UpdateRequest struct {
	Name  string
	Email string
}

type Service struct {
	repo Repository
	cost int
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, cost: bcrypt.DefaultCost}
}

// ListUsers sorts by "name" or "email"; anything else falls back to name.
func (s *Service) ListUsers(ctx context.Context, sortBy string) ([]User, error) {
	if _, ok := sortColumns[sortBy]; !ok {
		sortBy = "name"
	}
	return s.repo.List(ctx, sortBy)
}

func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) RegisterUser(ctx context.Context, req RegisterRequest) (User, error) {
	name, email, err := normalize(req.Name, req.Email)
	if err != nil {
		return User{}, err
	}
	if len(req.Password) < 6 || len(req.Password) > 72 {
		return User{}, fmt.Errorf("%w: password must be between 6 and 72 characters", ErrInvalidUser)
	}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if exists {
		return User{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	u := User{Name: name, Email: email, Role: RoleUser, PasswordHash: string(hash)}
	if err := s.repo.Create(ctx, &u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) UpdateUser(ctx context.Context, id int64, req UpdateRequest) (User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, err
	}

	name, email, err := normalize(req.Name, req.Email)
	if err != nil {
		return User{}, err
	}
	u.Name, u.Email = name, email

	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ChangePassword(ctx context.Context, id int64, oldPassword, newPassword string) error {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidOldPassword
	}
	if len(newPassword) < 6 || len(newPassword) > 72 {
		return fmt.Errorf("%w: password must be between 6 and 72 characters", ErrInvalidUser)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, id, string(hash))
}

func normalize(name, email string) (string, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return "", "", fmt.Errorf("%w: name is required", ErrInvalidUser)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", "", fmt.Errorf("%w: email is invalid", ErrInvalidUser)
	}
	return name, email, nil
}
