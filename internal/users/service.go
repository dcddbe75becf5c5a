package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/stokkas/stokkas/internal/auth"
	"github.com/stokkas/stokkas/internal/platform/httpx"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]Admin, error)
	GetUser(ctx context.Context, id int64) (Admin, error)
	UpdateUser(ctx context.Context, id int64, input UpdateInput) (Admin, error)
	DeleteUser(ctx context.Context, id int64) error
}

// Service handles user business logic.
type Service struct {
	repo RepositoryPort
	cost int
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListUsers returns all users keyed for table display.
func (s *Service) ListUsers(ctx context.Context) ([]AdminRow, error) {
	admins, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]AdminRow, 0, len(admins))
	for _, a := range admins {
		rows = append(rows, AdminRow{Key: a.Key(), Admin: a})
	}
	return rows, nil
}

// GetUser returns a single account.
func (s *Service) GetUser(ctx context.Context, id int64) (Admin, error) {
	return s.repo.GetUser(ctx, id)
}

// UpdateUser renames the account. The password is replaced only when the new
// value has at least auth.MinPasswordLength characters; shorter values are ignored.
func (s *Service) UpdateUser(ctx context.Context, id int64, username, password string) (Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Admin{}, fmt.Errorf("%w: username is required", httpx.ErrValidation)
	}
	input := UpdateInput{Username: username}
	if len(password) >= auth.MinPasswordLength {
		hash, err := auth.HashPassword(password, s.cost)
		if err != nil {
			return Admin{}, err
		}
		input.PasswordHash = hash
	}
	return s.repo.UpdateUser(ctx, id, input)
}

// DeleteUser removes an account. Deleting your own account is refused.
func (s *Service) DeleteUser(ctx context.Context, actorID, id int64) error {
	if actorID != 0 && actorID == id {
		return fmt.Errorf("%w: tidak dapat menghapus akun sendiri", httpx.ErrForbidden)
	}
	return s.repo.DeleteUser(ctx, id)
}
