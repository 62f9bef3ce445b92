package auth

import (
	"context"

	"campusbook/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListByRole(ctx context.Context, role domain.UserRole, limit, offset int) ([]domain.User, int64, error)
	UpdateLastLogin(ctx context.Context, id int64) error
}

type jwtService interface {
	GenerateToken(userID int64, role string) (string, error)
}
