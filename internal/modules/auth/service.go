package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"campusbook/internal/domain"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Service struct {
	users UserRepository
	jwt   jwtService
}

type LoginResult struct {
	User        *domain.User
	AccessToken string
}

func NewService(users UserRepository, jwt jwtService) *Service {
	return &Service{users: users, jwt: jwt}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	role := domain.UserRole(req.Role)
	// Admin accounts are provisioned out of band, never through self-signup.
	if role != domain.RoleStudent && role != domain.RoleTeacher {
		return nil, fmt.Errorf("%w: role must be student or teacher", ErrValidation)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Phone:        req.Phone,
		Department:   req.Department,
		Role:         role,
		Active:       true,
	}
	if role == domain.RoleTeacher {
		user.Subject = req.Subject
		user.Office = req.Office
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Active {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	_ = s.users.UpdateLastLogin(ctx, user.ID)

	return &LoginResult{User: user, AccessToken: token}, nil
}

func (s *Service) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// Teachers is the public directory students browse before booking.
func (s *Service) Teachers(ctx context.Context, limit, offset int) ([]domain.User, int64, error) {
	return s.users.ListByRole(ctx, domain.RoleTeacher, limit, offset)
}

// Users lists accounts for the admin console, optionally narrowed by role.
func (s *Service) Users(ctx context.Context, role domain.UserRole, limit, offset int) ([]domain.User, int64, error) {
	if role != "" && !domain.ValidRole(role) {
		return nil, 0, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	return s.users.ListByRole(ctx, role, limit, offset)
}
