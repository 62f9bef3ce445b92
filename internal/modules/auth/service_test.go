package auth

import (
	"context"
	"testing"

	"campusbook/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	if u != nil {
		u.ID = 1
	}
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) ListByRole(ctx context.Context, role domain.UserRole, limit, offset int) ([]domain.User, int64, error) {
	args := m.Called(ctx, role, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockJWT struct {
	mock.Mock
}

func (m *MockJWT) GenerateToken(userID int64, role string) (string, error) {
	args := m.Called(userID, role)
	return args.String(0), args.Error(1)
}

func TestService_Register_Success(t *testing.T) {
	users := new(MockUserRepository)

	users.On("GetByEmail", mock.Anything, "new@campus.edu").Return(nil, gorm.ErrRecordNotFound)
	users.On("Create", mock.Anything, mock.Anything).Return(nil)

	service := NewService(users, new(MockJWT))

	user, err := service.Register(context.Background(), RegisterRequest{
		Name:     "New Student",
		Email:    "New@Campus.edu ",
		Password: "password123",
		Role:     "student",
	})

	assert.NoError(t, err)
	assert.Equal(t, "new@campus.edu", user.Email)
	assert.Equal(t, domain.RoleStudent, user.Role)
	assert.True(t, user.Active)
	assert.NotEqual(t, "password123", user.PasswordHash)
}

func TestService_Register_EmailTaken(t *testing.T) {
	users := new(MockUserRepository)

	users.On("GetByEmail", mock.Anything, "taken@campus.edu").Return(&domain.User{ID: 1}, nil)

	service := NewService(users, new(MockJWT))

	_, err := service.Register(context.Background(), RegisterRequest{
		Name: "x", Email: "taken@campus.edu", Password: "password123", Role: "student",
	})

	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestService_Register_AdminRoleRejected(t *testing.T) {
	service := NewService(new(MockUserRepository), new(MockJWT))

	_, err := service.Register(context.Background(), RegisterRequest{
		Name: "x", Email: "x@campus.edu", Password: "password123", Role: "admin",
	})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_Login_Success(t *testing.T) {
	users := new(MockUserRepository)
	jwt := new(MockJWT)

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	users.On("GetByEmail", mock.Anything, "s@campus.edu").Return(&domain.User{
		ID: 5, Email: "s@campus.edu", PasswordHash: string(hash),
		Role: domain.RoleStudent, Active: true,
	}, nil)
	jwt.On("GenerateToken", int64(5), "student").Return("token-abc", nil)
	users.On("UpdateLastLogin", mock.Anything, int64(5)).Return(nil)

	service := NewService(users, jwt)

	res, err := service.Login(context.Background(), LoginRequest{Email: "s@campus.edu", Password: "password123"})

	assert.NoError(t, err)
	assert.Equal(t, "token-abc", res.AccessToken)
	assert.Equal(t, int64(5), res.User.ID)
}

func TestService_Login_WrongPassword(t *testing.T) {
	users := new(MockUserRepository)

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	users.On("GetByEmail", mock.Anything, "s@campus.edu").Return(&domain.User{
		ID: 5, PasswordHash: string(hash), Role: domain.RoleStudent, Active: true,
	}, nil)

	service := NewService(users, new(MockJWT))

	_, err := service.Login(context.Background(), LoginRequest{Email: "s@campus.edu", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Login_UnknownEmail(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetByEmail", mock.Anything, "ghost@campus.edu").Return(nil, gorm.ErrRecordNotFound)

	service := NewService(users, new(MockJWT))

	_, err := service.Login(context.Background(), LoginRequest{Email: "ghost@campus.edu", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Login_InactiveAccount(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetByEmail", mock.Anything, "gone@campus.edu").Return(&domain.User{
		ID: 5, PasswordHash: "x", Role: domain.RoleStudent, Active: false,
	}, nil)

	service := NewService(users, new(MockJWT))

	_, err := service.Login(context.Background(), LoginRequest{Email: "gone@campus.edu", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Users_UnknownRole(t *testing.T) {
	service := NewService(new(MockUserRepository), new(MockJWT))

	_, _, err := service.Users(context.Background(), "janitor", 0, 0)
	assert.ErrorIs(t, err, ErrValidation)
}
