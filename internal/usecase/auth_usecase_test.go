package usecase_test

import (
	"context"
	"testing"
	"time"

	"limpopo-api/internal/auth"
	"limpopo-api/internal/domain/model"
	"limpopo-api/internal/repository"
	"limpopo-api/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// =====================
// Mock: UserRepository
// =====================

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

// =====================
// Mock: AuthValidator
// =====================

type MockAuthValidator struct {
	mock.Mock
}

func (m *MockAuthValidator) ValidateRegister(ctx context.Context, email string, password string, name string) error {
	args := m.Called(ctx, email, password, name)
	return args.Error(0)
}

func (m *MockAuthValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

// =====================
// Helper
// =====================

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	return string(b)
}

func testTokens() *auth.TokenService {
	return auth.NewTokenService(func() (string, error) { return "test-secret", nil }, 15*time.Minute, 7*24*time.Hour)
}

func newAuthUC(users *MockUserRepository, v *MockAuthValidator, tokens usecase.TokenIssuer) *usecase.AuthUsecase {
	if tokens == nil {
		tokens = testTokens()
	}
	return usecase.NewAuthUsecase(users, tokens, v, &seqIDGen{})
}

// =====================
// Register
// =====================

func TestAuthUsecase_Register_Success(t *testing.T) {
	ctx := context.Background()

	users := new(MockUserRepository)
	v := new(MockAuthValidator)
	tokens := testTokens()
	uc := newAuthUC(users, v, tokens)

	v.On("ValidateRegister", mock.Anything, "thabo@example.com", "password123", "Thabo M").Return(nil)
	users.On("FindByEmail", mock.Anything, "thabo@example.com").Return(nil, repository.ErrUserNotFound)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "thabo@example.com" &&
			u.Role == model.RoleResident &&
			u.IsVerified &&
			u.PasswordHash != "password123" //平文保存しない
	})).Return(nil)

	out, err := uc.Register(ctx, usecase.RegisterInput{
		Email:    "thabo@example.com",
		Password: "password123",
		Name:     "Thabo M",
	})

	require.NoError(t, err)
	require.NotNil(t, out.User)
	assert.Equal(t, model.RoleResident, out.User.Role)

	//発行されたトークンがそのまま検証できること
	claims, err := tokens.Verify(out.AccessToken, auth.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, claims.UserID)
	assert.Equal(t, "resident", claims.Role)

	rClaims, err := tokens.Verify(out.RefreshToken, auth.TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, rClaims.UserID)

	//ハッシュが元パスワードに対応していること
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(out.User.PasswordHash), []byte("password123")))

	users.AssertExpectations(t)
}

func TestAuthUsecase_Register_DuplicateEmail(t *testing.T) {
	users := new(MockUserRepository)
	v := new(MockAuthValidator)
	uc := newAuthUC(users, v, nil)

	v.On("ValidateRegister", mock.Anything, "dup@example.com", "password123", "Dup").Return(nil)
	users.On("FindByEmail", mock.Anything, "dup@example.com").
		Return(&model.User{ID: "u1", Email: "dup@example.com"}, nil)

	_, err := uc.Register(context.Background(), usecase.RegisterInput{
		Email:    "dup@example.com",
		Password: "password123",
		Name:     "Dup",
	})

	assertHTTPError(t, err, 409, "already exists")
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthUsecase_Register_ValidationError(t *testing.T) {
	users := new(MockUserRepository)
	v := new(MockAuthValidator)
	uc := newAuthUC(users, v, nil)

	v.On("ValidateRegister", mock.Anything, "", "", "").
		Return(assert.AnError)

	_, err := uc.Register(context.Background(), usecase.RegisterInput{})
	assertHTTPError(t, err, 400, assert.AnError.Error())
}

// =====================
// Login
// =====================

func TestAuthUsecase_Login_Success(t *testing.T) {
	users := new(MockUserRepository)
	v := new(MockAuthValidator)
	tokens := testTokens()
	uc := newAuthUC(users, v, tokens)

	hash := mustHash(t, "password123")
	user := &model.User{ID: "u1", Email: "thabo@example.com", Role: model.RoleBusiness, PasswordHash: hash, IsVerified: true}

	v.On("ValidateLogin", mock.Anything, "thabo@example.com", "password123").Return(nil)
	users.On("FindByEmail", mock.Anything, "thabo@example.com").Return(user, nil)

	out, err := uc.Login(context.Background(), usecase.LoginInput{
		Email:    "thabo@example.com",
		Password: "password123",
	})

	require.NoError(t, err)
	claims, err := tokens.Verify(out.AccessToken, auth.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "business", claims.Role)
}

func TestAuthUsecase_Login_WrongPassword(t *testing.T) {
	users := new(MockUserRepository)
	v := new(MockAuthValidator)
	uc := newAuthUC(users, v, nil)

	hash := mustHash(t, "correct-password")
	user := &model.User{ID: "u1", Email: "thabo@example.com", PasswordHash: hash}

	v.On("ValidateLogin", mock.Anything, "thabo@example.com", "wrong-password").Return(nil)
	users.On("FindByEmail", mock.Anything, "thabo@example.com").Return(user, nil)

	_, err := uc.Login(context.Background(), usecase.LoginInput{
		Email:    "thabo@example.com",
		Password: "wrong-password",
	})

	assertHTTPError(t, err, 401, "Invalid credentials")
}

func TestAuthUsecase_Login_UnknownEmail(t *testing.T) {
	users := new(MockUserRepository)
	v := new(MockAuthValidator)
	uc := newAuthUC(users, v, nil)

	v.On("ValidateLogin", mock.Anything, "ghost@example.com", "password123").Return(nil)
	users.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, repository.ErrUserNotFound)

	_, err := uc.Login(context.Background(), usecase.LoginInput{
		Email:    "ghost@example.com",
		Password: "password123",
	})

	//存在しないemailもパスワード違いと同じ返事
	assertHTTPError(t, err, 401, "Invalid credentials")
}

// =====================
// Refresh
// =====================

func TestAuthUsecase_Refresh_Success(t *testing.T) {
	users := new(MockUserRepository)
	tokens := testTokens()
	uc := newAuthUC(users, new(MockAuthValidator), tokens)

	pair, err := tokens.GenerateTokens("u1", model.RoleResident)
	require.NoError(t, err)

	user := &model.User{ID: "u1", Role: model.RoleResident, IsVerified: true}
	users.On("FindByID", mock.Anything, "u1").Return(user, nil)

	out, err := uc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)

	claims, err := tokens.Verify(out.AccessToken, auth.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)

	_, err = tokens.Verify(out.RefreshToken, auth.TokenTypeRefresh)
	assert.NoError(t, err)
}

func TestAuthUsecase_Refresh_AccessTokenRejected(t *testing.T) {
	users := new(MockUserRepository)
	tokens := testTokens()
	uc := newAuthUC(users, new(MockAuthValidator), tokens)

	pair, err := tokens.GenerateTokens("u1", model.RoleResident)
	require.NoError(t, err)

	//accessトークンではrefreshできない
	_, err = uc.Refresh(context.Background(), pair.AccessToken)
	assertHTTPError(t, err, 401, "Invalid refresh token")
}

func TestAuthUsecase_Refresh_Expired(t *testing.T) {
	users := new(MockUserRepository)
	expired := auth.NewTokenService(func() (string, error) { return "test-secret", nil }, time.Minute, -time.Minute)
	uc := newAuthUC(users, new(MockAuthValidator), expired)

	pair, err := expired.GenerateTokens("u1", model.RoleResident)
	require.NoError(t, err)

	_, err = uc.Refresh(context.Background(), pair.RefreshToken)
	//invalidではなくexpiredとして区別される
	assertHTTPError(t, err, 401, "Refresh token expired")
}

func TestAuthUsecase_Refresh_UserGone(t *testing.T) {
	users := new(MockUserRepository)
	tokens := testTokens()
	uc := newAuthUC(users, new(MockAuthValidator), tokens)

	pair, err := tokens.GenerateTokens("u1", model.RoleResident)
	require.NoError(t, err)

	users.On("FindByID", mock.Anything, "u1").Return(nil, repository.ErrUserNotFound)

	_, err = uc.Refresh(context.Background(), pair.RefreshToken)
	assertHTTPError(t, err, 401, "Invalid refresh token")
}

func TestAuthUsecase_Refresh_UnverifiedUser(t *testing.T) {
	users := new(MockUserRepository)
	tokens := testTokens()
	uc := newAuthUC(users, new(MockAuthValidator), tokens)

	pair, err := tokens.GenerateTokens("u1", model.RoleResident)
	require.NoError(t, err)

	users.On("FindByID", mock.Anything, "u1").
		Return(&model.User{ID: "u1", IsVerified: false}, nil)

	_, err = uc.Refresh(context.Background(), pair.RefreshToken)
	assertHTTPError(t, err, 401, "Invalid refresh token")
}
