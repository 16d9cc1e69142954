package usecase

import (
	"context"
	"errors"
	"net/http"

	"limpopo-api/internal/auth"
	"limpopo-api/internal/domain/model"
	"limpopo-api/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, email string, password string, name string) error
	ValidateLogin(ctx context.Context, email string, password string) error
}

// トークン発行・検証の約束（実体はinternal/auth）
type TokenIssuer interface {
	GenerateTokens(userID string, role model.Role) (auth.TokenPair, error)
	Verify(raw string, want auth.TokenType) (*auth.Claims, error)
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	User         *model.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type AuthUsecase struct {
	users     repository.UserRepository
	tokens    TokenIssuer
	validator AuthValidator
	idGen     IDGenerator
}

func NewAuthUsecase(
	users repository.UserRepository,
	tokens TokenIssuer,
	validator AuthValidator,
	idGen IDGenerator,
) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		tokens:    tokens,
		validator: validator,
		idGen:     idGen,
	}
}

func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (*AuthResponse, error) {
	//入力検証（validatorに寄せる）
	if err := u.validator.ValidateRegister(ctx, in.Email, in.Password, in.Name); err != nil {
		return nil, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	//email重複チェック
	existing, err := u.users.FindByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if existing != nil {
		return nil, NewHTTPError(http.StatusConflict, "User with this email already exists")
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	//メール確認フローは範囲外なのでAPI経由の登録は確認済みで作る
	user := &model.User{
		ID:           u.idGen.NewID(),
		Email:        in.Email,
		Name:         in.Name,
		Phone:        in.Phone,
		Role:         model.RoleResident,
		PasswordHash: string(pwHash),
		IsVerified:   true,
	}

	if err := u.users.Create(ctx, user); err != nil {
		//uniqueIndex違反（同時登録）もここに落ちる
		return nil, NewHTTPError(http.StatusConflict, "User with this email already exists")
	}

	pair, err := u.tokens.GenerateTokens(user.ID, user.Role)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (*AuthResponse, error) {
	if err := u.validator.ValidateLogin(ctx, in.Email, in.Password); err != nil {
		return nil, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	//存在しないemailとパスワード違いは同じ返事にする
	user, err := u.users.FindByEmail(ctx, in.Email)
	if err != nil || user == nil {
		return nil, NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	pair, err := u.tokens.GenerateTokens(user.ID, user.Role)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// refreshトークンから新しいペアを発行する。
// 旧refreshトークンは失効させない（rotation無し。既知の制限）
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	if refreshToken == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "Refresh token is required")
	}

	claims, err := u.tokens.Verify(refreshToken, auth.TokenTypeRefresh)
	if errors.Is(err, auth.ErrTokenExpired) {
		//期限切れはinvalidと区別して返す
		return nil, NewHTTPError(http.StatusUnauthorized, "Refresh token expired")
	}
	if err != nil {
		return nil, NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	}

	//ユーザーがまだ居て確認済みかを再チェック
	user, err := u.users.FindByID(ctx, claims.UserID)
	if err != nil || user == nil {
		return nil, NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	}
	if !user.IsVerified {
		return nil, NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	}

	pair, err := u.tokens.GenerateTokens(user.ID, user.Role)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return &RefreshResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

func (u *AuthUsecase) Me(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	return user, nil
}
