package validator

import (
	"context"
	"errors"
	"strings"

	"limpopo-api/internal/usecase"

	v10 "github.com/go-playground/validator/v10"
)

var (
	//会員登録の必須項目が無い
	ErrRegisterFieldsRequired = errors.New("Email, password, and name are required")

	//ログインの必須項目が無い
	ErrLoginFieldsRequired = errors.New("Email and password are required")

	// email形式が不正
	ErrInvalidEmail = errors.New("invalid email format")

	// パスワード最低文字数（MVP: 8）
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
)

type authValidator struct {
	validate *v10.Validate
}

// Usecaseは interface を依存注入
func NewAuthValidator() usecase.AuthValidator {
	return &authValidator{validate: v10.New()}
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, email string, password string, name string) error {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)

	// 必須チェック
	if email == "" || password == "" || name == "" {
		return ErrRegisterFieldsRequired
	}

	// email形式
	if err := v.validate.VarCtx(ctx, email, "email"); err != nil {
		return ErrInvalidEmail
	}

	if len(password) < 8 {
		return ErrPasswordTooShort
	}

	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	// 必須チェック
	if email == "" || password == "" {
		return ErrLoginFieldsRequired
	}

	// email形式
	if err := v.validate.VarCtx(ctx, email, "email"); err != nil {
		return ErrInvalidEmail
	}

	return nil
}
