package auth

import (
	"errors"
	"os"
	"sync"
	"time"

	"limpopo-api/internal/domain/model"

	"github.com/golang-jwt/jwt/v5"
)

const (
	//別サービス向けに発行されたトークンを弾くための固定値
	TokenIssuer   = "limpopo-connect"
	TokenAudience = "limpopo-connect-api"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	//401 期限切れ（invalidとは区別して返す）
	ErrTokenExpired = errors.New("token expired")
	//401 署名・issuer・audience・typeのどれかが不正
	ErrTokenInvalid = errors.New("invalid token")
	//起動設定ミス
	ErrSecretMissing = errors.New("jwt secret not set")
)

type Claims struct {
	UserID string `json:"userId"`
	//accessトークンだけに入れる
	Role      string    `json:"role,omitempty"`
	TokenType TokenType `json:"type"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// シークレットの取得方法を差し替えられるようにする（secret store連携用）
type SecretResolver func() (string, error)

// デフォルトは環境変数
func EnvSecretResolver() (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", ErrSecretMissing
	}
	return secret, nil
}

type TokenService struct {
	resolver   SecretResolver
	accessTTL  time.Duration
	refreshTTL time.Duration

	//シークレットは初回に一度だけ解決して以後不変
	once       sync.Once
	secret     []byte
	resolveErr error
}

func NewTokenService(resolver SecretResolver, accessTTL, refreshTTL time.Duration) *TokenService {
	if resolver == nil {
		resolver = EnvSecretResolver
	}
	if accessTTL == 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL == 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenService{
		resolver:   resolver,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *TokenService) secretKey() ([]byte, error) {
	s.once.Do(func() {
		secret, err := s.resolver()
		if err != nil {
			s.resolveErr = err
			return
		}
		s.secret = []byte(secret)
	})
	return s.secret, s.resolveErr
}

// access+refreshのペアを発行する。
// refresh側にはroleを入れない（再発行時にDBから引き直す）
func (s *TokenService) GenerateTokens(userID string, role model.Role) (TokenPair, error) {
	key, err := s.secretKey()
	if err != nil {
		return TokenPair{}, err
	}

	now := time.Now()

	access, err := s.sign(key, Claims{
		UserID:    userID,
		Role:      string(role),
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	})
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := s.sign(key, Claims{
		UserID:    userID,
		TokenType: TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	})
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TokenService) sign(key []byte, claims Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(key)
}

// 署名・issuer・audience・期限・typeを検証してclaimsを返す。
// 期限切れはErrTokenExpired、それ以外の不正はErrTokenInvalid。
func (s *TokenService) Verify(raw string, want TokenType) (*Claims, error) {
	key, err := s.secretKey()
	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (interface{}, error) {
			return key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if claims.TokenType != want {
		return nil, ErrTokenInvalid
	}
	if claims.UserID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
