package middleware

import (
	"errors"
	"net/http"
	"strings"

	"limpopo-api/internal/auth"
	"limpopo-api/internal/domain/model"
	"limpopo-api/internal/repository"

	"github.com/labstack/echo/v4"
)

// handlerが解決済みユーザーを取り出すためのキー
const CtxUserKey = "authed_user"

// トークン検証の約束（実体はinternal/authのTokenService）
type TokenVerifier interface {
	Verify(raw string, want auth.TokenType) (*auth.Claims, error)
}

type AuthGuard struct {
	tokens TokenVerifier
	users  repository.UserRepository
}

func NewAuthGuard(tokens TokenVerifier, users repository.UserRepository) *AuthGuard {
	return &AuthGuard{tokens: tokens, users: users}
}

// bearerAuth用のJWT検証ミドルウェア。
// accessトークンを検証→ユーザーを引く→role確認→contextへ保存。
// allowedRolesが空なら認証済みの全roleを通す
func (g *AuthGuard) WithAuth(allowedRoles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("Unauthorized: No token provided"))
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, errorJSON("Unauthorized: No token provided"))
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("Unauthorized: No token provided"))
			}

			//署名・issuer・audience・typeを検証
			claims, err := g.tokens.Verify(rawToken, auth.TokenTypeAccess)
			if err != nil {
				//期限切れは理由を区別して返す
				if errors.Is(err, auth.ErrTokenExpired) {
					return c.JSON(http.StatusUnauthorized, errorJSON("Unauthorized: Token expired"))
				}
				return c.JSON(http.StatusUnauthorized, errorJSON("Unauthorized: Invalid token"))
			}

			//ユーザーがまだ居るか
			user, err := g.users.FindByID(c.Request().Context(), claims.UserID)
			if err != nil || user == nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("Unauthorized: User not found"))
			}

			//未確認ユーザーは通さない
			if !user.IsVerified {
				return c.JSON(http.StatusUnauthorized, errorJSON("Unauthorized: Email not verified"))
			}

			//role確認（許可リスト指定ありのときだけ）
			if len(allowedRoles) > 0 && !roleAllowed(user.Role, allowedRoles) {
				return c.JSON(http.StatusForbidden, errorJSON("Forbidden: Insufficient permissions"))
			}

			//contextへ保存
			c.Set(CtxUserKey, user)

			return next(c)
		}
	}
}

func roleAllowed(role model.Role, allowed []model.Role) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

// contextから解決済みユーザーを取り出す
func CurrentUser(c echo.Context) (*model.User, bool) {
	u, ok := c.Get(CtxUserKey).(*model.User)
	if !ok || u == nil {
		return nil, false
	}
	return u, true
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
