package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/foodmap/configs"
	"github.com/foodmap/pkg/utils"
)

const (
	// TokenTTL 管理员 Token 有效期
	TokenTTL = 24 * time.Hour
	// RoleAdmin 目前唯一的角色
	RoleAdmin = "admin"

	issuer = "foodmap"
)

// Claims 定义了JWT中存储的自定义声明。
// JTI (ID) 通过内嵌的 jwt.RegisteredClaims 提供
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

var (
	// tokenDenylist 存储已登出Token的JTI及其原始过期时间。
	// 内存列表，服务重启会丢失；Token 本身 24 小时过期
	tokenDenylist = make(map[string]time.Time)
	denylistMutex = &sync.RWMutex{}
)

// AddToDenylist 将JTI添加到拒绝列表，并清理已过期的条目。
func AddToDenylist(jti string, expiresAt time.Time) {
	denylistMutex.Lock()
	defer denylistMutex.Unlock()

	tokenDenylist[jti] = expiresAt

	now := time.Now()
	for id, exp := range tokenDenylist {
		if now.After(exp) {
			delete(tokenDenylist, id)
		}
	}
}

// IsTokenDenylisted 检查JTI是否在拒绝列表中且尚未过期。
func IsTokenDenylisted(jti string) bool {
	denylistMutex.RLock()
	defer denylistMutex.RUnlock()

	expTime, found := tokenDenylist[jti]
	if !found {
		return false
	}
	return time.Now().Before(expTime)
}

// IssueToken 为管理员签发 HS256 Token，返回 Token 及其过期时间
func IssueToken(secret, username string, now time.Time) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, errors.New("jwt secret is empty")
	}
	expiresAt := now.Add(TokenTTL)
	claims := &Claims{
		Username: username,
		Role:     RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{RoleAdmin},
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken 校验签名、有效期与拒绝列表
func ParseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// 确保token的签名方法是我们期望的 HMAC
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(issuer), jwt.WithAudience(RoleAdmin))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, errors.New("Token is malformed")
		case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, errors.New("Token is expired or not valid yet")
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, errors.New("Invalid token signature")
		default:
			return nil, fmt.Errorf("Invalid token: %w", err)
		}
	}
	if !token.Valid {
		return nil, errors.New("Token is invalid")
	}
	if claims.ID == "" {
		return nil, errors.New("Token missing JTI (JWT ID)")
	}
	if IsTokenDenylisted(claims.ID) {
		return nil, errors.New("Token has been invalidated (logged out)")
	}
	return claims, nil
}

// RequireAdmin 保护审核类接口。
// 未配置管理员凭据时直接放行，保持与无认证部署一致。
func RequireAdmin(cfg configs.Configuration) gin.HandlerFunc {
	if !cfg.AdminAuthEnabled() {
		return func(c *gin.Context) { c.Next() }
	}
	return JWTMiddleware(cfg.JWTSecret)
}

// JWTMiddleware 从 Authorization 请求头中提取 Bearer Token 并校验
func JWTMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondUnauthorizedError(c, "Authorization header is required")
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.RespondUnauthorizedError(c, "Authorization header format must be Bearer {token}")
			return
		}

		claims, err := ParseToken(secret, parts[1])
		if err != nil {
			utils.RespondUnauthorizedError(c, err.Error())
			return
		}

		// 将声明和关键信息存储在Gin上下文中，以便后续处理程序使用
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)
		c.Set("jti", claims.ID)
		if claims.ExpiresAt != nil {
			c.Set("exp", claims.ExpiresAt.Time)
		}

		c.Next()
	}
}
