package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/user/cinerag/internal/utils"
)

// RoleAdmin 管理员角色
const RoleAdmin = "admin"

// RefreshHeader 滑动续期时返回新 Token 的响应头
const RefreshHeader = "X-Refreshed-Token"

// Claims JWT 声明
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// RequireAdmin 管理员权限中间件
// enabled 为 false（未设置管理员密码）时直接放行
func RequireAdmin(jwtSecret string, enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		claims, err := extractClaims(c, jwtSecret)
		if err != nil {
			utils.Unauthorized(c, "admin token required")
			return
		}
		if claims.Role != RoleAdmin {
			utils.Forbidden(c, "admin role required")
			return
		}

		c.Set("role", claims.Role)

		// 滑动续期：有效期消耗过半时下发新 Token
		if shouldRefresh(claims) {
			expiry := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
			if newToken, err := GenerateToken(claims.Subject, claims.Role, jwtSecret, expiry); err == nil {
				c.Header(RefreshHeader, newToken)
			}
		}

		c.Next()
	}
}

// extractClaims 从 Authorization Header 或 Cookie 中提取 JWT Claims
func extractClaims(c *gin.Context, jwtSecret string) (*Claims, error) {
	var tokenString string

	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		tokenString = strings.TrimPrefix(authHeader, "Bearer ")
	} else if cookie, err := c.Cookie("token"); err == nil {
		tokenString = cookie
	}

	if tokenString == "" {
		return nil, jwt.ErrTokenMalformed
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}

// GenerateToken 生成 JWT Token
func GenerateToken(subject, role, jwtSecret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// shouldRefresh 已经消耗总有效期的 50% 以上
func shouldRefresh(claims *Claims) bool {
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return false
	}

	totalDuration := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	elapsedDuration := time.Since(claims.IssuedAt.Time)

	return elapsedDuration > totalDuration/2
}
