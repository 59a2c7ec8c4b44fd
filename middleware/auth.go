package middleware

import (
	"errors"
	"net/http"
	"strings"
	"thesis-verification-api/config"
	"thesis-verification-api/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

type Claims struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller.
type Principal struct {
	ID    int
	Email string
	Role  string
}

// IsReviewer reports whether the principal may upload and approve theses.
func (p Principal) IsReviewer() bool {
	return models.IsReviewer(p.Role)
}

const principalKey = "principal"

// AuthMiddleware validates the bearer token and stores the Principal. When a
// database is configured the user must still exist and be active, and the
// stored role wins over the token's.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Authorization header is required"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid authorization header format"})
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(config.Current().JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid or expired token"})
			return
		}

		principal := Principal{ID: claims.UserID, Email: claims.Email, Role: strings.ToLower(claims.Role)}
		if config.DB != nil {
			var user models.User
			err := config.DB.WithContext(c.Request.Context()).
				Where("user_id = ? AND is_active = ? AND delete_at IS NULL", claims.UserID, true).
				First(&user).Error
			if err != nil {
				status, msg := http.StatusInternalServerError, "Failed to load user"
				if errors.Is(err, gorm.ErrRecordNotFound) {
					status, msg = http.StatusUnauthorized, "User not found"
				}
				c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
				return
			}
			principal.Role = strings.ToLower(user.Role)
			principal.Email = user.Email
		}

		c.Set(principalKey, principal)
		c.Set("userID", principal.ID)
		c.Next()
	}
}

// CurrentPrincipal returns the principal stored by AuthMiddleware.
func CurrentPrincipal(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

// SetPrincipal stores p on the context. Used by tests and internal callers.
func SetPrincipal(c *gin.Context, p Principal) {
	c.Set(principalKey, p)
	c.Set("userID", p.ID)
}

// RequireRole checks if user has specific role
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := CurrentPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "Role not found"})
			return
		}
		for _, role := range roles {
			if strings.EqualFold(p.Role, role) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "Insufficient permissions"})
	}
}
