package webserver

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/stayloop/booking-service/config"
	"github.com/stayloop/booking-service/models"
)

const ctxUserID = "user_id"
const ctxUserRole = "user_role"

type claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager validates (and, for tests and tooling, issues) the
// bearer tokens minted by the platform's auth gateway. Identity and
// permissions themselves live outside this service.
type TokenManager struct {
	secret []byte
	expiry time.Duration
}

func NewTokenManager(cfg *config.SecurityConfig) *TokenManager {
	return &TokenManager{
		secret: []byte(cfg.JWTSecret),
		expiry: time.Duration(cfg.JWTExpirationHours) * time.Hour,
	}
}

func (t *TokenManager) Issue(userID int64, role string) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiry)),
		},
	})
	return token.SignedString(t.secret)
}

func (t *TokenManager) Parse(raw string) (*claims, error) {
	token, err := jwt.ParseWithClaims(raw, &claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return c, nil
}

func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		cl, err := s.tokens.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ctxUserID, cl.UserID)
		c.Set(ctxUserRole, cl.Role)
		c.Next()
	}
}

func (s *Server) adminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxUserRole) != models.AdminRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

func actorID(c *gin.Context) int64 {
	return c.GetInt64(ctxUserID)
}
