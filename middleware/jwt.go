package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"expensetracker/config"
	"expensetracker/logger"
)

const (
	contextSubjectKey  = "authSubject"
	contextIdentityKey = "authIdentity"
)

var (
	jwtSecret []byte
	keySet    *KeySet
)

// Identity is the trusted result of token verification. Only Subject is
// authoritative for authorization decisions; Email and Name are
// informational claims.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// Claims are the token claims this service issues and accepts.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// InitJWT configures token verification from the loaded config. When a
// JWKS URL is configured, RS256 tokens from that key set are accepted in
// addition to locally issued HS256 tokens.
func InitJWT(cfg *config.Config) {
	jwtSecret = []byte(cfg.JWT.Secret)
	if cfg.JWT.JWKSURL != "" {
		refresh := time.Duration(cfg.JWT.JWKSRefreshMinutes) * time.Minute
		keySet = NewKeySet(cfg.JWT.JWKSURL, refresh)
	} else {
		keySet = nil
	}
}

// GenerateToken issues an HS256 token for a local account.
func GenerateToken(subject, email, name string, expire time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expire)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseToken verifies a bearer token and returns its claims. HS256 tokens
// verify against the shared secret; RS256 tokens against the cached remote
// key set when one is configured.
func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		switch t.Method.(type) {
		case *jwt.SigningMethodHMAC:
			return jwtSecret, nil
		case *jwt.SigningMethodRSA:
			if keySet == nil {
				return nil, errors.New("RS256 token but no key set configured")
			}
			kid, _ := t.Header["kid"].(string)
			return keySet.Key(kid)
		default:
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// JWTAuth authenticates requests from the Authorization header. All
// failures map to 401; the distinct reasons are only logged.
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid authorization header"})
			c.Abort()
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid authorization header"})
			c.Abort()
			return
		}

		claims, err := ParseToken(tokenString)
		if err != nil {
			message := "Invalid token. Please sign in again."
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				message = "Token has expired. Please sign in again."
				logger.Info("rejected expired token", zap.String("path", c.Request.URL.Path))
			case errors.Is(err, jwt.ErrTokenNotValidYet):
				logger.Info("rejected not-yet-valid token", zap.String("path", c.Request.URL.Path))
			default:
				logger.Info("rejected invalid token",
					zap.String("path", c.Request.URL.Path), zap.Error(err))
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": message})
			c.Abort()
			return
		}

		c.Set(contextSubjectKey, claims.Subject)
		c.Set(contextIdentityKey, Identity{
			Subject: claims.Subject,
			Email:   claims.Email,
			Name:    claims.Name,
		})
		c.Next()
	}
}

// GetCurrentSubject returns the verified owner subject of the request, or
// an empty string outside an authenticated context.
func GetCurrentSubject(c *gin.Context) string {
	subject, exists := c.Get(contextSubjectKey)
	if !exists {
		return ""
	}
	s, _ := subject.(string)
	return s
}

// GetCurrentIdentity returns the full verified identity of the request.
func GetCurrentIdentity(c *gin.Context) Identity {
	identity, exists := c.Get(contextIdentityKey)
	if !exists {
		return Identity{}
	}
	id, _ := identity.(Identity)
	return id
}
