package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	authorizationHeader = "Authorization"
	userCtx             = "userID" // Key to store user ID in context
)

// JWTAuthMiddleware creates a Gin middleware for JWT authentication. The token
// subject must be the user's UUID.
func JWTAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(authorizationHeader)
		if authHeader == "" {
			unauthorized(c, "Authorization header required")
			return
		}

		headerParts := strings.Split(authHeader, " ")
		if len(headerParts) != 2 || !strings.EqualFold(headerParts[0], "bearer") {
			unauthorized(c, "Invalid Authorization header format")
			return
		}

		token, err := jwt.ParseWithClaims(headerParts[1], &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			zap.L().Debug("auth: token rejected", zap.Error(err))
			if errors.Is(err, jwt.ErrTokenExpired) {
				unauthorized(c, "Token has expired")
			} else {
				unauthorized(c, "Invalid token")
			}
			return
		}

		claims, ok := token.Claims.(*jwt.RegisteredClaims)
		if !ok || !token.Valid {
			unauthorized(c, "Invalid token")
			return
		}
		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			zap.L().Debug("auth: subject is not a UUID", zap.String("subject", claims.Subject))
			unauthorized(c, "Invalid user identifier in token")
			return
		}

		c.Set(userCtx, userID)
		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "code": "UNAUTHORIZED"})
}

// GetUserIDFromContext returns the user ID stored by JWTAuthMiddleware.
func GetUserIDFromContext(c *gin.Context) (uuid.UUID, error) {
	userIDAny, exists := c.Get(userCtx)
	if !exists {
		return uuid.Nil, errors.New("user ID not found in context")
	}

	userID, ok := userIDAny.(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("user ID in context is of invalid type")
	}

	return userID, nil
}

// IssueToken signs an HS256 token for userID that expires after ttl.
func IssueToken(secret string, userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
