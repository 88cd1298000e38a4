package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
)

// Auth verifies HS256 tokens issued by the identity collaborator and puts
// "user_id" and "username" into the gin context. Tokens are read from the
// Authorization header, or from the "token" query parameter for websocket
// upgrades where browsers cannot set headers.
func Auth(jwtSecret string) gin.HandlerFunc {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty for Auth middleware")
	}

	return func(c *gin.Context) {
		// 1. Pull the raw token from the header or query.
		tokenStr, err := extractToken(c)
		if err != nil {
			if errors.Is(err, ErrMissingAuthHeader) {
				logrus.Warn("Auth middleware: Missing Authorization header")
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			} else {
				logrus.WithError(err).Warn("Auth middleware: Malformed token format")
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			}
			c.Abort()
			return
		}

		// 2. Verify signature and expiry.
		claims, err := validateToken(tokenStr, jwtSecret)
		if err != nil {
			logCtx := logrus.WithError(err)
			logCtx.Warn("Auth middleware: Invalid token")
			var validationError *jwt.ValidationError
			if errors.As(err, &validationError) && validationError.Errors&jwt.ValidationErrorExpired != 0 {
				logCtx.Warn("Reason: Token is expired")
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		// 3. Resolve the identity; username is optional and only used in
		// join and leave notices.
		userID, ok := subjectOf(claims)
		if !ok {
			logrus.Errorf("Auth middleware: token carries no usable user_id or sub claim")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token has no subject"})
			c.Abort()
			return
		}
		username, _ := claims["username"].(string)

		c.Set("user_id", userID)
		c.Set("username", username)
		logrus.WithField("user_id", userID).Debug("Auth middleware: User authenticated via JWT")
		c.Next()
	}
}

// ErrMissingAuthHeader means neither the header nor the query carried a token.
var ErrMissingAuthHeader = errors.New("missing Authorization header")

func extractToken(c *gin.Context) (string, error) {
	// The header wins when both are present.
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if t := c.Query("token"); t != "" {
			return t, nil
		}
		return "", ErrMissingAuthHeader
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", jwt.ErrTokenMalformed
	}
	return parts[1], nil
}

func validateToken(tokenStr string, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		// Reject alg switching; only HMAC keys are configured.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token or claims type")
}

// subjectOf accepts user_id as a string or a JSON number, then falls back to sub.
func subjectOf(claims jwt.MapClaims) (string, bool) {
	switch v := claims["user_id"].(type) {
	case string:
		if v != "" {
			return v, true
		}
	case float64:
		// Numeric ids arrive as float64 from encoding/json; accept only
		// positive whole numbers.
		if v > 0 && v == float64(uint64(v)) {
			return strconv.FormatUint(uint64(v), 10), true
		}
	}
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub, true
	}
	return "", false
}

// RequireModerator rejects users not listed as moderators. Must run after Auth.
func RequireModerator(isModerator func(userID string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if !isModerator(userID) {
			logrus.WithField("user_id", userID).Warn("Moderator route called by non-moderator")
			c.JSON(http.StatusForbidden, gin.H{"error": "moderator rights required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
