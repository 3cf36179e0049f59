package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"cakebook/internal/config"
	apperrors "cakebook/internal/errors"
)

const editorScope = "editor"

// getJWTKey returns the JWT key from configuration
func getJWTKey() []byte {
	return []byte(config.Get().JWTSecret)
}

// EditorClaims represents the claims in an editor session token.
type EditorClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// EditorGate reports whether editor mode is currently on.
type EditorGate interface {
	IsEditorMode() bool
}

// GenerateEditorToken issues a token for an editor session and returns it
// with its expiry.
func GenerateEditorToken() (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(config.Get().JWTExpirationDur)
	claims := &EditorClaims{
		Scope: editorScope,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "cakebook-api",
			Subject:   editorScope,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(getJWTKey())
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// ValidateEditorToken parses and validates an editor token.
func ValidateEditorToken(tokenString string) (*EditorClaims, error) {
	claims := &EditorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return getJWTKey(), nil
	})

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid editor token")
	}

	if claims.Scope != editorScope {
		return nil, fmt.Errorf("token is not an editor token")
	}

	return claims, nil
}

// EditorMiddleware requires a valid editor token and editor mode to be on.
// Leaving editor mode therefore revokes every token issued before.
func EditorMiddleware(gate EditorGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Authorization header is required"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid authorization header format"))
			return
		}

		claims, err := ValidateEditorToken(parts[1])
		if err != nil {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid or expired token"))
			return
		}

		if !gate.IsEditorMode() {
			abortWithError(c, apperrors.ErrEditorModeRequired)
			return
		}

		c.Set("editorSubject", claims.Subject)
		c.Next()
	}
}

func abortWithError(c *gin.Context, appErr *apperrors.AppError) {
	c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
