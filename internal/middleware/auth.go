package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/InQaaaaGit/graph_batch.git/internal/models"
)

// contextKey используется как ключ для значений в контексте
type contextKey string

// ContextKeyUserID используется как ключ для хранения ID пользователя в контексте
const ContextKeyUserID contextKey = "user_id"

const bearerPrefix = "Bearer "

var (
	// ErrMissingToken возвращается, когда заголовок Authorization отсутствует
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken возвращается для неверной подписи, истекшего срока или пустого user_id
	ErrInvalidToken = errors.New("invalid token")
)

// Auth создает middleware, проверяющий JWT из заголовка Authorization.
// Без действительного токена запрос получает 401 в формате ошибки Graph.
func Auth(secretKey string, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := ParseToken(bearerToken(r), secretKey)
			if err != nil {
				logger.Debug("Request rejected by auth", zap.String("path", r.URL.Path), zap.Error(err))
				WriteError(w, http.StatusUnauthorized, "Access token is missing or invalid")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUserID, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext возвращает ID пользователя, сохраненный Auth
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(ContextKeyUserID).(string)
	return userID, ok && userID != ""
}

// CreateToken создает JWT токен для пользователя
func CreateToken(userID, secretKey string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &models.UserClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}
	return signed, nil
}

// ParseToken проверяет подпись токена и возвращает ID пользователя
func ParseToken(tokenString, secretKey string) (string, error) {
	if tokenString == "" {
		return "", ErrMissingToken
	}

	claims := &models.UserClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secretKey), nil
		})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}
