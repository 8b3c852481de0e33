package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/inkzone/bracket-engine/models"
)

type contextKey string

const userContextKey contextKey = "user"

const (
	jwtClaimUserID = "user_id"
	jwtClaimRole   = "role"
)

var (
	ErrNoUserInContext = errors.New("user claims not found in context")
	ErrInvalidClaims   = errors.New("token claims are invalid")
)

// Authenticate verifies the bearer token and stores its claims in the request
// context. Tokens are HS256, signed with the configured secret.
func Authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "missing or malformed authorization header", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")

			token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				http.Error(w, "invalid token claims", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route on the role claim. Must run after Authenticate.
func RequireRole(roles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := GetUserRole(r.Context())
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "forbidden", http.StatusForbidden)
		})
	}
}

// GetUserID extracts the authenticated user's id from the request context.
func GetUserID(ctx context.Context) (int64, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return 0, ErrNoUserInContext
	}
	// JSON numbers decode as float64.
	idFloat, ok := claims[jwtClaimUserID].(float64)
	if !ok || idFloat != float64(int64(idFloat)) || int64(idFloat) <= 0 {
		return 0, ErrInvalidClaims
	}
	return int64(idFloat), nil
}

// GetUserRole extracts the authenticated user's role from the request context.
func GetUserRole(ctx context.Context) (models.UserRole, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return "", ErrNoUserInContext
	}
	roleStr, ok := claims[jwtClaimRole].(string)
	if !ok {
		return "", ErrInvalidClaims
	}
	role := models.UserRole(roleStr)
	switch role {
	case models.RolePlayer, models.RoleOrganizer:
		return role, nil
	}
	return "", ErrInvalidClaims
}

// NewToken builds the signed JWT handed out at login.
func NewToken(secret string, user *models.User, claims jwt.MapClaims) (string, error) {
	all := jwt.MapClaims{
		jwtClaimUserID: user.ID,
		jwtClaimRole:   string(user.Role),
	}
	for k, v := range claims {
		all[k] = v
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, all)
	return token.SignedString([]byte(secret))
}
