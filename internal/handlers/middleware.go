package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"gitlab.com/fcv-2025.net/attempt-service/internal/config"
	"gitlab.com/fcv-2025.net/attempt-service/internal/handlers/response"
)

type claimsKey struct{}

// PermissionReadAllAttempts lets a token read any user's attempts.
const PermissionReadAllAttempts = "attempts.read_all"

type MiddlewareProvider struct {
	SecretOption string
}

func New(jwtConfig *config.JwtConfig) *MiddlewareProvider {
	return &MiddlewareProvider{
		SecretOption: jwtConfig.Secret,
	}
}

func (m *MiddlewareProvider) secret() []byte {
	return []byte(m.SecretOption)
}

// JWTMiddleware accepts HMAC signed bearer tokens and stores their claims on
// the request context.
func (m *MiddlewareProvider) JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.SecretOption == "" {
			response.WriteError(w, response.ErrorMessage{Message: "Authentication is not configured", StatusCode: http.StatusServiceUnavailable})
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.WriteError(w, response.ErrorMessage{Message: "Authorization header missing", StatusCode: http.StatusUnauthorized})
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			response.WriteError(w, response.ErrorMessage{Message: "Invalid authorization header", StatusCode: http.StatusUnauthorized})
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return m.secret(), nil
		}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
		if err != nil || !token.Valid {
			response.WriteError(w, response.ErrorMessage{Message: "Invalid token", StatusCode: http.StatusUnauthorized})
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}

// ClaimsFromContext returns the verified token claims of the request
func ClaimsFromContext(ctx context.Context) (jwt.MapClaims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(jwt.MapClaims)
	return claims, ok
}

// CanReadUser reports whether the request's token may read userID's attempts:
// its subject is that user, or it carries PermissionReadAllAttempts.
func CanReadUser(ctx context.Context, userID int64) bool {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return false
	}
	if hasPermission(claims, PermissionReadAllAttempts) {
		return true
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return false
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	return err == nil && id == userID
}

func hasPermission(claims jwt.MapClaims, permission string) bool {
	granted, ok := claims["permission"].([]interface{})
	if !ok {
		return false
	}
	for _, p := range granted {
		if p == permission {
			return true
		}
	}
	return false
}
