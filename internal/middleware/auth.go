package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"stayharbor/channelsync/internal/common"
)

type contextKey string

const OperatorIDKey contextKey = "operator_id"

// AuthMiddleware authenticates requests with either the configured
// operator API key or a signed bearer token from the dashboard
func AuthMiddleware(apiKey string, signer *common.TokenSignerService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			providedKey := r.Header.Get("X-API-Key")

			var operatorID string

			switch {
			case strings.HasPrefix(authHeader, "Bearer "):
				tokenString := strings.TrimPrefix(authHeader, "Bearer ")
				token, err := signer.ValidateToken(tokenString)
				if err != nil {
					http.Error(w, "Unauthorized. Invalid token", http.StatusUnauthorized)
					return
				}
				operatorID = token.OperatorID

			case providedKey != "":
				if apiKey == "" || subtle.ConstantTimeCompare([]byte(providedKey), []byte(apiKey)) != 1 {
					http.Error(w, "Unauthorized. Invalid API Key", http.StatusUnauthorized)
					return
				}
				operatorID = "api-key"

			default:
				http.Error(w, "Unauthorized. Missing credentials", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), OperatorIDKey, operatorID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
