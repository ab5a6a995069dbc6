package middleware

import (
	"context"
	"crypto/rsa"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Saff9/campus-connect/internal/dtos"
	"github.com/Saff9/campus-connect/internal/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	userIDKey   ctxKey = "user_id"
	usernameKey ctxKey = "username"
)

// JWTAuth verifies the bearer token and requires a live login session
// behind it, then stores the caller identity on the request context.
func JWTAuth(publicKey *rsa.PublicKey, rdb *redis.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				writeUnauthorized(w, "missing bearer token")
				return
			}

			claims, err := utils.ParseAndVerifySign(strings.TrimPrefix(auth, "Bearer "), publicKey)
			if err != nil {
				writeUnauthorized(w, "invalid or expired token")
				return
			}

			exists, err := rdb.Exists(r.Context(), "session:"+claims.Sub).Result()
			if err != nil {
				log.Error().Err(err).Msg("session lookup failed")
				writeUnauthorized(w, "session lookup failed")
				return
			}
			if exists == 0 {
				writeUnauthorized(w, "session expired, login required")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.Sub)
			ctx = context.WithValue(ctx, usernameKey, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

func GetUsername(ctx context.Context) string {
	if name, ok := ctx.Value(usernameKey).(string); ok {
		return name
	}
	return ""
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(dtos.Response[any]{
		Code:    http.StatusUnauthorized,
		Status:  "UNAUTHORIZED",
		Message: message,
	})
}
