package websocket

import (
	"crypto/rsa"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Saff9/campus-connect/internal/utils"
)

// JWTWebSocketAuth builds an AuthenticatorFunc that verifies the access
// token and checks that a live login session backs it. Browsers cannot set
// custom headers on the ws handshake, so the token is also accepted via
// query parameter and cookie.
func JWTWebSocketAuth(publicKey *rsa.PublicKey, rdb *redis.Client) AuthenticatorFunc {
	return func(r *http.Request) (string, error) {
		token := extractToken(r)
		if token == "" {
			return "", &AuthError{Message: "missing access token"}
		}

		claims, err := utils.ParseAndVerifySign(token, publicKey)
		if err != nil {
			log.Warn().Err(err).Msg("ws auth: token verification failed")
			return "", &AuthError{Message: "invalid or expired token"}
		}

		exists, err := rdb.Exists(r.Context(), "session:"+claims.Sub).Result()
		if err != nil {
			log.Error().Err(err).Msg("ws auth: session lookup failed")
			return "", &AuthError{Message: "session lookup failed"}
		}
		if exists == 0 {
			return "", &AuthError{Message: "session expired, login required"}
		}

		return claims.Sub, nil
	}
}

func extractToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return ""
}
