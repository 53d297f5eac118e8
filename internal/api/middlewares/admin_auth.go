package middlewares

import (
	"crypto/subtle"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/crosscover-protocol/settlement-api-service/internal/config"
)

const AdminKeyHeader = "X-Admin-Key"

// AdminAuthMiddleware guards the owner surface. The key comparison is
// constant-time; a missing or wrong key is logged and rejected with 401.
func AdminAuthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(AdminKeyHeader)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(cfg.Server.AdminKey)) != 1 {
				log.Ctx(r.Context()).Warn().Str("path", r.URL.Path).Msg("rejected admin request with invalid key")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
