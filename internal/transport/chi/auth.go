package chi

import (
	"net/http"
	"strings"

	"github.com/kailas-cloud/teammaker/internal/transport/api"
)

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

const bearerPrefix = "Bearer "

// BearerAuthMiddleware returns a middleware that validates Bearer tokens.
// If apiKeys is empty, authentication is disabled (pass-through).
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	validKeys := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			validKeys[k] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		if len(validKeys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			switch {
			case auth == "":
				unauthorized(w, "missing authorization header")
			case !strings.HasPrefix(auth, bearerPrefix):
				unauthorized(w, "authorization header must use Bearer scheme")
			default:
				if _, ok := validKeys[auth[len(bearerPrefix):]]; !ok {
					unauthorized(w, "invalid api key")
					return
				}
				next.ServeHTTP(w, r)
			}
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="teammaker"`)
	writeError(w, http.StatusUnauthorized, api.KindUnauthorized, msg)
}
