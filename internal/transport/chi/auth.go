package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/beliefgraph/internal/logger"
)

const (
	bearerPrefix = "Bearer "
	authRealm    = `Bearer realm="beliefgraph"`
)

// exemptPaths bypass authentication so probes and scrapers need no key.
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// BearerAuthMiddleware guards the session and concept API with static API
// keys. With no non-empty key configured it is a pass-through.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	keys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			if reason, msg := checkBearer(r.Header.Get("Authorization"), keys); reason != "" {
				logpkg.FromContext(r.Context()).Info("Request rejected",
					zap.String("reason", reason),
					zap.String("path", r.URL.Path),
				)
				w.Header().Set("WWW-Authenticate", authRealm)
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, msg)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// checkBearer returns an empty reason when header carries a known key.
func checkBearer(header string, keys [][]byte) (reason, msg string) {
	if header == "" {
		return "missing_header", "missing authorization header"
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return "wrong_scheme", "authorization header must use Bearer scheme"
	}
	token := []byte(header[len(bearerPrefix):])
	for _, k := range keys {
		if subtle.ConstantTimeCompare(token, k) == 1 {
			return "", ""
		}
	}
	return "invalid_key", "invalid api key"
}
