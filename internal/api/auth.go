package api

import (
	"crypto/subtle"
	"net"
	"net/http"

	"github.com/jbirchohio/NestMapRepo-sub002/internal/config"
)

// HTTPAuth guards the session API with a static API-key header plus a
// per-client rate limit.
type HTTPAuth struct {
	cfg     *config.APIConfig
	keys    map[string]config.APIClientKey
	limiter *rateLimiter
}

func NewHTTPAuth(cfg *config.APIConfig) *HTTPAuth {
	keys := make(map[string]config.APIClientKey, len(cfg.Auth.APIKeys))
	for _, k := range cfg.Auth.APIKeys {
		keys[k.Key] = k
	}
	return &HTTPAuth{
		cfg:     cfg,
		keys:    keys,
		limiter: newRateLimiter(cfg),
	}
}

// Wrap enforces auth and rate limiting around the inner handler.
func (a *HTTPAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(a.cfg.Auth.HeaderAPIKey)

		if a.cfg.Auth.Enabled {
			if !a.validKey(key) {
				writeError(w, http.StatusUnauthorized, "invalid api key")
				return
			}
		}

		limitKey := key
		if limitKey == "" {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			limitKey = host
		}
		if !a.limiter.allow(limitKey) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *HTTPAuth) validKey(key string) bool {
	if key == "" {
		return false
	}
	for stored := range a.keys {
		if subtle.ConstantTimeCompare([]byte(stored), []byte(key)) == 1 {
			return true
		}
	}
	return false
}
