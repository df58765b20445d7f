package httpmiddleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig configures the CORS middleware.
type CORSConfig struct {
	// AllowOrigins lists the origins allowed to make cross-origin requests.
	// Empty, or the single entry "*", allows any origin.
	AllowOrigins []string
	// AllowHeaders lists request headers clients may send. When empty, the
	// headers requested in the preflight are echoed back.
	AllowHeaders []string
	// AllowCredentials permits cookies and auth headers on cross-origin
	// requests. Incompatible with a wildcard origin; when both are set, the
	// specific origin is echoed instead of "*".
	AllowCredentials bool
	// MaxAge is how long (seconds) browsers may cache preflight results.
	MaxAge int
}

const corsMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"

// CORS returns a middleware that answers preflight requests and attaches the
// Access-Control headers to cross-origin responses.
func CORS(cfg CORSConfig) Middleware {
	allowAll := len(cfg.AllowOrigins) == 0
	allowed := make(map[string]struct{}, len(cfg.AllowOrigins))
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.ToLower(o)] = struct{}{}
	}
	// The CORS spec forbids credentials with a wildcard origin.
	if cfg.AllowCredentials {
		allowAll = false
	}

	allowHeaders := strings.Join(cfg.AllowHeaders, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			allowOrigin := ""
			switch {
			case allowAll:
				allowOrigin = "*"
			default:
				w.Header().Add("Vary", "Origin")
				if _, ok := allowed[strings.ToLower(origin)]; ok || len(cfg.AllowOrigins) == 0 {
					allowOrigin = origin
				}
			}

			if allowOrigin != "" {
				w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
				if cfg.AllowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			}

			// Preflight.
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if allowOrigin != "" {
					w.Header().Set("Access-Control-Allow-Methods", corsMethods)
					if allowHeaders != "" {
						w.Header().Set("Access-Control-Allow-Headers", allowHeaders)
					} else if rh := r.Header.Get("Access-Control-Request-Headers"); rh != "" {
						w.Header().Set("Access-Control-Allow-Headers", rh)
					}
					if cfg.MaxAge > 0 {
						w.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
					}
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
