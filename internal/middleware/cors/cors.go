package cors

import "net/http"

// Middleware applies CORS headers for the configured origins and answers
// preflight requests. An allowed origin of "*" matches everything; browsers
// refuse credentialed requests against a wildcard, so credentials are only
// advertised for exact origins.
type Middleware struct {
	allowed  map[string]bool
	allowAll bool
}

// NewMiddleware creates a CORS middleware for the given origins.
func NewMiddleware(origins []string) *Middleware {
	m := &Middleware{allowed: make(map[string]bool, len(origins))}
	for _, o := range origins {
		if o == "*" {
			m.allowAll = true
			continue
		}
		m.allowed[o] = true
	}
	return m
}

// Middleware returns the HTTP middleware function.
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			switch {
			case m.allowAll:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case m.allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			}
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			w.Header().Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
