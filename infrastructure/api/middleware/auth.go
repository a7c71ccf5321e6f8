package middleware

import "net/http"

// WriteProtect returns middleware that requires a valid X-API-KEY header on
// mutating methods (POST, PUT, PATCH, DELETE). Reads pass through untouched.
// With no keys configured every request passes, which is the development
// default.
func WriteProtect(apiKeys []string) func(http.Handler) http.Handler {
	keys := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys[k] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(keys) == 0 || !isMutating(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			if _, ok := keys[r.Header.Get("X-API-KEY")]; !ok {
				writeUnauthorized(w, "valid X-API-KEY header is required for mutating requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

func writeUnauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/vnd.api+json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"errors":[{"status":"401","title":"Unauthorized","detail":"` + detail + `"}]}`))
}
