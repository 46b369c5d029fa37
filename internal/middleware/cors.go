package middleware

import "net/http"

const (
	corsAllowHeaders = "authorization, x-client-info, apikey, content-type, x-locale, x-request-id"
	corsAllowMethods = "GET, POST, OPTIONS"
)

// CORS allows every origin. Preflight requests are answered with an empty
// 200 before any other handler runs.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
		h.Set("Access-Control-Allow-Methods", corsAllowMethods)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
