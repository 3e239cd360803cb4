package middleware

import (
	"net/http"
	"runtime"

	"hospital-portal/internal/logging"
)

// Recover turns a handler panic into a 500 and logs the stack.
func Recover(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					stack := make([]byte, 8*1024)
					stack = stack[:runtime.Stack(stack, false)]
					log.Error(r.Context(), "panic recovered",
						"panic", rec, "path", r.URL.Path, "stack", string(stack))
					http.Error(w, "internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
