package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/wyrgame/internal/boundary"
)

// PanicHandler writes the error response for a request whose handler panicked
type PanicHandler func(w http.ResponseWriter, r *http.Request, err error)

// Recovery creates panic recovery middleware with a custom panic handler.
// Each request runs inside its own error boundary so one failing request
// never affects the next.
func Recovery(logger *slog.Logger, handler PanicHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name := r.Method + " " + r.URL.Path
			boundary.Guard(name,
				func() struct{} {
					next.ServeHTTP(w, r)
					return struct{}{}
				},
				func(err error) struct{} {
					handler(w, r, err)
					return struct{}{}
				},
				logger,
			)
		})
	}
}

// DefaultPanicHandler returns a simple 500 Internal Server Error
func DefaultPanicHandler(w http.ResponseWriter, _ *http.Request, _ error) {
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
