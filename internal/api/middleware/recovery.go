package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/episteme/server/internal/api/problem"
	"github.com/rs/zerolog"
)

// Recover turns a handler panic into a 500 problem response. The panic
// value and stack are logged internally; the client sees only the
// generic server error.
func Recover(env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				zerolog.Ctx(r.Context()).Error().
					Interface("panic", rec).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Bytes("stack", debug.Stack()).
					Msg("handler panicked")

				problem.Write(w, r, http.StatusInternalServerError,
					"https://episteme.app/problems/server-error", "Server error",
					fmt.Errorf("panic: %v", rec), env)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
