package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// PanicHandler writes the error response for a recovered panic
type PanicHandler func(w http.ResponseWriter, r *http.Request, err any)

// Recovery logs panics from downstream handlers and hands the response to
// onPanic, or writes a plain 500 when onPanic is nil. Hijacked connections
// (websocket sessions) get no response.
func Recovery(logger *slog.Logger, onPanic PanicHandler) func(http.Handler) http.Handler {
	if onPanic == nil {
		onPanic = func(w http.ResponseWriter, _ *http.Request, _ any) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				p := recover()
				if p == nil {
					return
				}

				logger.Error("panic recovered",
					slog.String("request_id", RequestID(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("error", p),
					slog.String("stack", string(debug.Stack())),
				)

				if rw, ok := w.(*ResponseWriter); ok && rw.Hijacked() {
					return
				}
				onPanic(w, r, p)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
