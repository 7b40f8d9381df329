package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"feedbackwidget/internal/httputil"
)

const msgServerError = "Something went wrong. Please try again."

// Recovery turns a handler panic into the widget's generic 500 response.
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
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

				logger.Error("panic recovered",
					slog.Any("panic", rec),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("user_id", httputil.GetUserID(r)),
					slog.String("stack", string(debug.Stack())),
				)
				httputil.RespondError(w, http.StatusInternalServerError, msgServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
