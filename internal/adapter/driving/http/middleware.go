package httphandler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/speeddial/internal/adapter/driving/session"
	"github.com/ericfisherdev/speeddial/internal/application"
)

// statusWriter wraps http.ResponseWriter to capture the response status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code and delegates to the embedded writer.
func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.ResponseWriter.WriteHeader(status)
}

// ApplyMiddleware wraps next with recovery (innermost) and request logging.
func ApplyMiddleware(next http.Handler, logger *slog.Logger) http.Handler {
	wrapped := recoveryMiddleware(logger, next)
	return loggingMiddleware(logger, wrapped)
}

// loggingMiddleware logs each HTTP request with method, path, status, and duration.
// The query string is omitted since it may carry the page password.
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start).Round(time.Microsecond),
		)
	})
}

// recoveryMiddleware recovers from panics in HTTP handlers, logs the error,
// and returns a 500 response.
func recoveryMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger.Error("panic recovered",
					"panic", v,
					"path", r.URL.Path,
				)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// RequireUnlock enforces the page password. Static assets, the unlock page
// and the health probe always pass. A correct ?p= query unlocks the browser
// and redirects to the same path without the query. Other locked requests
// are sent to /unlock, or get a 401 on /api/ paths.
func RequireUnlock(gate *application.UnlockGate, codec *session.UnlockCodec, logger *slog.Logger, next http.Handler) http.Handler {
	if !gate.Enabled() {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if bypassesGate(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		now := time.Now()
		state := codec.Read(r)
		if gate.Evaluate(state, now) {
			next.ServeHTTP(w, r)
			return
		}

		if given := r.URL.Query().Get("p"); given != "" && gate.CheckPassword(given) {
			if err := codec.Write(w, gate.Grant(now), now); err != nil {
				logger.Error("failed to write unlock cookie", "error", err)
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
			return
		}

		// Drop a stale or expired unlock cookie.
		if _, err := r.Cookie(session.UnlockCookieName); err == nil {
			codec.Clear(w)
		}

		if strings.HasPrefix(r.URL.Path, "/api/") {
			writeError(w, http.StatusUnauthorized, "locked")
			return
		}
		http.Redirect(w, r, "/unlock", http.StatusSeeOther)
	})
}

func bypassesGate(path string) bool {
	return path == "/unlock" || path == "/api/health" || strings.HasPrefix(path, "/static/")
}
