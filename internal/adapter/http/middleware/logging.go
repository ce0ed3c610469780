package middleware

import (
	"net/http"
	"time"

	"github.com/alexadark/ffmpeg-api-service/internal/infrastructure/logger"
)

// Logging writes one line per request after it completes.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := newMetricsResponseWriter(w)
		start := time.Now()

		next.ServeHTTP(wrapped, r)

		logger.Info.Printf("%s %s %d %s",
			r.Method,
			logger.SanitizeForLog(r.URL.Path),
			wrapped.statusCode,
			time.Since(start).Round(time.Millisecond))
	})
}
