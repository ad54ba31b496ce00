package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Logger logs one line per request. Pointer and frame requests arrive at
// interaction frequency, so successful ones log at debug to keep the info
// stream readable.
func Logger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestID", middleware.GetReqID(r.Context())),
				zap.String("remoteAddr", r.RemoteAddr),
			}

			if ww.Status() < 400 && isHighFrequency(r.URL.Path) {
				logger.Debug("HTTP request", fields...)
				return
			}
			logger.Info("HTTP request", fields...)
		})
	}
}

func isHighFrequency(path string) bool {
	return strings.HasSuffix(path, "/pointer") || strings.HasSuffix(path, "/frame")
}
