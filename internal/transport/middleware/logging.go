package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/safety-management/pkg/logger"
)

const (
	filtered    = "[FILTERED]"
	maxLogBody  = 4 << 10
	truncatedAt = "...[TRUNCATED]"
)

// sensitiveFields match header names and JSON keys by substring.
var sensitiveFields = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"api_key",
	"cookie",
	"credential",
}

// personalFields hold personal data that is masked rather than dropped.
var personalFields = []string{
	"cpf",
}

// LoggingMiddleware logs every request and response through the request
// scoped logger, with credentials removed and CPFs masked.
func LoggingMiddleware(fallback *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lg := requestLogger(r.Context(), fallback)

			logRequest(lg, r)

			ww := &responseWriter{ResponseWriter: w, body: &bytes.Buffer{}}
			next.ServeHTTP(ww, r)

			logResponse(lg, ww, time.Since(start))
		})
	}
}

func requestLogger(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if lg, ok := logger.FromContext(ctx); ok {
		return lg
	}
	return fallback
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}
	if isJSON(rw.Header().Get("Content-Type")) && rw.body.Len() < maxLogBody {
		rw.body.Write(b)
	}
	return rw.ResponseWriter.Write(b)
}

func logRequest(lg *slog.Logger, r *http.Request) {
	var body string
	if r.Body != nil && isJSON(r.Header.Get("Content-Type")) {
		raw, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(raw))
		body = filterBody(raw)
	}

	lg.Info("incoming request",
		"method", r.Method,
		"path", r.URL.Path,
		"query", r.URL.RawQuery,
		"remote_addr", r.RemoteAddr,
		"user_agent", r.UserAgent(),
		"headers", filterHeaders(r.Header),
		"body", body,
	)
}

func logResponse(lg *slog.Logger, rw *responseWriter, duration time.Duration) {
	status := rw.statusCode
	if status == 0 {
		status = http.StatusOK
	}

	level := slog.LevelInfo
	switch {
	case status >= http.StatusInternalServerError:
		level = slog.LevelError
	case status >= http.StatusBadRequest:
		level = slog.LevelWarn
	}

	lg.Log(context.Background(), level, "response",
		"status_code", status,
		"duration_ms", duration.Milliseconds(),
		"body", filterBody(rw.body.Bytes()),
	)
}

func isJSON(contentType string) bool {
	return contentType == "" || strings.HasPrefix(contentType, "application/json")
}

func filterHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if matches(strings.ToLower(name), sensitiveFields) {
			out[name] = filtered
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

func filterBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		lower := strings.ToLower(string(body))
		if matches(lower, sensitiveFields) || matches(lower, personalFields) {
			return filtered
		}
		return truncate(string(body))
	}

	out, err := json.Marshal(filterJSON(data))
	if err != nil {
		return filtered
	}
	return truncate(string(out))
}

func filterJSON(data any) any {
	switch v := data.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, value := range v {
			lower := strings.ToLower(key)
			switch {
			case matches(lower, sensitiveFields):
				out[key] = filtered
			case matches(lower, personalFields):
				out[key] = maskDigits(value)
			default:
				out[key] = filterJSON(value)
			}
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = filterJSON(item)
		}
		return out
	default:
		return v
	}
}

// maskDigits keeps the last two digits of a document number.
func maskDigits(value any) any {
	s, ok := value.(string)
	if !ok {
		return filtered
	}
	var digits []rune
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) <= 2 {
		return filtered
	}
	return strings.Repeat("*", len(digits)-2) + string(digits[len(digits)-2:])
}

func matches(s string, fields []string) bool {
	for _, f := range fields {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}

func truncate(s string) string {
	if len(s) <= maxLogBody {
		return s
	}
	return s[:maxLogBody] + truncatedAt
}
