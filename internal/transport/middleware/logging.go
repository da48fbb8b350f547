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

	pkglogger "github.com/frahmantamala/personal-finance/pkg/logger"
	"github.com/go-chi/chi/middleware"
)

// sensitiveFields are matched as substrings of lower-cased header and JSON
// key names.
var sensitiveFields = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"api_key",
	"cookie",
	"credential",
}

const (
	maxLoggedBody = 4096
	filtered      = "[FILTERED]"
)

// LoggingMiddleware logs every request and its outcome. Request bodies are
// logged at debug level only, since they carry amounts and descriptions.
// Response bodies are kept for error responses only.
func LoggingMiddleware(fallback *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := middleware.GetReqID(r.Context())
			lg := pkglogger.FromOr(r.Context(), fallback)

			logRequest(r.Context(), lg, r, reqID)

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			logResponse(lg, rec, r, time.Since(start), reqID)
		})
	}
}

// statusRecorder remembers the status and size of a response, and the body
// of error responses.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int
	errBody bytes.Buffer
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if rw.status == 0 {
		rw.status = http.StatusOK
	}
	if rw.status >= http.StatusBadRequest && rw.errBody.Len() < maxLoggedBody {
		rw.errBody.Write(b)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.written += n
	return n, err
}

func logRequest(ctx context.Context, lg *slog.Logger, r *http.Request, reqID string) {
	attrs := []any{
		"request_id", reqID,
		"method", r.Method,
		"path", r.URL.Path,
		"query", r.URL.RawQuery,
		"remote_addr", r.RemoteAddr,
		"user_agent", r.UserAgent(),
	}

	if lg.Enabled(ctx, slog.LevelDebug) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		attrs = append(attrs, "headers", maskHeaders(r.Header), "body", maskBody(body))
		lg.Debug("incoming request", attrs...)
		return
	}

	lg.Info("incoming request", attrs...)
}

func logResponse(lg *slog.Logger, rw *statusRecorder, r *http.Request, duration time.Duration, reqID string) {
	status := rw.status
	if status == 0 {
		status = http.StatusOK
	}

	attrs := []any{
		"request_id", reqID,
		"method", r.Method,
		"path", r.URL.Path,
		"status_code", status,
		"duration_ms", duration.Milliseconds(),
		"response_size", rw.written,
	}

	level := slog.LevelInfo
	switch {
	case status >= http.StatusInternalServerError:
		level = slog.LevelError
	case status >= http.StatusBadRequest:
		level = slog.LevelWarn
	}
	if status >= http.StatusBadRequest {
		attrs = append(attrs, "body", maskBody(rw.errBody.Bytes()))
	}

	// The request context may already be cancelled once the client is gone.
	lg.Log(context.Background(), level, "response", attrs...)
}

func isSensitive(name string) bool {
	name = strings.ToLower(name)
	for _, field := range sensitiveFields {
		if strings.Contains(name, field) {
			return true
		}
	}
	return false
}

func maskHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSensitive(name) {
			out[name] = filtered
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// maskBody masks sensitive keys of a JSON body and caps the result. Bodies
// that are not JSON are replaced by a size marker.
func maskBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return "[non-JSON body omitted]"
	}

	masked, err := json.Marshal(maskJSON(data))
	if err != nil {
		return "[unloggable body]"
	}
	if len(masked) > maxLoggedBody {
		return string(masked[:maxLoggedBody]) + "...(truncated)"
	}
	return string(masked)
}

func maskJSON(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, value := range v {
			if isSensitive(key) {
				out[key] = filtered
				continue
			}
			out[key] = maskJSON(value)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = maskJSON(item)
		}
		return out
	default:
		return v
	}
}
