package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/personal-finance/internal/transport/middleware"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LoggingMiddleware", func() {
	var out *bytes.Buffer

	newLogger := func(level slog.Level) *slog.Logger {
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
	}

	BeforeEach(func() {
		out = &bytes.Buffer{}
	})

	It("should mask credentials in debug request logs and keep the body readable downstream", func() {
		var seen string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			buf := new(bytes.Buffer)
			_, _ = buf.ReadFrom(r.Body)
			seen = buf.String()
			w.WriteHeader(http.StatusNoContent)
		})

		body := `{"email":"alice@example.com","password":"hunter22"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer abc.def.ghi")
		middleware.LoggingMiddleware(newLogger(slog.LevelDebug))(next).ServeHTTP(httptest.NewRecorder(), req)

		Expect(seen).To(Equal(body))
		Expect(out.String()).To(ContainSubstring("alice@example.com"))
		Expect(out.String()).To(ContainSubstring("[FILTERED]"))
		Expect(out.String()).NotTo(ContainSubstring("hunter22"))
		Expect(out.String()).NotTo(ContainSubstring("abc.def.ghi"))
	})

	It("should leave request bodies out at info level", func() {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"amount":"12.50"}`))
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(`{"description":"rent"}`))
		middleware.LoggingMiddleware(newLogger(slog.LevelInfo))(next).ServeHTTP(httptest.NewRecorder(), req)

		Expect(out.String()).To(ContainSubstring(`"status_code":200`))
		Expect(out.String()).NotTo(ContainSubstring("rent"))
		Expect(out.String()).NotTo(ContainSubstring("12.50"))
	})

	It("should log the body of error responses as a warning", func() {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"code":"DUPLICATE_BUDGET"}`))
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/budgets", nil)
		rec := httptest.NewRecorder()
		middleware.LoggingMiddleware(newLogger(slog.LevelInfo))(next).ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusConflict))
		Expect(out.String()).To(ContainSubstring(`"level":"WARN"`))
		Expect(out.String()).To(ContainSubstring("DUPLICATE_BUDGET"))
	})
})
