package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestActor(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"given", "  inspector-7 ", "inspector-7"},
		{"missing", "", DefaultActor},
		{"column width", strings.Repeat("a", 64), strings.Repeat("a", 64)},
		{"too long", strings.Repeat("a", 65), DefaultActor},
		{"multibyte within width", strings.Repeat("é", 64), strings.Repeat("é", 64)},
		{"control characters", "eve\x00", DefaultActor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(Actor())
			var got string
			r.GET("/", func(c *gin.Context) { got = ActorFrom(c) })

			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set(ActorHeader, tt.header)
			}
			r.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("actor = %q, want %q", got, tt.want)
			}
		})
	}
}

type countingLimiter struct {
	counts map[string]int
	err    error
}

func (l *countingLimiter) CheckRateLimit(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	l.counts[key]++
	return l.counts[key] <= limit, nil
}

func TestRateLimit(t *testing.T) {
	limiter := &countingLimiter{counts: map[string]int{}}
	r := gin.New()
	r.GET("/ping", RateLimit(limiter, 2, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))
		codes[i] = w.Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected codes %v", codes)
	}
}

func TestRateLimit_FailOpen(t *testing.T) {
	for name, limiter := range map[string]Limiter{
		"nil":   nil,
		"error": &countingLimiter{err: errors.New("redis down")},
	} {
		t.Run(name, func(t *testing.T) {
			r := gin.New()
			r.GET("/ping", RateLimit(limiter, 1, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

			for i := 0; i < 3; i++ {
				w := httptest.NewRecorder()
				r.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))
				if w.Code != http.StatusOK {
					t.Fatalf("request %d: expected 200, got %d", i, w.Code)
				}
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated request id")
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("expected echoed request id, got %q", got)
	}
}
