package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkarpinos/shorty/internal/config"
	"github.com/bkarpinos/shorty/internal/session"
	"github.com/bkarpinos/shorty/internal/shortener"
)

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	t.Setenv("SHORTY_STORAGE_DRIVER", driver)
	t.Setenv("SHORTY_REGISTRATION_DELAY", "0s")
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	return cfg
}

func TestAppEndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, driver := range []string{"json", "sql"} {
		t.Run(driver, func(t *testing.T) {
			t0 := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
			now := t0
			a, err := New(testConfig(t, driver), nil, WithClock(func() time.Time { return now }))
			require.NoError(t, err)
			t.Cleanup(func() { _ = a.Close() })

			_, err = a.Sessions.Register(context.Background(), session.Details{
				Name: "Test User", Email: "test@example.edu", RollNo: "aa1bb",
				MobileNo: "9999999999", GithubUsername: "tester", AccessCode: "XyZ123",
			})
			require.NoError(t, err)

			l, err := a.Shortener.Shorten(shortener.Request{LongURL: "https://example.com/page", Shortcode: "abc123"})
			require.NoError(t, err)
			assert.Equal(t, "http://localhost:8080/abc123", a.Shortener.ShortURL(l.Shortcode))

			gen := a.generator
			a.SetPort(9090)
			assert.Same(t, gen, a.generator)
			assert.Equal(t, "http://localhost:9090/abc123", a.Shortener.ShortURL("abc123"))
			handler := a.NewServer().Handler()

			now = t0.Add(29 * time.Minute)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/abc123", nil))
			require.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "https://example.com/page", rec.Header().Get("Location"))

			now = t0.Add(31 * time.Minute)
			rec = httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), "http://localhost:9090/abc123")
			assert.Contains(t, rec.Body.String(), "(expired)")

			found, err := a.Registry.Find("abc123")
			require.NoError(t, err)
			assert.Equal(t, 1, found.Clicks)
		})
	}
}
