package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"paygate/pkg/correlation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelationHandler_InjectsID(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewCorrelationHandler(slog.NewJSONHandler(&buf, nil)))

	l.InfoContext(correlation.WithID(context.Background(), "corr-42"), "hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "corr-42", rec["correlation_id"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestCorrelationMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testCases := []struct {
		name     string
		inbound  string
		expectID func(t *testing.T, id string)
	}{
		{
			name:    "keeps a valid inbound id",
			inbound: "abc-123",
			expectID: func(t *testing.T, id string) {
				assert.Equal(t, "abc-123", id)
			},
		},
		{
			name:    "replaces an id with control characters",
			inbound: "bad\nid",
			expectID: func(t *testing.T, id string) {
				assert.NotEqual(t, "bad\nid", id)
				assert.Len(t, id, 36)
			},
		},
		{
			name: "mints an id when absent",
			expectID: func(t *testing.T, id string) {
				assert.Len(t, id, 36)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var seen string
			r := gin.New()
			r.Use(CorrelationMiddleware())
			r.GET("/", func(c *gin.Context) {
				seen = correlation.FromContext(c.Request.Context())
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.inbound != "" {
				req.Header.Set(correlation.HeaderName, tc.inbound)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			tc.expectID(t, seen)
			assert.Equal(t, seen, w.Header().Get(correlation.HeaderName))
		})
	}
}
