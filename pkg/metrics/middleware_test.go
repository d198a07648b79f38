package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOutcomeOf(t *testing.T) {
	testCases := []struct {
		status   int
		expected string
	}{
		{status: http.StatusOK, expected: OutcomeSuccess},
		{status: http.StatusCreated, expected: OutcomeSuccess},
		{status: http.StatusConflict, expected: OutcomeClientError},
		{status: http.StatusUnprocessableEntity, expected: OutcomeClientError},
		{status: http.StatusBadGateway, expected: OutcomeServerError},
		{status: http.StatusServiceUnavailable, expected: OutcomeServerError},
	}

	for _, tc := range testCases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			assert.Equal(t, tc.expected, OutcomeOf(tc.status))
		})
	}
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(GinMiddleware())
	r.POST("/v1/sessions", func(c *gin.Context) {
		TagProvider(c, c.Query("provider"))
		if c.Query("fail") != "" {
			c.Status(http.StatusBadGateway)
			return
		}
		c.Status(http.StatusCreated)
	})

	serve := func(target string) {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, target, nil))
	}

	t.Run("labels requests by provider and outcome", func(t *testing.T) {
		created := HTTPRequestsTotal.WithLabelValues("/v1/sessions", http.MethodPost, "paystack", OutcomeSuccess)
		failed := HTTPRequestsTotal.WithLabelValues("/v1/sessions", http.MethodPost, "paystack", OutcomeServerError)
		beforeCreated, beforeFailed := testutil.ToFloat64(created), testutil.ToFloat64(failed)

		serve("/v1/sessions?provider=paystack")
		serve("/v1/sessions?provider=paystack&fail=1")

		assert.Equal(t, beforeCreated+1, testutil.ToFloat64(created))
		assert.Equal(t, beforeFailed+1, testutil.ToFloat64(failed))
	})

	t.Run("falls back to none when no provider was tagged", func(t *testing.T) {
		untagged := HTTPRequestsTotal.WithLabelValues("/v1/sessions", http.MethodPost, noProvider, OutcomeSuccess)
		before := testutil.ToFloat64(untagged)

		serve("/v1/sessions")

		assert.Equal(t, before+1, testutil.ToFloat64(untagged))
	})

	t.Run("collapses unmatched routes into one label", func(t *testing.T) {
		unmatched := HTTPRequestsTotal.WithLabelValues(unknownRoute, http.MethodGet, noProvider, OutcomeClientError)
		before := testutil.ToFloat64(unmatched)

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope/a1b2", nil))

		assert.Equal(t, before+1, testutil.ToFloat64(unmatched))
	})
}
