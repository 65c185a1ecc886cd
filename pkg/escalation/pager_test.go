package escalation_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waldyrious/celo-monorepo/pkg/escalation"
)

func TestHTTPPager_DeliversPage(t *testing.T) {
	var received escalation.Page
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	pager := escalation.NewHTTPPager(srv.URL)
	err := pager.Page(context.Background(), escalation.SeverityCritical, "usage counter diverged", map[string]any{
		"expected_delta": 5,
		"observed_delta": 3,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, received.ID)
	assert.Equal(t, escalation.SeverityCritical, received.Severity)
	assert.Equal(t, "usage counter diverged", received.Summary)
	assert.Equal(t, float64(3), received.Details["observed_delta"])
}

func TestHTTPPager_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	pager := escalation.NewHTTPPager(srv.URL)
	err := pager.Page(context.Background(), escalation.SeverityCritical, "boom", nil)
	assert.Error(t, err)
}

func TestLogPager_NeverFails(t *testing.T) {
	pager := escalation.NewLogPager()
	assert.NoError(t, pager.Page(context.Background(), escalation.SeverityWarning, "test", nil))
}
