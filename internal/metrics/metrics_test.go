package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAreExposed(t *testing.T) {
	before := testutil.ToFloat64(ItemsUsed.WithLabelValues("consumed"))
	ItemsUsed.WithLabelValues("consumed").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ItemsUsed.WithLabelValues("consumed")))

	ChoicesApplied.Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "textrpg_choices_applied_total")
	assert.Contains(t, string(body), `textrpg_items_used_total{outcome="consumed"}`)
	assert.Contains(t, string(body), "go_goroutines")
}
