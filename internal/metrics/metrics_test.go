package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkingovr/logfilter/api"
)

// counterValue returns the decisions counter for the given label set.
func counterValue(t *testing.T, r *Recorder, labels map[string]string) float64 {
	t.Helper()
	families, err := r.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "logfilter_decisions_total" {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue next
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestRecorder_Observe(t *testing.T) {
	r := New()
	r.Observe("console", api.ResultAccept, "_default", time.Microsecond)
	r.Observe("console", api.ResultAccept, "_default", time.Microsecond)
	r.Observe("console", api.ResultDeny, "deny_all", time.Microsecond)

	assert.Equal(t, 2.0, counterValue(t, r, map[string]string{
		"chain": "console", "result": "accept", "decided_by": "_default",
	}))
	assert.Equal(t, 1.0, counterValue(t, r, map[string]string{
		"chain": "console", "result": "deny", "decided_by": "deny_all",
	}))
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.Observe("file", api.ResultDeny, "log_level_range", time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `logfilter_decisions_total{chain="file",decided_by="log_level_range",result="deny"} 1`)
	assert.Contains(t, string(body), `logfilter_decision_duration_seconds_count{chain="file"} 1`)
}

func TestRecorders_AreIndependent(t *testing.T) {
	a, b := New(), New()
	a.Observe("x", api.ResultAccept, "_default", 0)
	assert.Equal(t, 0.0, counterValue(t, b, map[string]string{
		"chain": "x", "result": "accept", "decided_by": "_default",
	}))
}
