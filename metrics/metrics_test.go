package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestRecordRequest(t *testing.T) {
	tests := []struct {
		name       string
		tool       string
		duration   float64
		success    bool
		wantStatus string
	}{
		{
			name:       "successful request",
			tool:       "test_tool",
			duration:   0.5,
			success:    true,
			wantStatus: "success",
		},
		{
			name:       "failed request",
			tool:       "test_tool",
			duration:   1.0,
			success:    false,
			wantStatus: "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := getCounterValue(t, RequestsTotal.WithLabelValues(tt.tool, tt.wantStatus))
			RecordRequest(tt.tool, tt.duration, tt.success)

			if got := getCounterValue(t, RequestsTotal.WithLabelValues(tt.tool, tt.wantStatus)); got != before+1 {
				t.Errorf("expected counter %v, got %v", before+1, got)
			}
		})
	}
}

func TestRecordAPICall(t *testing.T) {
	tests := []struct {
		name      string
		action    string
		duration  float64
		success   bool
		errorCode string
	}{
		{
			name:     "successful API call",
			action:   "query",
			duration: 0.1,
			success:  true,
		},
		{
			name:      "failed API call with error code",
			action:    "edit",
			duration:  0.5,
			success:   false,
			errorCode: "badtoken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordAPICall(tt.action, tt.duration, tt.success, tt.errorCode)

			status := "success"
			if !tt.success {
				status = "error"
			}
			counter, err := APIRequestsTotal.GetMetricWithLabelValues(tt.action, status)
			if err != nil {
				t.Fatalf("failed to get metric: %v", err)
			}
			if getCounterValue(t, counter) < 1 {
				t.Error("expected counter to be incremented")
			}

			if tt.errorCode != "" {
				errCounter, err := APIErrors.GetMetricWithLabelValues(tt.action, tt.errorCode)
				if err != nil {
					t.Fatalf("failed to get error metric: %v", err)
				}
				if getCounterValue(t, errCounter) < 1 {
					t.Error("expected error counter to be incremented")
				}
			}
		})
	}
}

func TestRecordTokenCacheAccess(t *testing.T) {
	hits := TokenCacheAccess.WithLabelValues("edit", "hit")
	misses := TokenCacheAccess.WithLabelValues("edit", "miss")
	initialHits := getCounterValue(t, hits)
	initialMisses := getCounterValue(t, misses)

	RecordTokenCacheAccess("edit", true)
	if getCounterValue(t, hits) != initialHits+1 {
		t.Error("expected token cache hits to increment")
	}

	RecordTokenCacheAccess("edit", false)
	if getCounterValue(t, misses) != initialMisses+1 {
		t.Error("expected token cache misses to increment")
	}
}

func TestRecordLoginAndEdit(t *testing.T) {
	incomplete := LoginAttempts.WithLabelValues("incomplete")
	before := getCounterValue(t, incomplete)
	RecordLogin("incomplete")
	if getCounterValue(t, incomplete) != before+1 {
		t.Error("expected incomplete login counter to increment")
	}

	edits := EditOperations.WithLabelValues("success")
	before = getCounterValue(t, edits)
	RecordEdit("success")
	if getCounterValue(t, edits) != before+1 {
		t.Error("expected edit counter to increment")
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	counter := HTTPRequestsTotal.WithLabelValues("POST", "200")
	before := getCounterValue(t, counter)

	RecordHTTPRequest("POST", "/w/api.php", "200", 0.02)

	if getCounterValue(t, counter) != before+1 {
		t.Error("expected HTTP request counter to increment")
	}
}

func TestMetricsRegistered(t *testing.T) {
	collectors := []prometheus.Collector{
		RequestsTotal,
		RequestDuration,
		RequestInFlight,
		PanicsRecovered,
		APILatency,
		APIRequestsTotal,
		APIErrors,
		TokenCacheAccess,
		LoginAttempts,
		EditOperations,
		ContentSize,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	}

	for i, m := range collectors {
		if m == nil {
			t.Errorf("metric at index %d is nil", i)
		}
	}
}

func TestNamespace(t *testing.T) {
	if Namespace != "mediawiki_client" {
		t.Errorf("expected namespace 'mediawiki_client', got '%s'", Namespace)
	}
}

// Helper to get counter value
func getCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return m.Counter.GetValue()
}
