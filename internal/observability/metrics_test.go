package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewCollector_RegistersAndServes(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	c.Sessions.WithLabelValues(OutcomeComplete).Inc()
	c.NodesMapped.Inc()
	c.NodesMapped.Inc()
	c.NodesUnmapped.Inc()
	c.StepDuration.Observe(0.002)
	c.SubstrateNodes.Set(100)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		`embedding_sessions_total{outcome="complete"} 1`,
		"virtual_nodes_mapped_total 2",
		"virtual_nodes_unmapped_total 1",
		"substrate_nodes 100",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestNewCollector_DuplicateRegistrationTolerated(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewCollector(reg); err != nil {
		t.Fatalf("first NewCollector: %v", err)
	}
	if _, err := NewCollector(reg); err != nil {
		t.Fatalf("second NewCollector: %v", err)
	}
}
