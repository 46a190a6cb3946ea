package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewManager_CustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewManager(WithNamespace("test"), WithRegistry(reg))

	m.photosAnalyzed.WithLabelValues("scored").Inc()

	if got := testutil.ToFloat64(m.photosAnalyzed.WithLabelValues("scored")); got != 1 {
		t.Errorf("expected 1 scored photo, got %v", got)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "test_photos_analyzed_total" {
			found = true
		}
	}
	if !found {
		t.Error("expected namespaced metric in custom registry")
	}
}

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(globalManager.photosAnalyzed.WithLabelValues("fallback"))
	RecordPhotoAnalyzed(true, 0.01)
	if got := testutil.ToFloat64(globalManager.photosAnalyzed.WithLabelValues("fallback")); got != before+1 {
		t.Errorf("fallback counter: expected %v, got %v", before+1, got)
	}

	pages := testutil.ToFloat64(globalManager.pagesComposed)
	RecordBookComposed(12)
	if got := testutil.ToFloat64(globalManager.pagesComposed); got != pages+12 {
		t.Errorf("pages counter: expected %v, got %v", pages+12, got)
	}

	RecordEnrichment("ollama", "timeout")
	if got := testutil.ToFloat64(globalManager.enrichments.WithLabelValues("ollama", "timeout")); got < 1 {
		t.Errorf("expected enrichment timeout to be counted, got %v", got)
	}

	RecordEditIntent("swap", false)
	if got := testutil.ToFloat64(globalManager.editIntents.WithLabelValues("swap", "false")); got < 1 {
		t.Errorf("expected edit intent to be counted, got %v", got)
	}
}

func TestHandler(t *testing.T) {
	RecordPersistError()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "photobook_persist_errors_total") {
		t.Errorf("expected persist errors metric in scrape output")
	}
}
