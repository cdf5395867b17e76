package preview

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthHandler(t *testing.T) {
	s := NewServer(":0")
	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestIndexHandler(t *testing.T) {
	s := NewServer(":0")
	rec := httptest.NewRecorder()
	s.handleIndex(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}
}

func TestPublishProgressWithoutClients(t *testing.T) {
	s := NewServer(":0")
	// Must not panic or block with zero viewers.
	s.PublishProgress(Progress{Done: 1, Total: 10, File: "out.mp4"})

	s.progressMu.RLock()
	defer s.progressMu.RUnlock()
	if s.last.Done != 1 || s.last.Total != 10 {
		t.Errorf("last progress = %+v", s.last)
	}
}
