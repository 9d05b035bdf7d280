package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"warmbed/internal/models"
	"warmbed/internal/service"
)

func TestEventsHandler_ListAndValidation(t *testing.T) {
	auth := &mockAuth{parseID: 99}
	now := time.Now().UTC().Truncate(time.Second)
	events := []models.ReconcileEvent{
		{EventID: "e1", OccurredAt: now, ProfileID: 1, Type: "ACTION", Description: "set_level to 20"},
		{EventID: "e2", OccurredAt: now.Add(1 * time.Second), ProfileID: 2, Type: "SKIPPED", Description: "already on target"},
	}
	logs := &mockEventLog{resp: events}
	s := &service.Service{
		Authorization: auth,
		EventLog:      logs,
	}
	r := newTestRouter(s)

	// invalid 'from' → 400
	w := doAuthed(r, http.MethodGet, "/api/v1/events?from=notatime", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 invalid 'from', got %d", w.Code)
	}

	// inverted range → 400
	w = doAuthed(r, http.MethodGet, "/api/v1/events?from=2026-08-02&to=2026-08-01", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 inverted range, got %d", w.Code)
	}

	// valid range and type (lowercase type normalized to upper)
	q := "/api/v1/events?from=" + now.Format(time.RFC3339) + "&to=" + now.Add(2*time.Second).Format(time.RFC3339) + "&type=skipped"
	w = doAuthed(r, http.MethodGet, q, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("events status=%d, body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Count  int                     `json:"count"`
		Events []models.ReconcileEvent `json:"events"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Count != 2 || len(out.Events) != 2 {
		t.Fatalf("unexpected response: %+v", out)
	}
	if logs.lastType != "SKIPPED" {
		t.Fatalf("expected lastType SKIPPED, got %q", logs.lastType)
	}
}

func TestEventsHandler_DateOnlyToIsEndOfDay(t *testing.T) {
	auth := &mockAuth{parseID: 99}
	logs := &mockEventLog{}
	s := &service.Service{Authorization: auth, EventLog: logs}
	r := newTestRouter(s)

	w := doAuthed(r, http.MethodGet, "/api/v1/events?to=2026-08-15", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	wantDay := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	if !logs.lastTo.After(wantDay.Add(23 * time.Hour)) {
		t.Fatalf("expected end-of-day 'to', got %v", logs.lastTo)
	}
	if logs.lastTo.After(wantDay.Add(24 * time.Hour)) {
		t.Fatalf("'to' overflowed into the next day: %v", logs.lastTo)
	}
}

func TestReconcileHandler_Trigger(t *testing.T) {
	auth := &mockAuth{parseID: 1}
	rec := &mockReconciliation{summary: service.RunSummary{Profiles: 3, Reconciled: 2, Skipped: 1}}
	s := &service.Service{Authorization: auth, Reconciliation: rec}
	r := newTestRouter(s)

	w := doAuthed(r, http.MethodPost, "/api/v1/reconcile", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if rec.runCalls != 1 {
		t.Fatalf("expected one run, got %d", rec.runCalls)
	}
	if rec.lastOpts.SimulatedTime != nil {
		t.Fatalf("expected real-time run, got simulated at %v", rec.lastOpts.SimulatedTime)
	}

	var out struct {
		Status    string             `json:"status"`
		Simulated bool               `json:"simulated"`
		Summary   service.RunSummary `json:"summary"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Status != statusOK || out.Simulated || out.Summary.Profiles != 3 {
		t.Fatalf("unexpected response: %+v", out)
	}
}

func TestReconcileHandler_SimulatedAt(t *testing.T) {
	auth := &mockAuth{parseID: 1}
	rec := &mockReconciliation{}
	s := &service.Service{Authorization: auth, Reconciliation: rec}
	r := newTestRouter(s)

	at := "2026-08-27T01:30:00Z"
	w := doAuthed(r, http.MethodPost, "/api/v1/reconcile?at="+at, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if rec.lastOpts.SimulatedTime == nil {
		t.Fatal("expected simulated time to be set")
	}
	want, _ := time.Parse(time.RFC3339, at)
	if !rec.lastOpts.SimulatedTime.Equal(want) {
		t.Fatalf("simulated time: got %v, want %v", rec.lastOpts.SimulatedTime, want)
	}

	var out struct {
		Simulated bool `json:"simulated"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if !out.Simulated {
		t.Fatalf("expected simulated=true in response: %s", w.Body.String())
	}

	// malformed 'at' → 400, no run
	before := rec.runCalls
	w = doAuthed(r, http.MethodPost, "/api/v1/reconcile?at=yesterday", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad 'at', got %d", w.Code)
	}
	if rec.runCalls != before {
		t.Fatal("run should not execute on bad 'at'")
	}
}
