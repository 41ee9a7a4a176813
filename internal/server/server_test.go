// Server tests document the panel API contract: the aggregation endpoint
// always answers 200 with a renderable envelope once the body decodes;
// only transport-level problems (bad JSON, wrong method) get error codes.
package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/issuetrail/issuetrail/internal/jira"
	"github.com/issuetrail/issuetrail/internal/timeline"
)

type stubFetcher struct {
	histories   []jira.History
	comments    []jira.Comment
	attachments []jira.Attachment
	lastKey     string
}

func (s *stubFetcher) FetchChangelog(ctx context.Context, issueKey string) ([]jira.History, error) {
	s.lastKey = issueKey
	return s.histories, nil
}

func (s *stubFetcher) FetchComments(ctx context.Context, issueKey string) ([]jira.Comment, error) {
	return s.comments, nil
}

func (s *stubFetcher) FetchAttachments(ctx context.Context, issueKey string) ([]jira.Attachment, error) {
	return s.attachments, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, stub *stubFetcher, now time.Time) *httptest.Server {
	t.Helper()

	agg := timeline.NewAggregator(stub,
		timeline.WithLogger(quietLogger()),
		timeline.WithClock(func() time.Time { return now }),
	)

	server := httptest.NewServer(New(agg, quietLogger()))
	t.Cleanup(server.Close)
	return server
}

// TestActivityEndpoint documents the round trip:
// - POST /api/activity with an issue key and filter returns the envelope
// - The wrapped filter shape from the panel's select widget also decodes
func TestActivityEndpoint(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	stub := &stubFetcher{
		histories: []jira.History{
			{ID: "10200", Author: "Jane Smith", Created: now.Add(-time.Hour),
				Items: []jira.HistoryItem{{Field: "status", From: "To Do", To: "Done"}}},
			{ID: "10100", Author: "Jane Smith", Created: now.AddDate(0, -3, 0),
				Items: []jira.HistoryItem{{Field: "priority", From: "Low", To: "High"}}},
		},
		comments: []jira.Comment{
			{ID: "20001", Author: "Alex Doe", Body: "Fixed.", Created: now.Add(-2 * time.Hour)},
		},
	}
	server := newTestServer(t, stub, now)

	t.Run("bare filter string", func(t *testing.T) {
		resp, err := http.Post(server.URL+"/api/activity", "application/json",
			strings.NewReader(`{"issueKey": "KC-24", "filter": "all"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %q", ct)
		}

		var env timeline.Envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			t.Fatalf("failed to decode envelope: %v", err)
		}
		if env.Total != 3 {
			t.Errorf("expected total 3 with no cutoff, got %d", env.Total)
		}
	})

	t.Run("wrapped filter object", func(t *testing.T) {
		resp, err := http.Post(server.URL+"/api/activity", "application/json",
			strings.NewReader(`{"issueKey": "KC-24", "filter": {"value": "7d"}}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer resp.Body.Close()

		var env timeline.Envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			t.Fatalf("failed to decode envelope: %v", err)
		}
		if env.Total != 2 {
			t.Errorf("expected the old change filtered out, got total %d", env.Total)
		}
	})
}

// TestActivityEndpoint_DefaultIssueKey documents the legacy fallback at
// the API boundary: an empty body object still aggregates something.
func TestActivityEndpoint_DefaultIssueKey(t *testing.T) {
	stub := &stubFetcher{}
	server := newTestServer(t, stub, time.Now())

	resp, err := http.Post(server.URL+"/api/activity", "application/json",
		strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if stub.lastKey != timeline.DefaultIssueKey {
		t.Errorf("expected fallback issue key %q, got %q", timeline.DefaultIssueKey, stub.lastKey)
	}
}

// TestActivityEndpoint_EmptyCollectionsSerializeAsArrays documents the
// frontend contract on the wire: [] for empty collections, never null.
func TestActivityEndpoint_EmptyCollectionsSerializeAsArrays(t *testing.T) {
	server := newTestServer(t, &stubFetcher{}, time.Now())

	resp, err := http.Post(server.URL+"/api/activity", "application/json",
		strings.NewReader(`{"issueKey": "KC-24"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{`"changelog":[]`, `"comments":[]`, `"attachments":[]`, `"total":0`} {
		if !strings.Contains(string(body), want) {
			t.Errorf("expected response to contain %s, got %s", want, body)
		}
	}
	if strings.Contains(string(body), "null") {
		t.Errorf("expected no null collections, got %s", body)
	}
}

func TestActivityEndpoint_RejectsBadJSON(t *testing.T) {
	server := newTestServer(t, &stubFetcher{}, time.Now())

	resp, err := http.Post(server.URL+"/api/activity", "application/json",
		strings.NewReader(`{"issueKey": `))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", resp.StatusCode)
	}
}

func TestActivityEndpoint_RejectsWrongMethod(t *testing.T) {
	server := newTestServer(t, &stubFetcher{}, time.Now())

	resp, err := http.Get(server.URL + "/api/activity")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for GET, got %d", resp.StatusCode)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t, &stubFetcher{}, time.Now())

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Errorf("expected body ok, got %q", body)
	}
}

// TestRequestID documents request correlation:
// - Every response carries an X-Request-ID
// - An id supplied by the caller is echoed back unchanged
func TestRequestID(t *testing.T) {
	server := newTestServer(t, &stubFetcher{}, time.Now())

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("expected a generated request id on the response")
	}

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/healthz", nil)
	req.Header.Set("X-Request-ID", "panel-trace-42")

	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("X-Request-ID"); got != "panel-trace-42" {
		t.Errorf("expected echoed request id, got %q", got)
	}
}
