// Resilience tests document how the client copes with imperfect tracker
// responses. The dashboard panel must keep rendering even when the API
// returns partial, padded or malformed payloads.
package jira

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func jsonServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

// TestClient_IgnoresUnexpectedFields documents forward compatibility:
// - Extra fields added by future tracker versions are ignored
// - Known fields still decode correctly
func TestClient_IgnoresUnexpectedFields(t *testing.T) {
	server := jsonServer(t, `{
		"key": "KC-24",
		"futureField": {"nested": true},
		"changelog": {
			"total": 1,
			"histories": [
				{
					"id": "10100",
					"author": {"displayName": "Jane Smith", "accountId": "5b10a2"},
					"created": "2024-03-01T10:15:30.000+0000",
					"items": [
						{"field": "status", "fieldtype": "jira", "fromString": "To Do", "toString": "Done"}
					]
				}
			]
		}
	}`)
	defer server.Close()

	client := newTestClient(server.URL)

	histories, err := client.FetchChangelog(context.Background(), "KC-24")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(histories) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(histories))
	}
	if histories[0].Items[0].To != "Done" {
		t.Errorf("expected known fields to survive unknown siblings, got %+v", histories[0].Items[0])
	}
}

// TestClient_EmptyResponses documents empty-result handling:
// - An issue without activity yields empty slices, not errors
func TestClient_EmptyResponses(t *testing.T) {
	t.Run("no changelog entries", func(t *testing.T) {
		server := jsonServer(t, `{"key": "KC-24", "changelog": {"histories": []}}`)
		defer server.Close()

		histories, err := newTestClient(server.URL).FetchChangelog(context.Background(), "KC-24")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(histories) != 0 {
			t.Errorf("expected no histories, got %d", len(histories))
		}
	})

	t.Run("no comments", func(t *testing.T) {
		server := jsonServer(t, `{"comments": []}`)
		defer server.Close()

		comments, err := newTestClient(server.URL).FetchComments(context.Background(), "KC-24")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(comments) != 0 {
			t.Errorf("expected no comments, got %d", len(comments))
		}
	})

	t.Run("no attachments field", func(t *testing.T) {
		server := jsonServer(t, `{"key": "KC-24", "fields": {}}`)
		defer server.Close()

		attachments, err := newTestClient(server.URL).FetchAttachments(context.Background(), "KC-24")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(attachments) != 0 {
			t.Errorf("expected no attachments, got %d", len(attachments))
		}
	})
}

// TestClient_MissingOptionalFields documents partial-payload handling:
// - A deleted account leaves the author empty rather than failing the fetch
// - Unparseable timestamps decode to the zero time
func TestClient_MissingOptionalFields(t *testing.T) {
	server := jsonServer(t, `{
		"comments": [
			{"id": "20001", "body": "Orphaned comment.", "created": "not-a-timestamp"}
		]
	}`)
	defer server.Close()

	comments, err := newTestClient(server.URL).FetchComments(context.Background(), "KC-24")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(comments))
	}
	if comments[0].Author != "" {
		t.Errorf("expected empty author for deleted account, got %q", comments[0].Author)
	}
	if !comments[0].Created.IsZero() {
		t.Errorf("expected zero time for unparseable timestamp, got %v", comments[0].Created)
	}
}

// TestClient_MalformedJSON documents decode-failure handling:
// - Truncated payloads produce an error, never a panic
func TestClient_MalformedJSON(t *testing.T) {
	server := jsonServer(t, `{"comments": [{"id": "20`)
	defer server.Close()

	_, err := newTestClient(server.URL).FetchComments(context.Background(), "KC-24")

	if err == nil {
		t.Fatal("expected error for truncated payload")
	}
}

// TestClient_StatusMessages documents operator-facing error text:
// - Common tracker statuses map to actionable messages
func TestClient_StatusMessages(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		contains string
	}{
		{"unauthorized", http.StatusUnauthorized, "authentication"},
		{"forbidden", http.StatusForbidden, "access denied"},
		{"not found", http.StatusNotFound, "not found"},
		{"rate limited", http.StatusTooManyRequests, "rate limit"},
		{"server error", http.StatusInternalServerError, "tracker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).FetchChangelog(context.Background(), "KC-24")

			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(strings.ToLower(err.Error()), tt.contains) {
				t.Errorf("expected message to mention %q, got %q", tt.contains, err.Error())
			}
		})
	}
}

// TestClient_FixturePayload documents compatibility with a captured
// tracker response. The fixture mirrors the shape returned by Jira
// Cloud's REST API v3 so decoding regressions surface here first.
func TestClient_FixturePayload(t *testing.T) {
	fixture := loadFixture(t, "issue_changelog.json")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(fixture)
	}))
	defer server.Close()

	histories, err := newTestClient(server.URL).FetchChangelog(context.Background(), "KC-24")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(histories) != 3 {
		t.Fatalf("expected 3 history entries from fixture, got %d", len(histories))
	}

	total := 0
	for _, h := range histories {
		if h.ID == "" || h.Created.IsZero() {
			t.Errorf("fixture history missing identity or timestamp: %+v", h)
		}
		total += len(h.Items)
	}
	if total != 5 {
		t.Errorf("expected 5 changed fields across fixture entries, got %d", total)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(fixture, &decoded); err != nil {
		t.Fatalf("fixture is not valid JSON: %v", err)
	}
}
