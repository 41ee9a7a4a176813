// Package timeline aggregates a work item's tracker activity into a single
// filterable timeline.
//
// This package enables issuetrail to:
// - Resolve relative-time filter tokens into absolute cutoff instants
// - Fetch field changes, comments and attachments for one issue
// - Normalize the three sources into a common tagged record shape
// - Degrade failed sources to empty collections instead of failing the call
package timeline

import (
	"encoding/json"
	"sort"
	"time"
)

// DefaultIssueKey is queried when a request carries no issue key. A legacy
// behavior of the original panel, kept for compatibility; every use is
// logged at warn level.
const DefaultIssueKey = "KC-24"

// Kind discriminates the three activity record variants.
type Kind string

const (
	KindChangelog  Kind = "changelog"
	KindComment    Kind = "comment"
	KindAttachment Kind = "attachment"
)

// Record is the closed set of activity variants. The unexported method
// keeps the set closed so presentation code can type-switch exhaustively.
type Record interface {
	// Kind reports which variant this record is.
	Kind() Kind
	// Occurred reports the instant the activity happened.
	Occurred() time.Time

	isRecord()
}

// ChangeRecord is one field change. A history entry that touches several
// fields at once flattens into several ChangeRecords sharing the entry's
// author and timestamp.
type ChangeRecord struct {
	ID     string    `json:"id"`
	Author string    `json:"author"`
	Field  string    `json:"field"`
	From   string    `json:"from"`
	To     string    `json:"to"`
	Time   time.Time `json:"timestamp"`
}

func (r ChangeRecord) Kind() Kind          { return KindChangelog }
func (r ChangeRecord) Occurred() time.Time { return r.Time }
func (r ChangeRecord) isRecord()           {}

// MarshalJSON adds the variant discriminator expected by the panel frontend.
func (r ChangeRecord) MarshalJSON() ([]byte, error) {
	type alias ChangeRecord
	return json.Marshal(struct {
		Type Kind `json:"type"`
		alias
	}{Type: r.Kind(), alias: alias(r)})
}

// CommentRecord is one issue comment with its body flattened to plain text.
// CommentID keeps the tracker's own identifier for deep links.
type CommentRecord struct {
	ID        string     `json:"id"`
	Author    string     `json:"author"`
	Body      string     `json:"body"`
	Created   time.Time  `json:"created"`
	Updated   *time.Time `json:"updated,omitempty"`
	CommentID string     `json:"comment_id"`
}

func (r CommentRecord) Kind() Kind          { return KindComment }
func (r CommentRecord) Occurred() time.Time { return r.Created }
func (r CommentRecord) isRecord()           {}

func (r CommentRecord) MarshalJSON() ([]byte, error) {
	type alias CommentRecord
	return json.Marshal(struct {
		Type Kind `json:"type"`
		alias
	}{Type: r.Kind(), alias: alias(r)})
}

// AttachmentRecord is one attached file. ContentURL is an opaque download
// pointer into the tracker, passed through untouched.
type AttachmentRecord struct {
	ID           string    `json:"id"`
	Author       string    `json:"author"`
	Filename     string    `json:"filename"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"mime_type"`
	Created      time.Time `json:"created"`
	AttachmentID string    `json:"attachment_id"`
	ContentURL   string    `json:"content_url"`
}

func (r AttachmentRecord) Kind() Kind          { return KindAttachment }
func (r AttachmentRecord) Occurred() time.Time { return r.Created }
func (r AttachmentRecord) isRecord()           {}

func (r AttachmentRecord) MarshalJSON() ([]byte, error) {
	type alias AttachmentRecord
	return json.Marshal(struct {
		Type Kind `json:"type"`
		alias
	}{Type: r.Kind(), alias: alias(r)})
}

// Envelope is the aggregation result: one collection per source plus the
// total record count. Collections keep the tracker's native order (the
// changelog arrives newest-first); only Merged sorts across sources.
type Envelope struct {
	Changelog   []ChangeRecord     `json:"changelog"`
	Comments    []CommentRecord    `json:"comments"`
	Attachments []AttachmentRecord `json:"attachments"`
	Total       int                `json:"total"`
}

// NewEnvelope returns an empty envelope whose collections serialize as []
// rather than null. The panel frontend iterates them without null checks.
func NewEnvelope() Envelope {
	return Envelope{
		Changelog:   []ChangeRecord{},
		Comments:    []CommentRecord{},
		Attachments: []AttachmentRecord{},
	}
}

// Merged returns every record across the three collections sorted
// newest-first. Records sharing an instant keep their collection order
// (changelog, then comments, then attachments).
func (e Envelope) Merged() []Record {
	merged := make([]Record, 0, e.Total)
	for _, r := range e.Changelog {
		merged = append(merged, r)
	}
	for _, r := range e.Comments {
		merged = append(merged, r)
	}
	for _, r := range e.Attachments {
		merged = append(merged, r)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Occurred().After(merged[j].Occurred())
	})

	return merged
}

// Request is the inbound call shape of the panel API. Both fields are
// optional: a missing issue key falls back to DefaultIssueKey and a missing
// filter means no cutoff.
type Request struct {
	IssueKey string      `json:"issueKey"`
	Filter   FilterValue `json:"filter"`
}

// FilterValue is a relative-time filter token. On the wire it arrives
// either as a bare string ("7d") or wrapped in an object ({"value": "7d"}),
// a quirk of the panel frontend's select widget; both shapes decode.
type FilterValue string

// Filter tokens understood by the resolver. Anything else means "all".
const (
	FilterAll      FilterValue = "all"
	FilterDay      FilterValue = "24h"
	FilterWeek     FilterValue = "7d"
	FilterMonth    FilterValue = "30d"
	FilterHalfYear FilterValue = "6m"
	FilterYear     FilterValue = "1y"
)

func (f *FilterValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FilterValue(s)
		return nil
	}

	var wrapped struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Value != "" {
		*f = FilterValue(wrapped.Value)
		return nil
	}

	*f = FilterAll
	return nil
}

func (f FilterValue) String() string {
	if f == "" {
		return string(FilterAll)
	}
	return string(f)
}
