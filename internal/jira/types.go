// Package jira provides a read-only client for the Jira Cloud REST API.
//
// This package enables issuetrail to:
// - Fetch an issue's field-change history via changelog expansion
// - Fetch an issue's comments through the comment sub-resource
// - Fetch an issue's attachments through field selection
//
// All calls are GETs authenticated with an email + API token pair.
package jira

import "time"

// History is one changelog entry: a bundle of field changes made at the
// same instant by the same actor.
type History struct {
	ID      string        `json:"id"`
	Author  string        `json:"author"`
	Created time.Time     `json:"created"`
	Items   []HistoryItem `json:"items"`
}

// HistoryItem is a single field change within a history entry.
type HistoryItem struct {
	Field string `json:"field"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// Comment is a single issue comment with its body already flattened to
// plain text (see ExtractText for the flattening rules).
type Comment struct {
	ID      string     `json:"id"`
	Author  string     `json:"author"`
	Body    string     `json:"body"`
	Created time.Time  `json:"created"`
	Updated *time.Time `json:"updated,omitempty"`
}

// Attachment is a single file attached to an issue. ContentURL is an
// opaque download pointer into the tracker; issuetrail never dereferences it.
type Attachment struct {
	ID         string    `json:"id"`
	Author     string    `json:"author"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	MimeType   string    `json:"mime_type"`
	Created    time.Time `json:"created"`
	ContentURL string    `json:"content_url"`
}
