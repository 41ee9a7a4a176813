package jira

import (
	"encoding/json"
	"strings"
)

// noTextPlaceholder stands in for comment bodies that yield no extractable
// text (empty documents, media-only comments, malformed trees).
const noTextPlaceholder = "[no text content]"

// DocNode is the subset of the tracker's rich-text document format that the
// extractor understands: a node type, an optional text leaf, and children.
// Unknown node types still have their children walked, so new formatting
// constructs degrade to their inner text instead of disappearing.
type DocNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text"`
	Content []DocNode `json:"content"`
}

// blockNodes are the node types that end a run of inline text. A boundary
// between two of them becomes a single space in the flattened output.
var blockNodes = map[string]bool{
	"paragraph":   true,
	"heading":     true,
	"blockquote":  true,
	"codeBlock":   true,
	"listItem":    true,
	"tableCell":   true,
	"tableHeader": true,
}

// ExtractText flattens a document tree into a single line of plain text.
// Text leaves are concatenated in document order; block boundaries and hard
// breaks become spaces; runs of whitespace collapse. Marks, mentions and
// media carry no text and vanish. An empty tree flattens to "".
func ExtractText(root DocNode) string {
	var b strings.Builder
	extractInto(&b, root)
	return strings.Join(strings.Fields(b.String()), " ")
}

func extractInto(b *strings.Builder, node DocNode) {
	switch node.Type {
	case "text":
		b.WriteString(node.Text)
		return
	case "hardBreak":
		b.WriteByte(' ')
		return
	}
	for _, child := range node.Content {
		extractInto(b, child)
	}
	if blockNodes[node.Type] {
		b.WriteByte(' ')
	}
}

// commentBody decodes the two body encodings the tracker serves: a rich
// document object (API v3) or a bare string (older deployments). Decoding
// never fails; anything unrecognizable flattens to the placeholder so that
// one broken body cannot sink the whole comment collection.
type commentBody struct {
	doc   DocNode
	text  string
	isDoc bool
}

func (b *commentBody) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		b.text = s
		return nil
	}
	var doc DocNode
	if err := json.Unmarshal(data, &doc); err == nil {
		b.doc = doc
		b.isDoc = true
	}
	return nil
}

// plainText returns the flattened body text, or the placeholder when
// extraction comes up empty.
func (b commentBody) plainText() string {
	text := strings.TrimSpace(b.text)
	if b.isDoc {
		text = ExtractText(b.doc)
	}
	if text == "" {
		return noTextPlaceholder
	}
	return text
}
