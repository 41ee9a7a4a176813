// Package export writes activity timelines to CSV and XLSX files for
// sharing outside the dashboard.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/issuetrail/issuetrail/internal/timeline"
)

// timelineHeader is the column layout shared by both exporters.
var timelineHeader = []string{
	"#",
	"Type",
	"Author",
	"Summary",
	"Detail",
	"Timestamp",
}

// recordRow renders one activity record into the shared column layout.
// Unlike the terminal view, exports carry full comment bodies and exact
// byte sizes.
func recordRow(n int, record timeline.Record) []string {
	var summary, detail string

	switch r := record.(type) {
	case timeline.ChangeRecord:
		summary = r.Field
		detail = fmt.Sprintf("%s → %s", r.From, r.To)
	case timeline.CommentRecord:
		summary = r.Body
		if r.Updated != nil {
			detail = "edited " + r.Updated.UTC().Format(time.RFC3339)
		}
	case timeline.AttachmentRecord:
		summary = r.Filename
		detail = fmt.Sprintf("%s, %d bytes", r.MimeType, r.Size)
	}

	return []string{
		fmt.Sprintf("%d", n),
		string(record.Kind()),
		recordAuthor(record),
		summary,
		detail,
		record.Occurred().UTC().Format(time.RFC3339),
	}
}

func recordAuthor(record timeline.Record) string {
	switch r := record.(type) {
	case timeline.ChangeRecord:
		return r.Author
	case timeline.CommentRecord:
		return r.Author
	case timeline.AttachmentRecord:
		return r.Author
	}
	return ""
}

// exportFilename builds `activity_<KEY>_<timestamp>.<ext>`. Path
// separators in the key are flattened so the file stays inside the
// output directory.
func exportFilename(issueKey, ext string) string {
	key := strings.ReplaceAll(issueKey, "/", "-")
	key = strings.ReplaceAll(key, "\\", "-")

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return fmt.Sprintf("activity_%s_%s.%s", key, timestamp, ext)
}
