// Package display provides terminal output formatting for issuetrail.
package display

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/issuetrail/issuetrail/internal/timeline"
)

const separator = " • "

// maxBodyLength caps how much of a comment body appears in the timeline.
const maxBodyLength = 120

// TerminalFormatter formats activity records for terminal display.
type TerminalFormatter struct {
	titler cases.Caser
}

// NewTerminalFormatter creates a new terminal formatter.
func NewTerminalFormatter() *TerminalFormatter {
	return &TerminalFormatter{
		titler: cases.Title(language.English),
	}
}

// FormatRecord formats a single activity record for display.
func (f *TerminalFormatter) FormatRecord(record timeline.Record) string {
	var lines []string

	// Header: [KIND] summary
	lines = append(lines, fmt.Sprintf("[%s] %s", kindLabel(record.Kind()), f.summarize(record)))

	// Author and timestamp
	meta := fmt.Sprintf("  by %s%s%s", recordAuthor(record), separator, f.FormatTimestamp(record.Occurred()))
	if c, ok := record.(timeline.CommentRecord); ok && c.Updated != nil {
		meta += " (edited)"
	}
	lines = append(lines, meta)

	return strings.Join(lines, "\n") + "\n"
}

// summarize builds the one-line summary for each record variant.
func (f *TerminalFormatter) summarize(record timeline.Record) string {
	switch r := record.(type) {
	case timeline.ChangeRecord:
		return fmt.Sprintf("%s: %s → %s", f.titler.String(r.Field), r.From, r.To)
	case timeline.CommentRecord:
		return f.TruncateText(r.Body, maxBodyLength)
	case timeline.AttachmentRecord:
		return fmt.Sprintf("%s (%s, %s)", r.Filename, humanSize(r.Size), r.MimeType)
	default:
		return ""
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
	default:
		return "Unknown"
	}
}

func kindLabel(kind timeline.Kind) string {
	switch kind {
	case timeline.KindChangelog:
		return "CHANGE"
	case timeline.KindComment:
		return "COMMENT"
	case timeline.KindAttachment:
		return "FILE"
	default:
		return strings.ToUpper(string(kind))
	}
}

// FormatTimeline formats a whole envelope, newest activity first.
func (f *TerminalFormatter) FormatTimeline(env timeline.Envelope) string {
	merged := env.Merged()
	if len(merged) == 0 {
		return "No activity to display.\n"
	}

	var formatted []string
	for _, record := range merged {
		formatted = append(formatted, f.FormatRecord(record))
	}

	return strings.Join(formatted, "\n")
}

// FormatTimestamp formats a timestamp as relative time.
func (f *TerminalFormatter) FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "unknown time"
	}

	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return pluralize(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return pluralize(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return pluralize(int(diff.Hours()/24), "day")
	default:
		return t.Format("Jan 2, 2006")
	}
}

// pluralize returns "N unit ago" or "N units ago" based on count.
func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// TruncateText truncates text to maxLen, adding "..." if truncated.
func (f *TerminalFormatter) TruncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return "..."
	}
	return text[:maxLen-3] + "..."
}

// humanSize renders a byte count in the nearest sensible unit.
func humanSize(size int64) string {
	const unit = 1024

	switch {
	case size < unit:
		return fmt.Sprintf("%d B", size)
	case size < unit*unit:
		return fmt.Sprintf("%.1f KB", float64(size)/unit)
	case size < unit*unit*unit:
		return fmt.Sprintf("%.1f MB", float64(size)/(unit*unit))
	default:
		return fmt.Sprintf("%.1f GB", float64(size)/(unit*unit*unit))
	}
}
