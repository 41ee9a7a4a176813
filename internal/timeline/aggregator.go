package timeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/issuetrail/issuetrail/internal/jira"
)

// Safe placeholders for fields the tracker omits. A deleted account leaves
// no author; a field set for the first time has no prior value.
const (
	unknownAuthor = "Unknown"
	absentValue   = "-"
)

// Fetcher is the slice of the tracker client the aggregator depends on.
// *jira.Client satisfies it; tests substitute stubs.
type Fetcher interface {
	FetchChangelog(ctx context.Context, issueKey string) ([]jira.History, error)
	FetchComments(ctx context.Context, issueKey string) ([]jira.Comment, error)
	FetchAttachments(ctx context.Context, issueKey string) ([]jira.Attachment, error)
}

// AggregatorOption configures the Aggregator.
type AggregatorOption func(*Aggregator)

// WithLogger sets the logger for degradation warnings.
func WithLogger(logger *slog.Logger) AggregatorOption {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// WithClock replaces the wall clock (useful for testing cutoffs).
func WithClock(clock func() time.Time) AggregatorOption {
	return func(a *Aggregator) {
		a.clock = clock
	}
}

// Aggregator builds activity envelopes from the three tracker sources.
// Stateless across calls; safe for concurrent use.
type Aggregator struct {
	fetcher Fetcher
	logger  *slog.Logger
	clock   func() time.Time
}

// NewAggregator creates an aggregator backed by the given fetcher.
func NewAggregator(fetcher Fetcher, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		fetcher: fetcher,
		logger:  slog.Default(),
		clock:   time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Aggregate fetches the issue's field changes, comments and attachments,
// filters each against the resolved cutoff and returns the envelope.
//
// It never returns an error. A comment or attachment fetch failure degrades
// that collection to empty and leaves its siblings alone. A history fetch
// that comes back with an error status degrades the changelog the same way.
// Only a history fetch that fails outright (transport or decode, before any
// per-source handling applies) empties the whole envelope, because the
// panel cannot render a hard error state distinct from "no activity".
func (a *Aggregator) Aggregate(ctx context.Context, req Request) Envelope {
	issueKey := req.IssueKey
	if issueKey == "" {
		issueKey = DefaultIssueKey
		a.logger.Warn("request carried no issue key, using legacy default",
			"issue_key", issueKey)
	}

	// One instant per call; every cutoff comparison sees the same now.
	now := a.clock()
	cutoff, hasCutoff := resolveCutoff(req.Filter, now)

	keep := func(t time.Time) bool {
		return !hasCutoff || !t.Before(cutoff)
	}

	env := NewEnvelope()

	histories, err := a.fetcher.FetchChangelog(ctx, issueKey)
	if err != nil {
		var statusErr *jira.StatusError
		if !errors.As(err, &statusErr) {
			a.logger.Warn("history fetch failed, returning empty timeline",
				"issue_key", issueKey, "error", err)
			return env
		}
		a.logger.Warn("history fetch rejected, continuing without changelog",
			"issue_key", issueKey, "status", statusErr.Code)
		histories = nil
	}
	for _, h := range histories {
		if !keep(h.Created) {
			continue
		}
		for _, item := range h.Items {
			env.Changelog = append(env.Changelog, ChangeRecord{
				ID:     h.ID + "-" + item.Field,
				Author: orPlaceholder(h.Author, unknownAuthor),
				Field:  item.Field,
				From:   orPlaceholder(item.From, absentValue),
				To:     orPlaceholder(item.To, absentValue),
				Time:   h.Created,
			})
		}
	}

	comments, err := a.fetcher.FetchComments(ctx, issueKey)
	if err != nil {
		a.logger.Warn("comment fetch failed, continuing without comments",
			"issue_key", issueKey, "error", err)
		comments = nil
	}
	for _, c := range comments {
		if !keep(c.Created) {
			continue
		}
		env.Comments = append(env.Comments, CommentRecord{
			ID:        "comment-" + c.ID,
			Author:    orPlaceholder(c.Author, unknownAuthor),
			Body:      c.Body,
			Created:   c.Created,
			Updated:   c.Updated,
			CommentID: c.ID,
		})
	}

	attachments, err := a.fetcher.FetchAttachments(ctx, issueKey)
	if err != nil {
		a.logger.Warn("attachment fetch failed, continuing without attachments",
			"issue_key", issueKey, "error", err)
		attachments = nil
	}
	for _, att := range attachments {
		if !keep(att.Created) {
			continue
		}
		env.Attachments = append(env.Attachments, AttachmentRecord{
			ID:           "attachment-" + att.ID,
			Author:       orPlaceholder(att.Author, unknownAuthor),
			Filename:     orPlaceholder(att.Filename, absentValue),
			Size:         att.Size,
			MimeType:     att.MimeType,
			Created:      att.Created,
			AttachmentID: att.ID,
			ContentURL:   att.ContentURL,
		})
	}

	env.Total = len(env.Changelog) + len(env.Comments) + len(env.Attachments)

	return env
}

func orPlaceholder(s, placeholder string) string {
	if s == "" {
		return placeholder
	}
	return s
}
