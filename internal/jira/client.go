package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultTimeout = 30 * time.Second

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL sets a custom base URL (useful for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithRateLimit replaces the default request throttle. The tracker budgets
// requests per account; the client waits rather than burning the budget.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// Client is a Jira Cloud REST API client scoped to a single site.
type Client struct {
	baseURL    string
	email      string
	apiToken   string
	httpClient HTTPClient
	limiter    *rate.Limiter
}

// NewClient creates a client for the given site. Credentials may be empty
// when the transport injects its own identity (reverse proxies, tests).
func NewClient(baseURL, email, apiToken string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		email:      email,
		apiToken:   apiToken,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(10), 5),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchChangelog retrieves the issue's field-change history, preserving the
// tracker's native newest-first order. A history entry bundles every field
// changed in one edit under a shared author and timestamp.
func (c *Client) FetchChangelog(ctx context.Context, issueKey string) ([]History, error) {
	u := fmt.Sprintf("%s/rest/api/3/issue/%s?expand=changelog&fields=summary",
		c.baseURL, url.PathEscape(issueKey))

	body, err := c.doRequest(ctx, u)
	if err != nil {
		return nil, err
	}

	var response changelogResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse changelog response: %w", err)
	}

	histories := make([]History, 0, len(response.Changelog.Histories))
	for _, h := range response.Changelog.Histories {
		items := make([]HistoryItem, 0, len(h.Items))
		for _, item := range h.Items {
			items = append(items, HistoryItem{
				Field: item.Field,
				From:  item.FromString,
				To:    item.ToString,
			})
		}

		histories = append(histories, History{
			ID:      h.ID,
			Author:  h.Author.DisplayName,
			Created: parseTime(h.Created),
			Items:   items,
		})
	}

	return histories, nil
}

// FetchComments retrieves the issue's comments with their bodies flattened
// to plain text.
func (c *Client) FetchComments(ctx context.Context, issueKey string) ([]Comment, error) {
	u := fmt.Sprintf("%s/rest/api/3/issue/%s/comment", c.baseURL, url.PathEscape(issueKey))

	body, err := c.doRequest(ctx, u)
	if err != nil {
		return nil, err
	}

	var response commentsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse comments response: %w", err)
	}

	comments := make([]Comment, 0, len(response.Comments))
	for _, raw := range response.Comments {
		var updated *time.Time
		if raw.Updated != "" {
			if t := parseTime(raw.Updated); !t.IsZero() {
				updated = &t
			}
		}

		comments = append(comments, Comment{
			ID:      raw.ID,
			Author:  raw.Author.DisplayName,
			Body:    raw.Body.plainText(),
			Created: parseTime(raw.Created),
			Updated: updated,
		})
	}

	return comments, nil
}

// FetchAttachments retrieves the issue's attachments via a field-selecting
// query against the issue detail endpoint.
func (c *Client) FetchAttachments(ctx context.Context, issueKey string) ([]Attachment, error) {
	u := fmt.Sprintf("%s/rest/api/3/issue/%s?fields=attachment", c.baseURL, url.PathEscape(issueKey))

	body, err := c.doRequest(ctx, u)
	if err != nil {
		return nil, err
	}

	var response attachmentsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse attachments response: %w", err)
	}

	attachments := make([]Attachment, 0, len(response.Fields.Attachment))
	for _, raw := range response.Fields.Attachment {
		attachments = append(attachments, Attachment{
			ID:         raw.ID,
			Author:     raw.Author.DisplayName,
			Filename:   raw.Filename,
			Size:       raw.Size,
			MimeType:   raw.MimeType,
			Created:    parseTime(raw.Created),
			ContentURL: raw.Content,
		})
	}

	return attachments, nil
}

func (c *Client) doRequest(ctx context.Context, url string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.email != "" || c.apiToken != "" {
		req.SetBasicAuth(c.email, c.apiToken)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	return body, nil
}

// StatusError reports a non-success response from the tracker. Callers that
// must tell a rejected request apart from a transport failure check for it
// with errors.As.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	switch e.Code {
	case http.StatusUnauthorized:
		return "tracker authentication failed - check the configured email and API token"
	case http.StatusForbidden:
		return "tracker access denied - the configured account cannot view this issue"
	case http.StatusNotFound:
		return "issue not found - check the issue key"
	case http.StatusTooManyRequests:
		return "tracker rate limit exceeded - please try again later"
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return "tracker server error - please try again later"
	default:
		return fmt.Sprintf("tracker error (status %d)", e.Code)
	}
}

// jiraTimeLayout is the tracker's timestamp format.
const jiraTimeLayout = "2006-01-02T15:04:05.000-0700"

// parseTime accepts the tracker's native layout with an RFC 3339 fallback
// for deployments that serve it. Unparseable input yields the zero time.
func parseTime(s string) time.Time {
	formats := []string{
		jiraTimeLayout,
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// API response types (private - implementation detail)

type userRef struct {
	DisplayName string `json:"displayName"`
}

type changelogResponse struct {
	Changelog struct {
		Histories []struct {
			ID      string  `json:"id"`
			Author  userRef `json:"author"`
			Created string  `json:"created"`
			Items   []struct {
				Field      string `json:"field"`
				FromString string `json:"fromString"`
				ToString   string `json:"toString"`
			} `json:"items"`
		} `json:"histories"`
	} `json:"changelog"`
}

type commentsResponse struct {
	Comments []struct {
		ID      string      `json:"id"`
		Author  userRef     `json:"author"`
		Body    commentBody `json:"body"`
		Created string      `json:"created"`
		Updated string      `json:"updated"`
	} `json:"comments"`
}

type attachmentsResponse struct {
	Fields struct {
		Attachment []struct {
			ID       string  `json:"id"`
			Filename string  `json:"filename"`
			Author   userRef `json:"author"`
			Created  string  `json:"created"`
			Size     int64   `json:"size"`
			MimeType string  `json:"mimeType"`
			Content  string  `json:"content"`
		} `json:"attachment"`
	} `json:"fields"`
}
