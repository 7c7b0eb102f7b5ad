// Package api is the HTTP client for the debate backend. It speaks JSON
// over REST, authenticates with a bearer token, and maps HTTP failures
// onto the error taxonomy in internal/errors.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rostra-dev/rostra/internal/debate"
	"github.com/rostra-dev/rostra/internal/errors"
	"github.com/rostra-dev/rostra/internal/logging"
)

// Client calls the debate backend. It is safe for concurrent use and
// implements debate.Backend.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *logging.Logger
}

// NewClient creates a backend client. baseURL is the API root without a
// trailing slash; token may be empty for anonymous access to shared
// debates.
func NewClient(baseURL, token string, timeout time.Duration, log *logging.Logger) *Client {
	if log == nil {
		log = logging.NopLogger()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
		log:     log.WithComponent("api"),
	}
}

// GetDebate fetches the debate addressed by ref.
func (c *Client) GetDebate(ctx context.Context, ref string) (*debate.Session, error) {
	var session debate.Session
	path := ParseRef(ref).Path()
	if err := c.do(ctx, http.MethodGet, path, nil, &session); err != nil {
		return nil, remapNotFound(err, "debate", ref)
	}
	return &session, nil
}

// CreateDebate starts a new debate and returns the created session.
func (c *Client) CreateDebate(ctx context.Context, req CreateDebateRequest) (*debate.Session, error) {
	if req.PartyID == "" {
		return nil, errors.NewValidationError("party is required").WithField("partyId")
	}
	if strings.TrimSpace(req.Topic) == "" {
		return nil, errors.NewValidationError("topic is required").WithField("topic")
	}
	var session debate.Session
	if err := c.do(ctx, http.MethodPost, "/debates", req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SendMessage posts a user message to the debate and returns the
// server-confirmed record.
func (c *Client) SendMessage(ctx context.Context, ref, content string) (debate.Message, error) {
	var confirmed debate.Message
	path := ParseRef(ref).Path() + "/messages"
	err := c.do(ctx, http.MethodPost, path, sendMessageRequest{Content: content}, &confirmed)
	if err != nil {
		return debate.Message{}, remapNotFound(err, "debate", ref)
	}
	return confirmed, nil
}

// EndDebate finalizes the debate and returns the adjudication summary.
func (c *Client) EndDebate(ctx context.Context, ref string) (*debate.Summary, error) {
	var summary debate.Summary
	path := ParseRef(ref).Path() + "/end"
	if err := c.do(ctx, http.MethodPost, path, nil, &summary); err != nil {
		return nil, remapNotFound(err, "debate", ref)
	}
	return &summary, nil
}

// Vote casts a vote on a completed debate. side is "party" or "citizen".
func (c *Client) Vote(ctx context.Context, ref, side string) (*VoteResult, error) {
	if side != "party" && side != "citizen" {
		return nil, errors.NewValidationError("side must be party or citizen").
			WithField("side").WithValue(side)
	}
	var result VoteResult
	path := ParseRef(ref).Path() + "/vote"
	if err := c.do(ctx, http.MethodPost, path, voteRequest{Side: side}, &result); err != nil {
		return nil, remapNotFound(err, "debate", ref)
	}
	return &result, nil
}

// Trending lists completed debates ranked by vote activity over period.
func (c *Client) Trending(ctx context.Context, period string) ([]TrendingDebate, error) {
	var out []TrendingDebate
	path := "/debates/trending?period=" + url.QueryEscape(period)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CompletedDebates lists recently completed public debates.
func (c *Client) CompletedDebates(ctx context.Context) ([]DebateListItem, error) {
	var out []DebateListItem
	if err := c.do(ctx, http.MethodGet, "/debates/completed", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MyDebates lists the authenticated user's debates, newest first.
func (c *Client) MyDebates(ctx context.Context) ([]DebateListItem, error) {
	var out []DebateListItem
	if err := c.do(ctx, http.MethodGet, "/debates", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Parties lists the available party chatbots.
func (c *Client) Parties(ctx context.Context) ([]Party, error) {
	var out []Party
	if err := c.do(ctx, http.MethodGet, "/parties", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CurrentUser fetches the authenticated account.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		var apiErr *errors.APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == 401 || apiErr.StatusCode == 403) {
			return nil, errors.Wrap(errors.ErrUnauthenticated, "fetch current user")
		}
		return nil, err
	}
	return &user, nil
}

// do performs one JSON request. body is marshalled when non-nil; out is
// decoded from a 2xx response when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	endpoint := method + " " + path
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return errors.NewTimeoutError(endpoint, c.http.Timeout).WithCause(err)
		}
		c.log.Debug("request failed", "endpoint", endpoint, "error", err)
		return errors.NewAPIError("request failed", err).WithEndpoint(endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(endpoint, resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.NewAPIError("decode response", err).WithEndpoint(endpoint)
		}
	}
	return nil
}

// statusError maps a non-2xx response to the error taxonomy. The server's
// error envelope supplies the message when present.
func (c *Client) statusError(endpoint string, resp *http.Response) error {
	message := http.StatusText(resp.StatusCode)
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && len(raw) > 0 {
		var body errorBody
		if json.Unmarshal(raw, &body) == nil {
			if body.Message != "" {
				message = body.Message
			} else if body.Error != "" {
				message = body.Error
			}
		}
	}

	c.log.Debug("request rejected",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"message", message)
	return errors.NewAPIError(message, nil).
		WithEndpoint(endpoint).
		WithStatusCode(resp.StatusCode)
}

// remapNotFound turns a 404 APIError into a NotFoundError so callers can
// match errors.ErrDebateNotFound.
func remapNotFound(err error, resourceType, id string) error {
	var apiErr *errors.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return errors.NewNotFoundError(resourceType, id).WithCause(err)
	}
	return err
}

// Ensure Client satisfies the session machine's backend contract.
var _ debate.Backend = (*Client)(nil)

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.baseURL }

// String identifies the client in logs without leaking the token.
func (c *Client) String() string {
	return fmt.Sprintf("api.Client(%s, authenticated=%t)", c.baseURL, c.token != "")
}
