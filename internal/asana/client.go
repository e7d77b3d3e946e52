package asana

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the root of the Asana REST API.
const DefaultBaseURL = "https://app.asana.com/api/1.0"

// pageSize is the limit requested per page on collection endpoints.
const pageSize = 100

// projectOptFields is the field set requested when listing projects.
const projectOptFields = "name,completed,completed_at,owner.name,team.name," +
	"notes,color,created_at,due_date,start_on,archived"

// AuthError indicates that the personal access token was rejected.
// It is returned when the API responds with HTTP 401.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error: %s", e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// Client is a thin HTTP client for the Asana REST API. It handles Bearer
// token authentication, JSON unmarshaling, offset-based pagination, and
// automatic retry with exponential backoff on HTTP 429.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxRetries int
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root, used for tests and mirrors.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTimeout overrides the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a new Asana client authenticated with the given
// personal access token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Me returns the authenticated user. Used as the lightweight
// "who am I" validation call.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var env objectEnvelope[User]
	if err := c.get(ctx, "/users/me", nil, &env); err != nil {
		return nil, fmt.Errorf("fetching current user: %w", err)
	}
	return &env.Data, nil
}

// ListWorkspaces returns all workspaces visible to the authenticated user.
func (c *Client) ListWorkspaces(ctx context.Context) ([]Workspace, error) {
	ws, err := listAll[Workspace](ctx, c, "/workspaces", url.Values{})
	if err != nil {
		return nil, fmt.Errorf("listing workspaces: %w", err)
	}
	return ws, nil
}

// ListProjects returns all projects in the given workspace with the
// fixed progress field set.
func (c *Client) ListProjects(
	ctx context.Context,
	workspaceGID string,
) ([]Project, error) {
	query := url.Values{}
	query.Set("workspace", workspaceGID)
	query.Set("opt_fields", projectOptFields)

	projects, err := listAll[Project](ctx, c, "/projects", query)
	if err != nil {
		return nil, fmt.Errorf(
			"listing projects in workspace %s: %w", workspaceGID, err,
		)
	}
	return projects, nil
}

// ListTasks returns all tasks in the given project, with only the
// completion flag and name populated.
func (c *Client) ListTasks(
	ctx context.Context,
	projectGID string,
) ([]Task, error) {
	query := url.Values{}
	query.Set("opt_fields", "completed,completed_at,name")

	path := fmt.Sprintf("/projects/%s/tasks", projectGID)
	tasks, err := listAll[Task](ctx, c, path, query)
	if err != nil {
		return nil, fmt.Errorf(
			"listing tasks in project %s: %w", projectGID, err,
		)
	}
	return tasks, nil
}

// ListProjectStatuses returns all status updates posted on the given
// project, oldest first as returned by the API.
func (c *Client) ListProjectStatuses(
	ctx context.Context,
	projectGID string,
) ([]ProjectStatus, error) {
	query := url.Values{}
	query.Set("opt_fields", "text,color,created_at")

	path := fmt.Sprintf("/projects/%s/project_statuses", projectGID)
	statuses, err := listAll[ProjectStatus](ctx, c, path, query)
	if err != nil {
		return nil, fmt.Errorf(
			"listing statuses for project %s: %w", projectGID, err,
		)
	}
	return statuses, nil
}

// listAll fetches every page of a collection endpoint, following
// Asana's next_page offset cursor until exhausted.
func listAll[T any](
	ctx context.Context,
	c *Client,
	path string,
	query url.Values,
) ([]T, error) {
	query.Set("limit", strconv.Itoa(pageSize))

	var all []T
	offset := ""
	for {
		if offset != "" {
			query.Set("offset", offset)
		}

		var env listEnvelope[T]
		if err := c.get(ctx, path, query, &env); err != nil {
			return nil, err
		}

		all = append(all, env.Data...)
		if env.NextPage == nil || env.NextPage.Offset == "" {
			return all, nil
		}
		offset = env.NextPage.Offset
	}
}

// get performs an HTTP GET against the API and unmarshals the JSON
// response, retrying on 429 with Retry-After/exponential backoff.
func (c *Client) get(
	ctx context.Context,
	path string,
	query url.Values,
	result interface{},
) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(
			ctx, http.MethodGet, reqURL, nil,
		)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("executing request GET %s: %w", path, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("reading response body: %w", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			waitDuration := retryAfterDuration(resp, attempt)
			lastErr = fmt.Errorf("rate limited (429) on GET %s", path)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(waitDuration):
				continue
			}
		}

		if resp.StatusCode == http.StatusUnauthorized {
			return &AuthError{
				Message: "invalid personal access token (401): " +
					apiErrorMessage(respBody),
			}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if msg := apiErrorMessage(respBody); msg != "" {
				return fmt.Errorf(
					"asana API error (%d) on GET %s: %s",
					resp.StatusCode, path, msg,
				)
			}
			return fmt.Errorf(
				"unexpected status %d on GET %s: %s",
				resp.StatusCode, path, string(respBody),
			)
		}

		if result == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}

		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf(
				"unmarshaling response from GET %s: %w", path, err,
			)
		}

		return nil
	}

	return fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}

// apiErrorMessage extracts the message strings from an Asana error payload.
func apiErrorMessage(body []byte) string {
	var apiErr errorResponse
	if json.Unmarshal(body, &apiErr) != nil || len(apiErr.Errors) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(apiErr.Errors))
	for _, e := range apiErr.Errors {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration. Falls back to exponential backoff if the header is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	// Exponential backoff: 1s, 2s, 4s, ...
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}
