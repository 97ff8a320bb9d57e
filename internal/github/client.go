package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.github.com"
	acceptHeader   = "application/vnd.github.v3+json"

	// MaxPerPage is the GitHub REST API page-size ceiling. Calculators that
	// fetch a single page of this size undercount users with more than 100
	// repositories, commits per repository, or recent events.
	MaxPerPage = 100
)

var ErrNoProviderToken = errors.New("no github token available")

// UpstreamError is any non-2xx answer from the GitHub API.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("github api error: %d %s", e.StatusCode, e.Message)
}

type Client interface {
	AuthenticatedUser(ctx context.Context, token string) (*User, error)
	Repositories(ctx context.Context, token string, page, perPage int, sort, affiliation string) (*RepositoryPage, error)
	Commits(ctx context.Context, token, fullName, author string, since, until time.Time, perPage int) ([]Commit, error)
	SearchIssues(ctx context.Context, token, query string) (int, error)
	PublicEvents(ctx context.Context, token, username string, perPage int) ([]Event, error)
}

type client struct {
	baseURL    string
	httpClient *http.Client
}

type ClientOption func(*client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *client) {
		c.httpClient = httpClient
	}
}

func NewClient(opts ...ClientOption) Client {
	c := &client{
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get issues an authenticated request and decodes the body into out.
// The response is returned so callers can read pagination headers.
func (c *client) get(ctx context.Context, token, path string, query url.Values, out any) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", acceptHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newUpstreamError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("failed to decode github response: %w", err)
		}
	}
	return resp, nil
}

func newUpstreamError(resp *http.Response) *UpstreamError {
	message := http.StatusText(resp.StatusCode)
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Message != "" {
		message = body.Message
	}
	return &UpstreamError{StatusCode: resp.StatusCode, Message: message}
}

func (c *client) AuthenticatedUser(ctx context.Context, token string) (*User, error) {
	var u User
	if _, err := c.get(ctx, token, "/user", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *client) Repositories(ctx context.Context, token string, page, perPage int, sort, affiliation string) (*RepositoryPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > MaxPerPage {
		perPage = 30
	}
	if sort == "" {
		sort = "updated"
	}
	if affiliation == "" {
		affiliation = "owner,collaborator"
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))
	query.Set("sort", sort)
	query.Set("affiliation", affiliation)

	var repos []Repository
	resp, err := c.get(ctx, token, "/user/repos", query, &repos)
	if err != nil {
		return nil, err
	}

	totalPages := extractTotalPages(resp.Header.Get("Link"))
	return &RepositoryPage{
		Repos: repos,
		Pagination: Pagination{
			Page:       page,
			PerPage:    perPage,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}, nil
}

var lastPageRe = regexp.MustCompile(`[?&]page=(\d+)`)

// extractTotalPages reads the page number out of the Link header's
// rel="last" relation. No rel="last" means the current page is the only one.
func extractTotalPages(linkHeader string) int {
	if linkHeader == "" {
		return 1
	}
	for _, link := range strings.Split(linkHeader, ",") {
		if !strings.Contains(link, `rel="last"`) {
			continue
		}
		if m := lastPageRe.FindStringSubmatch(link); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n
			}
		}
	}
	return 1
}

// Commits returns the first page of commits only; repositories with more
// than perPage matching commits in the window are undercounted.
func (c *client) Commits(ctx context.Context, token, fullName, author string, since, until time.Time, perPage int) ([]Commit, error) {
	if perPage < 1 || perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	query := url.Values{}
	query.Set("per_page", strconv.Itoa(perPage))
	if author != "" {
		query.Set("author", author)
	}
	if !since.IsZero() {
		query.Set("since", since.UTC().Format(time.RFC3339))
	}
	if !until.IsZero() {
		query.Set("until", until.UTC().Format(time.RFC3339))
	}

	var commits []Commit
	if _, err := c.get(ctx, token, "/repos/"+fullName+"/commits", query, &commits); err != nil {
		return nil, err
	}
	return commits, nil
}

func (c *client) SearchIssues(ctx context.Context, token, query string) (int, error) {
	var result struct {
		TotalCount int `json:"total_count"`
	}
	// The q parameter is prebuilt with + separators, which must not be
	// percent-encoded.
	path := "/search/issues?q=" + query
	if _, err := c.get(ctx, token, path, nil, &result); err != nil {
		return 0, err
	}
	return result.TotalCount, nil
}

func (c *client) PublicEvents(ctx context.Context, token, username string, perPage int) ([]Event, error) {
	if perPage < 1 || perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	query := url.Values{}
	query.Set("per_page", strconv.Itoa(perPage))

	var events []Event
	if _, err := c.get(ctx, token, "/users/"+username+"/events/public", query, &events); err != nil {
		return nil, err
	}
	return events, nil
}
