package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octotrack/octotrack-api/internal/github"
)

// fakeClient serves canned data and records per-repo commit failures.
type fakeClient struct {
	user        *github.User
	userErr     error
	repos       []github.Repository
	reposErr    error
	commits     map[string][]github.Commit
	commitsErr  map[string]error
	searchCount map[string]int
	searchErr   error
	events      []github.Event
	eventsErr   error
}

func (f *fakeClient) AuthenticatedUser(ctx context.Context, token string) (*github.User, error) {
	if f.userErr != nil {
		return nil, f.userErr
	}
	if f.user == nil {
		return &github.User{Login: "octocat"}, nil
	}
	return f.user, nil
}

func (f *fakeClient) Repositories(ctx context.Context, token string, page, perPage int, sort, affiliation string) (*github.RepositoryPage, error) {
	if f.reposErr != nil {
		return nil, f.reposErr
	}
	return &github.RepositoryPage{Repos: f.repos, Pagination: github.Pagination{Page: page, PerPage: perPage, TotalPages: 1}}, nil
}

func (f *fakeClient) Commits(ctx context.Context, token, fullName, author string, since, until time.Time, perPage int) ([]github.Commit, error) {
	if err := f.commitsErr[fullName]; err != nil {
		return nil, err
	}
	return f.commits[fullName], nil
}

func (f *fakeClient) SearchIssues(ctx context.Context, token, query string) (int, error) {
	if f.searchErr != nil {
		return 0, f.searchErr
	}
	return f.searchCount[query], nil
}

func (f *fakeClient) PublicEvents(ctx context.Context, token, username string, perPage int) ([]github.Event, error) {
	if f.eventsErr != nil {
		return nil, f.eventsErr
	}
	return f.events, nil
}

func newTestEngine(client github.Client, now time.Time) *Engine {
	e := NewEngine(client)
	e.now = func() time.Time { return now }
	return e
}

var (
	testNow   = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	testSince = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
)

func makeCommits(n int) []github.Commit {
	commits := make([]github.Commit, n)
	for i := range commits {
		commits[i] = github.Commit{SHA: "sha"}
	}
	return commits
}

func TestMetricIsValid(t *testing.T) {
	for _, m := range AllMetrics {
		assert.True(t, m.IsValid(), m)
	}
	assert.False(t, Metric("stars").IsValid())
	assert.False(t, Metric("").IsValid())
}

func TestProgressUnknownMetric(t *testing.T) {
	e := newTestEngine(&fakeClient{}, testNow)
	_, err := e.Progress(context.Background(), "tok", "octocat", Metric("stars"), testSince, testNow)
	require.Error(t, err)
}

func TestProgressResolvesUsername(t *testing.T) {
	client := &fakeClient{
		user:        &github.User{Login: "resolved"},
		searchCount: map[string]int{"author:resolved+type:pr+created:2025-06-01T00:00:00Z..2025-07-01T12:00:00Z": 4},
	}
	e := newTestEngine(client, testNow)

	result, err := e.Progress(context.Background(), "tok", "", MetricPullRequests, testSince, testNow)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Count)
}

func TestProgressEmptyResolvedUsername(t *testing.T) {
	e := newTestEngine(&fakeClient{user: &github.User{}}, testNow)
	_, err := e.Progress(context.Background(), "tok", "", MetricPullRequests, testSince, testNow)
	assert.ErrorIs(t, err, ErrUsernameUnavailable)
}

func TestProgressClampsUntilToNow(t *testing.T) {
	future := testNow.AddDate(0, 0, 30)
	client := &fakeClient{
		searchCount: map[string]int{"author:octocat+type:issue+created:2025-06-01T00:00:00Z..2025-07-01T12:00:00Z": 2},
	}
	e := newTestEngine(client, testNow)

	result, err := e.Progress(context.Background(), "tok", "octocat", MetricIssues, testSince, future)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
}

func TestCommitsSumsAcrossRepos(t *testing.T) {
	client := &fakeClient{
		repos: []github.Repository{{FullName: "octocat/a"}, {FullName: "octocat/b"}},
		commits: map[string][]github.Commit{
			"octocat/a": makeCommits(3),
			"octocat/b": makeCommits(5),
		},
	}
	e := newTestEngine(client, testNow)

	result, err := e.Progress(context.Background(), "tok", "octocat", MetricCommits, testSince, testNow)
	require.NoError(t, err)
	assert.Equal(t, 8, result.Count)
	assert.Zero(t, result.SkippedRepos)
}

func TestCommitsSkipsUnreadableRepos(t *testing.T) {
	client := &fakeClient{
		repos: []github.Repository{{FullName: "octocat/a"}, {FullName: "octocat/blocked"}},
		commits: map[string][]github.Commit{
			"octocat/a": makeCommits(3),
		},
		commitsErr: map[string]error{
			"octocat/blocked": &github.UpstreamError{StatusCode: 403, Message: "Repository access blocked"},
		},
	}
	e := newTestEngine(client, testNow)

	result, err := e.Progress(context.Background(), "tok", "octocat", MetricCommits, testSince, testNow)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Count)
	assert.Equal(t, 1, result.SkippedRepos)
}

func TestCommitsNoRepos(t *testing.T) {
	e := newTestEngine(&fakeClient{}, testNow)
	result, err := e.Progress(context.Background(), "tok", "octocat", MetricCommits, testSince, testNow)
	require.NoError(t, err)
	assert.Zero(t, result.Count)
}

func TestCommitsRepoListFailureIsFatal(t *testing.T) {
	client := &fakeClient{reposErr: &github.UpstreamError{StatusCode: 500, Message: "boom"}}
	e := newTestEngine(client, testNow)
	_, err := e.Progress(context.Background(), "tok", "octocat", MetricCommits, testSince, testNow)
	require.Error(t, err)
}

func TestCodeReviewsFiltersByTypeAndWindow(t *testing.T) {
	client := &fakeClient{
		events: []github.Event{
			{Type: "PullRequestReviewEvent", CreatedAt: testSince.AddDate(0, 0, 5)},
			{Type: "PullRequestReviewEvent", CreatedAt: testSince.AddDate(0, 0, 10)},
			{Type: "PushEvent", CreatedAt: testSince.AddDate(0, 0, 5)},
			{Type: "PullRequestReviewEvent", CreatedAt: testSince.AddDate(0, 0, -2)},
		},
	}
	e := newTestEngine(client, testNow)

	result, err := e.Progress(context.Background(), "tok", "octocat", MetricCodeReviews, testSince, testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
}

func TestRepositoriesCreatedInWindow(t *testing.T) {
	client := &fakeClient{
		repos: []github.Repository{
			{FullName: "octocat/old", CreatedAt: testSince.AddDate(-1, 0, 0)},
			{FullName: "octocat/new", CreatedAt: testSince.AddDate(0, 0, 3)},
			{FullName: "octocat/newer", CreatedAt: testSince.AddDate(0, 0, 20)},
		},
	}
	e := newTestEngine(client, testNow)

	result, err := e.Progress(context.Background(), "tok", "octocat", MetricRepositories, testSince, testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
}

func TestContributionsIsSumOfSubMetrics(t *testing.T) {
	client := &fakeClient{
		repos: []github.Repository{{FullName: "octocat/a"}},
		commits: map[string][]github.Commit{
			"octocat/a": makeCommits(2),
		},
		searchCount: map[string]int{
			"author:octocat+type:pr+created:2025-06-01T00:00:00Z..2025-07-01T12:00:00Z":    3,
			"author:octocat+type:issue+created:2025-06-01T00:00:00Z..2025-07-01T12:00:00Z": 4,
		},
		events: []github.Event{
			{Type: "PullRequestReviewEvent", CreatedAt: testSince.AddDate(0, 0, 1)},
		},
	}
	e := newTestEngine(client, testNow)

	total, err := e.Progress(context.Background(), "tok", "octocat", MetricContributions, testSince, testNow)
	require.NoError(t, err)

	sum := 0
	for _, m := range []Metric{MetricCommits, MetricPullRequests, MetricIssues, MetricCodeReviews} {
		r, err := e.Progress(context.Background(), "tok", "octocat", m, testSince, testNow)
		require.NoError(t, err)
		sum += r.Count
	}
	assert.Equal(t, sum, total.Count)
	assert.Equal(t, 10, total.Count)
}

func TestContributionsCarriesSkippedRepos(t *testing.T) {
	client := &fakeClient{
		repos: []github.Repository{{FullName: "octocat/blocked"}},
		commitsErr: map[string]error{
			"octocat/blocked": &github.UpstreamError{StatusCode: 404, Message: "Not Found"},
		},
		searchCount: map[string]int{},
	}
	e := newTestEngine(client, testNow)

	result, err := e.Progress(context.Background(), "tok", "octocat", MetricContributions, testSince, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, result.SkippedRepos)
}

func TestContributionsFailsWhenSearchFails(t *testing.T) {
	client := &fakeClient{searchErr: errors.New("rate limited")}
	e := newTestEngine(client, testNow)
	_, err := e.Progress(context.Background(), "tok", "octocat", MetricContributions, testSince, testNow)
	require.Error(t, err)
}
