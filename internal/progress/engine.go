package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/octotrack/octotrack-api/internal/config"
	"github.com/octotrack/octotrack-api/internal/github"
	"golang.org/x/sync/errgroup"
)

var ErrUsernameUnavailable = errors.New("github username not available")

// Result is a computed progress value. SkippedRepos counts repositories the
// commits calculator could not read; a non-zero value means Count understates
// the real total rather than the user genuinely having that few commits.
type Result struct {
	Count        int `json:"count"`
	SkippedRepos int `json:"skipped_repos,omitempty"`
}

type Engine struct {
	client github.Client
	now    func() time.Time
}

func NewEngine(client github.Client) *Engine {
	return &Engine{
		client: client,
		now:    time.Now,
	}
}

// Progress computes the metric for username over [since, until]. An empty
// username is resolved from the token's authenticated user. The window is
// clamped so until never passes the current time.
func (e *Engine) Progress(ctx context.Context, token, username string, metric Metric, since, until time.Time) (Result, error) {
	if username == "" {
		u, err := e.client.AuthenticatedUser(ctx, token)
		if err != nil {
			return Result{}, err
		}
		username = u.Login
	}
	if username == "" {
		return Result{}, ErrUsernameUnavailable
	}

	if now := e.now(); until.After(now) {
		until = now
	}

	switch metric {
	case MetricCommits:
		return e.commits(ctx, token, username, since, until)
	case MetricPullRequests:
		return e.searchCount(ctx, token, username, "pr", since, until)
	case MetricIssues:
		return e.searchCount(ctx, token, username, "issue", since, until)
	case MetricCodeReviews:
		return e.codeReviews(ctx, token, username, since, until)
	case MetricContributions:
		return e.contributions(ctx, token, username, since, until)
	case MetricRepositories:
		return e.repositoriesCreated(ctx, token, since, until)
	}
	return Result{}, fmt.Errorf("unknown metric %q", metric)
}

// commits sums first-page commit counts over up to 100 repositories. A repo
// whose commits cannot be fetched is skipped, not fatal, so partial upstream
// failure understates the total; callers can see that via SkippedRepos.
func (e *Engine) commits(ctx context.Context, token, username string, since, until time.Time) (Result, error) {
	log := config.WithContext(ctx)

	page, err := e.client.Repositories(ctx, token, 1, github.MaxPerPage, "updated", "owner,collaborator")
	if err != nil {
		return Result{}, err
	}

	result := Result{}
	for _, repo := range page.Repos {
		commits, err := e.client.Commits(ctx, token, repo.FullName, username, since, until, github.MaxPerPage)
		if err != nil {
			log.WithError(err).WithField("repo", repo.FullName).Warn("Skipping repository in commit count")
			result.SkippedRepos++
			continue
		}
		result.Count += len(commits)
	}
	return result, nil
}

func (e *Engine) searchCount(ctx context.Context, token, username, issueType string, since, until time.Time) (Result, error) {
	query := fmt.Sprintf("author:%s+type:%s+created:%s..%s",
		username, issueType,
		since.UTC().Format(time.RFC3339),
		until.UTC().Format(time.RFC3339),
	)

	count, err := e.client.SearchIssues(ctx, token, query)
	if err != nil {
		return Result{}, err
	}
	return Result{Count: count}, nil
}

// codeReviews counts PullRequestReviewEvent entries inside the window. The
// events endpoint only exposes the most recent 100 events, so long windows
// on active accounts are undercounted.
func (e *Engine) codeReviews(ctx context.Context, token, username string, since, until time.Time) (Result, error) {
	events, err := e.client.PublicEvents(ctx, token, username, github.MaxPerPage)
	if err != nil {
		return Result{}, err
	}

	count := 0
	for _, event := range events {
		if event.Type != "PullRequestReviewEvent" {
			continue
		}
		if event.CreatedAt.Before(since) || event.CreatedAt.After(until) {
			continue
		}
		count++
	}
	return Result{Count: count}, nil
}

// contributions is the sum of the four sub-metrics, fetched concurrently.
// Each sub-calculator keeps its own tolerance policy; a failure that escapes
// one of them fails the whole computation.
func (e *Engine) contributions(ctx context.Context, token, username string, since, until time.Time) (Result, error) {
	var commits, prs, issues, reviews Result

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		commits, err = e.commits(gctx, token, username, since, until)
		return err
	})
	g.Go(func() error {
		var err error
		prs, err = e.searchCount(gctx, token, username, "pr", since, until)
		return err
	})
	g.Go(func() error {
		var err error
		issues, err = e.searchCount(gctx, token, username, "issue", since, until)
		return err
	})
	g.Go(func() error {
		var err error
		reviews, err = e.codeReviews(gctx, token, username, since, until)
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	return Result{
		Count:        commits.Count + prs.Count + issues.Count + reviews.Count,
		SkippedRepos: commits.SkippedRepos,
	}, nil
}

// repositoriesCreated counts repositories created inside the window, out of
// the first 100 the user can access.
func (e *Engine) repositoriesCreated(ctx context.Context, token string, since, until time.Time) (Result, error) {
	page, err := e.client.Repositories(ctx, token, 1, github.MaxPerPage, "updated", "owner,collaborator")
	if err != nil {
		return Result{}, err
	}

	count := 0
	for _, repo := range page.Repos {
		if repo.CreatedAt.Before(since) || repo.CreatedAt.After(until) {
			continue
		}
		count++
	}
	return Result{Count: count}, nil
}
