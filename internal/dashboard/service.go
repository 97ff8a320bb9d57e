package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/octotrack/octotrack-api/internal/auth"
	"github.com/octotrack/octotrack-api/internal/config"
	"github.com/octotrack/octotrack-api/internal/github"
	"github.com/octotrack/octotrack-api/internal/progress"
	"golang.org/x/sync/errgroup"
)

var ErrUnauthorized = errors.New("unauthorized")

// weekdayLabels in chart order.
var weekdayLabels = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

type DashboardService interface {
	GithubUser(ctx context.Context) (*github.User, error)
	Repositories(ctx context.Context, page, perPage int, sort, affiliation string) (*github.RepositoryPage, error)
	RepoCommits(ctx context.Context, owner, repo string) ([]github.Commit, error)
	Stats(ctx context.Context) (*StatsResponse, error)
	StatsSummary(ctx context.Context) (*StatsSummaryResponse, error)
	WeeklyActivity(ctx context.Context) ([]WeekdayActivity, error)
}

type dashboardService struct {
	client github.Client
	tokens github.TokenProvider
	engine *progress.Engine
	now    func() time.Time
}

func NewService(client github.Client, tokens github.TokenProvider, engine *progress.Engine) DashboardService {
	return &dashboardService{
		client: client,
		tokens: tokens,
		engine: engine,
		now:    time.Now,
	}
}

// callerToken resolves the requesting user's GitHub token from their claims.
func (s *dashboardService) callerToken(ctx context.Context) (string, *auth.UserClaims, error) {
	claims, err := auth.GetUserClaimsFromContext(ctx)
	if err != nil {
		return "", nil, ErrUnauthorized
	}
	token, err := s.tokens.ProviderToken(ctx, claims.UserID)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

func (s *dashboardService) GithubUser(ctx context.Context) (*github.User, error) {
	token, _, err := s.callerToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.AuthenticatedUser(ctx, token)
}

func (s *dashboardService) Repositories(ctx context.Context, page, perPage int, sort, affiliation string) (*github.RepositoryPage, error) {
	token, _, err := s.callerToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.Repositories(ctx, token, page, perPage, sort, affiliation)
}

func (s *dashboardService) RepoCommits(ctx context.Context, owner, repo string) ([]github.Commit, error) {
	token, _, err := s.callerToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.Commits(ctx, token, owner+"/"+repo, "", time.Time{}, time.Time{}, 10)
}

func (s *dashboardService) Stats(ctx context.Context) (*StatsResponse, error) {
	token, _, err := s.callerToken(ctx)
	if err != nil {
		return nil, err
	}

	var (
		user *github.User
		page *github.RepositoryPage
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.client.AuthenticatedUser(gctx, token)
		return err
	})
	g.Go(func() error {
		var err error
		page, err = s.client.Repositories(gctx, token, 1, github.MaxPerPage, "updated", "owner,collaborator")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &StatsResponse{
		TotalRepos: len(page.Repos),
		Followers:  user.Followers,
		Following:  user.Following,
	}
	for _, repo := range page.Repos {
		if !repo.Private {
			stats.PublicRepos++
		}
		stats.TotalStars += repo.StargazersCount
		stats.TotalForks += repo.ForksCount
		stats.TotalIssues += repo.OpenIssuesCount
	}
	return stats, nil
}

// StatsSummary degrades gracefully: each card falls back to zero on its own
// failure instead of failing the whole dashboard header.
func (s *dashboardService) StatsSummary(ctx context.Context) (*StatsSummaryResponse, error) {
	log := config.WithContext(ctx)

	token, claims, err := s.callerToken(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	summary := &StatsSummaryResponse{}

	commits, err := s.engine.Progress(ctx, token, claims.Login, progress.MetricCommits, now.AddDate(0, 0, -7), now)
	if err != nil {
		log.WithError(err).Warn("Stats summary: commit count unavailable")
	} else {
		summary.Commits = commits.Count
	}

	prs, err := s.engine.Progress(ctx, token, claims.Login, progress.MetricPullRequests, now.AddDate(0, 0, -30), now)
	if err != nil {
		log.WithError(err).Warn("Stats summary: pull request count unavailable")
	} else {
		summary.PullRequests = prs.Count
	}

	page, err := s.client.Repositories(ctx, token, 1, github.MaxPerPage, "updated", "owner,collaborator")
	if err != nil {
		log.WithError(err).Warn("Stats summary: repositories unavailable")
	} else {
		summary.ActiveRepos = len(page.Repos)
		for _, repo := range page.Repos {
			summary.OpenIssues += repo.OpenIssuesCount
		}
	}

	return summary, nil
}

// WeeklyActivity buckets the caller's push events from the last seven days
// into Mon..Sun commit counts.
func (s *dashboardService) WeeklyActivity(ctx context.Context) ([]WeekdayActivity, error) {
	token, claims, err := s.callerToken(ctx)
	if err != nil {
		return nil, err
	}

	username := claims.Login
	if username == "" {
		user, err := s.client.AuthenticatedUser(ctx, token)
		if err != nil {
			return nil, err
		}
		username = user.Login
	}

	events, err := s.client.PublicEvents(ctx, token, username, github.MaxPerPage)
	if err != nil {
		return nil, err
	}

	now := s.now()
	windowStart := now.AddDate(0, 0, -6)

	counts := map[string]int{}
	for _, event := range events {
		if event.Type != "PushEvent" {
			continue
		}
		if event.CreatedAt.Before(windowStart) || event.CreatedAt.After(now) {
			continue
		}

		day := event.CreatedAt.UTC().Weekday().String()[:3]
		commits := len(event.Payload.Commits)
		if commits == 0 {
			commits = 1
		}
		counts[day] += commits
	}

	activity := make([]WeekdayActivity, 0, len(weekdayLabels))
	for _, day := range weekdayLabels {
		activity = append(activity, WeekdayActivity{Day: day, Commits: counts[day]})
	}
	return activity, nil
}
