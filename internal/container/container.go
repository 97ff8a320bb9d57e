package container

import (
	"context"
	"log"
	"os"

	"github.com/octotrack/octotrack-api/internal/auth"
	"github.com/octotrack/octotrack-api/internal/config"
	"github.com/octotrack/octotrack-api/internal/dashboard"
	"github.com/octotrack/octotrack-api/internal/github"
	"github.com/octotrack/octotrack-api/internal/goal"
	"github.com/octotrack/octotrack-api/internal/progress"
	"github.com/octotrack/octotrack-api/internal/user"
)

type Container struct {
	UserContainer      *user.UserContainer
	GoalContainer      *goal.GoalContainer
	DashboardContainer *dashboard.DashboardContainer
}

func New() *Container {
	config.Init()
	auth.Init()
	config.InitCrypto()

	dsn := os.Getenv("DATABASE_DSN")
	if err := config.Connect(context.Background(), dsn); err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}

	userContainer := user.NewUserContainer(config.DB)

	client := github.NewClient()
	tokens := github.NewTokenProvider(userContainer.Repo)
	engine := progress.NewEngine(client)

	goalContainer := goal.NewGoalContainer(config.DB, tokens, engine)
	dashboardContainer := dashboard.NewDashboardContainer(client, tokens, engine)

	return &Container{
		UserContainer:      userContainer,
		GoalContainer:      goalContainer,
		DashboardContainer: dashboardContainer,
	}
}

// Shutdown stops background workers. Safe to call once during teardown.
func (c *Container) Shutdown() {
	c.GoalContainer.Worker.Stop()
}
