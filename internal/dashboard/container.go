package dashboard

import (
	"github.com/octotrack/octotrack-api/internal/github"
	"github.com/octotrack/octotrack-api/internal/progress"
)

type DashboardContainer struct {
	Handler *Handler
	Service DashboardService
}

func NewDashboardContainer(client github.Client, tokens github.TokenProvider, engine *progress.Engine) *DashboardContainer {
	service := NewService(client, tokens, engine)
	handler := NewHandler(service)

	return &DashboardContainer{
		Handler: handler,
		Service: service,
	}
}
