package goal

import (
	"github.com/octotrack/octotrack-api/internal/github"
	"github.com/octotrack/octotrack-api/internal/progress"
	"gorm.io/gorm"
)

type GoalContainer struct {
	Handler *Handler
	Service GoalService
	Worker  *Worker
}

func NewGoalContainer(db *gorm.DB, tokens github.TokenProvider, engine *progress.Engine) *GoalContainer {
	repo := NewRepository(db)
	service := NewService(repo, tokens, engine)

	worker := NewWorker(service)
	worker.Start()
	service.SetRecomputeQueue(worker)

	handler := NewHandler(service)

	return &GoalContainer{
		Handler: handler,
		Service: service,
		Worker:  worker,
	}
}
