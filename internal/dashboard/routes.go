package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/user", h.GithubUser)
	r.Get("/repos", h.Repositories)
	r.Get("/repos/{owner}/{repo}/commits", h.RepoCommits)
	r.Get("/stats", h.Stats)
	r.Get("/stats-summary", h.StatsSummary)
	r.Get("/weekly-activity", h.WeeklyActivity)

	return r
}
