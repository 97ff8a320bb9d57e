package dashboard

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/octotrack/octotrack-api/internal/config"
	"github.com/octotrack/octotrack-api/internal/github"
)

type Handler struct {
	service DashboardService
}

func NewHandler(service DashboardService) *Handler {
	return &Handler{service: service}
}

func writeError(w http.ResponseWriter, r *http.Request, err error, action string) {
	log := config.WithContext(r.Context())

	switch {
	case errors.Is(err, ErrUnauthorized), errors.Is(err, github.ErrNoProviderToken):
		config.Error(w, http.StatusUnauthorized, "GitHub is not connected. Please sign in again.")
	default:
		var upstream *github.UpstreamError
		if errors.As(err, &upstream) {
			log.WithError(err).Errorf("Upstream failure during %s", action)
			config.Error(w, http.StatusInternalServerError, upstream.Error())
			return
		}
		log.WithError(err).Errorf("Failed to %s", action)
		config.Error(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) GithubUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GithubUser(r.Context())
	if err != nil {
		writeError(w, r, err, "fetch github user")
		return
	}
	config.JSON(w, http.StatusOK, user)
}

func (h *Handler) Repositories(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	perPage, _ := strconv.Atoi(query.Get("per_page"))

	result, err := h.service.Repositories(r.Context(), page, perPage, query.Get("sort"), query.Get("affiliation"))
	if err != nil {
		writeError(w, r, err, "fetch repositories")
		return
	}
	config.JSON(w, http.StatusOK, result)
}

func (h *Handler) RepoCommits(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	repo := chi.URLParam(r, "repo")
	if owner == "" || repo == "" {
		config.Error(w, http.StatusBadRequest, "owner and repo are required")
		return
	}

	commits, err := h.service.RepoCommits(r.Context(), owner, repo)
	if err != nil {
		writeError(w, r, err, "fetch repository commits")
		return
	}
	config.JSON(w, http.StatusOK, commits)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		writeError(w, r, err, "fetch stats")
		return
	}
	config.JSON(w, http.StatusOK, stats)
}

func (h *Handler) StatsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.StatsSummary(r.Context())
	if err != nil {
		writeError(w, r, err, "fetch stats summary")
		return
	}
	config.JSON(w, http.StatusOK, summary)
}

func (h *Handler) WeeklyActivity(w http.ResponseWriter, r *http.Request) {
	activity, err := h.service.WeeklyActivity(r.Context())
	if err != nil {
		writeError(w, r, err, "fetch weekly activity")
		return
	}
	config.JSON(w, http.StatusOK, activity)
}
