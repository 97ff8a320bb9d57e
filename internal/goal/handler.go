package goal

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/octotrack/octotrack-api/internal/config"
	"github.com/octotrack/octotrack-api/internal/github"
)

type Handler struct {
	service GoalService
}

func NewHandler(service GoalService) *Handler {
	return &Handler{service: service}
}

// writeError maps service errors onto the API's status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error, action string) {
	log := config.WithContext(r.Context())

	switch {
	case errors.Is(err, ErrUnauthorized), errors.Is(err, github.ErrNoProviderToken):
		config.Error(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, ErrGoalNotFound):
		config.Error(w, http.StatusNotFound, "goal not found")
	case errors.Is(err, ErrInvalidID):
		config.Error(w, http.StatusBadRequest, "invalid goal id")
	case errors.Is(err, ErrValidation):
		config.Error(w, http.StatusBadRequest, err.Error())
	default:
		log.WithError(err).Errorf("Failed to %s", action)
		config.Error(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateGoalDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		config.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	goal, err := h.service.Create(r.Context(), dto)
	if err != nil {
		writeError(w, r, err, "create goal")
		return
	}

	config.JSON(w, http.StatusCreated, goal)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	goals, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, err, "list goals")
		return
	}

	if goals == nil {
		goals = []Goal{}
	}
	config.JSON(w, http.StatusOK, goals)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		config.Error(w, http.StatusBadRequest, "id required")
		return
	}

	var dto UpdateGoalDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		config.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	goal, err := h.service.Update(r.Context(), id, dto)
	if err != nil {
		writeError(w, r, err, "update goal")
		return
	}

	config.JSON(w, http.StatusOK, goal)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		config.Error(w, http.StatusBadRequest, "id required")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err, "delete goal")
		return
	}

	config.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	var dto UpdateProgressDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil || dto.GoalID == "" {
		config.Error(w, http.StatusBadRequest, "goal_id is required")
		return
	}

	goal, err := h.service.RefreshProgress(r.Context(), dto.GoalID)
	if err != nil {
		writeError(w, r, err, "refresh goal progress")
		return
	}

	config.JSON(w, http.StatusOK, goal)
}

func (h *Handler) UpdateAllProgress(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.RefreshAll(r.Context())
	if err != nil {
		writeError(w, r, err, "refresh all goals")
		return
	}

	config.JSON(w, http.StatusOK, summary)
}
