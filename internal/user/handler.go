package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/octotrack/octotrack-api/internal/config"
)

type Handler struct {
	service UserService
}

func NewHandler(service UserService) *Handler {
	return &Handler{service: service}
}

func setSessionCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   os.Getenv("COOKIE_DOMAIN"),
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   config.IsProduction(),
		SameSite: http.SameSiteNoneMode,
	})
}

func (h *Handler) GithubLogin(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	var dto GithubLoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil || dto.Code == "" {
		config.Error(w, http.StatusBadRequest, "code is required")
		return
	}

	result, err := h.service.GithubLogin(r.Context(), dto.Code)
	if err != nil {
		if errors.Is(err, ErrExchangeFailed) {
			config.Error(w, http.StatusBadRequest, "invalid authorization code")
			return
		}
		log.WithError(err).Error("GitHub login failed")
		config.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	setSessionCookie(w, "jwt", result.SessionToken, sessionTTL)
	setSessionCookie(w, "refresh_jwt", result.RefreshToken, refreshTTL)

	config.JSON(w, http.StatusOK, result.User)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	cookie, err := r.Cookie("refresh_jwt")
	if err != nil {
		config.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sessionToken, err := h.service.RefreshSession(r.Context(), cookie.Value)
	if err != nil {
		log.WithError(err).Warn("Session refresh failed")
		config.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	setSessionCookie(w, "jwt", sessionToken, sessionTTL)
	config.JSON(w, http.StatusOK, map[string]string{"message": "session refreshed"})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	u, err := h.service.CurrentUser(r.Context())
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			config.Error(w, http.StatusNotFound, "user not found")
			return
		}
		log.WithError(err).Error("Failed to load current user")
		config.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	config.JSON(w, http.StatusOK, u)
}
