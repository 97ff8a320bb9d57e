package goal

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/update-progress", h.UpdateProgress)
	r.Put("/update-progress", h.UpdateAllProgress)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	return r
}
