package catalog

import (
	"net/http"

	"chimeral-forms/paths"
	"chimeral-forms/respond"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	base paths.Prefixer
}

func NewHandler(base paths.Prefixer) *Handler {
	return &Handler{base: base}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/books", h.list)
	r.Get("/books/{id}", h.get)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	all := All()
	for i := range all {
		all[i] = h.withBase(all[i])
	}
	respond.JSON(w, http.StatusOK, map[string]any{"books": all})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	b, ok := ByID(chi.URLParam(r, "id"))
	if !ok {
		respond.Error(w, http.StatusNotFound, "Book not found")
		return
	}
	respond.JSON(w, http.StatusOK, h.withBase(b))
}

func (h *Handler) withBase(b Book) Book {
	b.CoverSrc = h.base.Path(b.CoverSrc)
	return b
}
