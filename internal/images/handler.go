package images

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	apperrors "campsite/pkg/errors"
	"campsite/pkg/logger"
	"campsite/pkg/web"
)

// Handler serves stored image bytes back out at the URLs embedded in
// listing documents.
type Handler struct {
	storage  Storage
	renderer *web.Renderer
	log      *logger.Logger
}

func NewHandler(storage Storage, renderer *web.Renderer, log *logger.Logger) *Handler {
	return &Handler{
		storage:  storage,
		renderer: renderer,
		log:      log,
	}
}

func (h *Handler) Serve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) error {
	filename := ps.ByName("id")
	if filename == "" {
		return apperrors.NotFound("Image")
	}

	data, contentType, err := h.storage.Open(r.Context(), filename)
	if err != nil {
		return apperrors.NotFoundWithID("Image", filename)
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := w.Write(data); err != nil {
		h.log.Error("Failed to write image response", "filename", filename, "error", err)
	}
	return nil
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/images/:id", h.renderer.Boundary(h.Serve))
}
