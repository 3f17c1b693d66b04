package handler

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"campsite/internal/reviews/service"
	apperrors "campsite/pkg/errors"
	"campsite/pkg/logger"
	"campsite/pkg/model"
	"campsite/pkg/session"
	"campsite/pkg/web"
)

type ReviewHandler struct {
	service  service.ReviewService
	sessions *session.Manager
	renderer *web.Renderer
	log      *logger.Logger
}

func NewReviewHandler(service service.ReviewService, sessions *session.Manager, renderer *web.Renderer, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{
		service:  service,
		sessions: sessions,
		renderer: renderer,
		log:      log,
	}
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request, ps httprouter.Params) error {
	listingID := ps.ByName("id")
	cur := session.FromContext(r.Context())

	form, err := reviewFormFrom(r)
	if err != nil {
		return err
	}

	if _, err := h.service.Create(r.Context(), listingID, cur.UserID(), form); err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			h.sessions.Flash(w, r, model.FlashError, "That listing doesn't exist!")
			return web.Redirect(w, r, "/listings")
		}
		return err
	}

	h.sessions.Flash(w, r, model.FlashSuccess, "Created new review!")
	return web.Redirect(w, r, "/listings/"+listingID)
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) error {
	listingID := ps.ByName("id")
	reviewID := ps.ByName("reviewId")
	cur := session.FromContext(r.Context())

	review, err := h.service.Authorize(r.Context(), reviewID, cur.UserID())
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotAuthorized) {
			h.sessions.Flash(w, r, model.FlashError, "You do not have permission to do that!")
			return web.Redirect(w, r, "/listings/"+listingID)
		}
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			h.sessions.Flash(w, r, model.FlashError, "That review doesn't exist!")
			return web.Redirect(w, r, "/listings/"+listingID)
		}
		return err
	}

	if err := h.service.Delete(r.Context(), listingID, review); err != nil {
		return err
	}

	h.sessions.Flash(w, r, model.FlashSuccess, "Successfully deleted review")
	return web.Redirect(w, r, "/listings/"+listingID)
}

func (h *ReviewHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/listings/:id/reviews", h.renderer.Boundary(web.RequireSignedIn(h.sessions, h.Create)))
	router.DELETE("/listings/:id/reviews/:reviewId", h.renderer.Boundary(web.RequireSignedIn(h.sessions, h.Delete)))
}

func reviewFormFrom(r *http.Request) (*model.ReviewForm, error) {
	rating := 0
	if raw := r.PostFormValue("rating"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperrors.InvalidPayload("Rating must be a whole number", nil)
		}
		rating = parsed
	}

	return &model.ReviewForm{
		Body:   r.PostFormValue("body"),
		Rating: rating,
	}, nil
}
