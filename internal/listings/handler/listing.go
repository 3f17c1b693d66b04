package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"campsite/internal/images"
	"campsite/internal/listings/service"
	"campsite/pkg/config"
	apperrors "campsite/pkg/errors"
	"campsite/pkg/model"
	"campsite/pkg/session"
	"campsite/pkg/web"
)

type ListingHandler struct {
	service  service.ListingService
	sessions *session.Manager
	renderer *web.Renderer
	cfg      *config.Config
}

func NewListingHandler(service service.ListingService, sessions *session.Manager, renderer *web.Renderer, cfg *config.Config) *ListingHandler {
	return &ListingHandler{
		service:  service,
		sessions: sessions,
		renderer: renderer,
		cfg:      cfg,
	}
}

func (h *ListingHandler) Home(w http.ResponseWriter, r *http.Request, _ httprouter.Params) error {
	return h.renderer.Render(w, r, http.StatusOK, "home.html", nil)
}

func (h *ListingHandler) Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) error {
	listings, err := h.service.GetAll(r.Context())
	if err != nil {
		return err
	}
	return h.renderer.Render(w, r, http.StatusOK, "listings/index.html", listings)
}

// Show also serves the creation form: the router matches "/listings/new"
// against the ":id" wildcard, so the reserved id dispatches to the form.
func (h *ListingHandler) Show(w http.ResponseWriter, r *http.Request, ps httprouter.Params) error {
	id := ps.ByName("id")
	if id == "new" {
		return web.RequireSignedIn(h.sessions, h.RenderNewForm)(w, r, ps)
	}

	detail, err := h.service.GetDetail(r.Context(), id)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			h.sessions.Flash(w, r, model.FlashError, "That listing doesn't exist!")
			return web.Redirect(w, r, "/listings")
		}
		return err
	}
	return h.renderer.Render(w, r, http.StatusOK, "listings/show.html", detail)
}

func (h *ListingHandler) RenderNewForm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) error {
	return h.renderer.Render(w, r, http.StatusOK, "listings/new.html", nil)
}

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) error {
	cur := session.FromContext(r.Context())

	form, uploads, cleanup, err := h.listingFormFrom(r)
	if err != nil {
		return err
	}
	defer cleanup()

	listing, err := h.service.Create(r.Context(), cur.UserID(), form, uploads)
	if err != nil {
		return err
	}

	h.sessions.Flash(w, r, model.FlashSuccess, "Successfully made a new listing!")
	return web.Redirect(w, r, "/listings/"+listing.ID)
}

func (h *ListingHandler) RenderEditForm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) error {
	id := ps.ByName("id")
	cur := session.FromContext(r.Context())

	listing, err := h.service.Authorize(r.Context(), id, cur.UserID())
	if err != nil {
		return h.redirectDenied(w, r, id, err)
	}
	return h.renderer.Render(w, r, http.StatusOK, "listings/edit.html", listing)
}

func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) error {
	id := ps.ByName("id")
	cur := session.FromContext(r.Context())

	listing, err := h.service.Authorize(r.Context(), id, cur.UserID())
	if err != nil {
		return h.redirectDenied(w, r, id, err)
	}

	form, uploads, cleanup, err := h.listingFormFrom(r)
	if err != nil {
		return err
	}
	defer cleanup()

	deleteImages := r.PostForm["deleteImages"]
	if r.MultipartForm != nil {
		deleteImages = r.MultipartForm.Value["deleteImages"]
	}

	if _, err := h.service.Update(r.Context(), listing, form, uploads, deleteImages); err != nil {
		return err
	}

	h.sessions.Flash(w, r, model.FlashSuccess, "Successfully updated listing!")
	return web.Redirect(w, r, "/listings/"+id)
}

func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) error {
	id := ps.ByName("id")
	cur := session.FromContext(r.Context())

	listing, err := h.service.Authorize(r.Context(), id, cur.UserID())
	if err != nil {
		return h.redirectDenied(w, r, id, err)
	}

	if err := h.service.Delete(r.Context(), listing); err != nil {
		return err
	}

	h.sessions.Flash(w, r, model.FlashSuccess, "Successfully deleted listing!")
	return web.Redirect(w, r, "/listings")
}

func (h *ListingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/", h.renderer.Boundary(h.Home))
	router.GET("/listings", h.renderer.Boundary(h.Index))
	router.POST("/listings", h.renderer.Boundary(web.RequireSignedIn(h.sessions, h.Create)))
	router.GET("/listings/:id", h.renderer.Boundary(h.Show))
	router.GET("/listings/:id/edit", h.renderer.Boundary(web.RequireSignedIn(h.sessions, h.RenderEditForm)))
	router.PUT("/listings/:id", h.renderer.Boundary(web.RequireSignedIn(h.sessions, h.Update)))
	router.DELETE("/listings/:id", h.renderer.Boundary(web.RequireSignedIn(h.sessions, h.Delete)))
}

// redirectDenied turns authorization failures into the flash-and-redirect
// shape the views expect instead of a bare error page.
func (h *ListingHandler) redirectDenied(w http.ResponseWriter, r *http.Request, id string, err error) error {
	if apperrors.IsCode(err, apperrors.CodeNotAuthorized) {
		h.sessions.Flash(w, r, model.FlashError, "You do not have permission to do that!")
		return web.Redirect(w, r, "/listings/"+id)
	}
	if apperrors.IsCode(err, apperrors.CodeNotFound) {
		h.sessions.Flash(w, r, model.FlashError, "That listing doesn't exist!")
		return web.Redirect(w, r, "/listings")
	}
	return err
}

// listingFormFrom binds the form fields and opens any uploaded files. The
// returned cleanup closes the opened files and must always be called.
func (h *ListingHandler) listingFormFrom(r *http.Request) (*model.ListingForm, []images.Upload, func(), error) {
	cleanup := func() {}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(int64(h.cfg.MaxUploadSize)); err != nil {
			return nil, nil, cleanup, apperrors.InvalidPayload("Could not read the submitted form", nil)
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, nil, cleanup, apperrors.InvalidPayload("Could not read the submitted form", nil)
	}

	var price *float64
	if raw := r.PostFormValue("price"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, nil, cleanup, apperrors.InvalidPayload("Price must be a number", nil)
		}
		price = &parsed
	}

	form := &model.ListingForm{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Price:       price,
		Location:    r.PostFormValue("location"),
	}

	var uploads []images.Upload
	var opened []multipart.File
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["images"] {
			file, err := header.Open()
			if err != nil {
				closeAll(opened)
				return nil, nil, cleanup, apperrors.InvalidPayload("Could not read an uploaded image", nil)
			}
			opened = append(opened, file)
			uploads = append(uploads, images.Upload{File: file, Name: header.Filename})
		}
	}
	cleanup = func() { closeAll(opened) }

	return form, uploads, cleanup, nil
}

func closeAll(files []multipart.File) {
	for _, file := range files {
		file.Close()
	}
}
