package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"campsite/internal/users/service"
	apperrors "campsite/pkg/errors"
	"campsite/pkg/logger"
	"campsite/pkg/model"
	"campsite/pkg/session"
	"campsite/pkg/web"
)

type UserHandler struct {
	service  service.UserService
	sessions *session.Manager
	renderer *web.Renderer
	log      *logger.Logger
}

func NewUserHandler(service service.UserService, sessions *session.Manager, renderer *web.Renderer, log *logger.Logger) *UserHandler {
	return &UserHandler{
		service:  service,
		sessions: sessions,
		renderer: renderer,
		log:      log,
	}
}

func (h *UserHandler) RenderRegisterForm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) error {
	return h.renderer.Render(w, r, http.StatusOK, "users/register.html", nil)
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) error {
	creds := credentialsFrom(r)

	user, err := h.service.Register(r.Context(), creds)
	if err != nil {
		// Validation and duplicate failures go back to the form with a
		// notice instead of the error page.
		if apperrors.IsCode(err, apperrors.CodeInvalidPayload) || apperrors.IsCode(err, apperrors.CodeConflict) {
			h.sessions.Flash(w, r, model.FlashError, apperrors.AsAppError(err).Message)
			return web.Redirect(w, r, "/register")
		}
		return err
	}

	h.sessions.SignIn(w, r, user.ID)
	h.sessions.Flash(w, r, model.FlashSuccess, "Welcome to Campsite!")
	return web.Redirect(w, r, "/listings")
}

func (h *UserHandler) RenderLoginForm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) error {
	return h.renderer.Render(w, r, http.StatusOK, "users/login.html", nil)
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) error {
	creds := credentialsFrom(r)

	user, err := h.service.Authenticate(r.Context(), creds)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeUnauthenticated) {
			h.sessions.Flash(w, r, model.FlashError, "Invalid username or password")
			return web.Redirect(w, r, "/login")
		}
		return err
	}

	returnTo := h.sessions.SignIn(w, r, user.ID)
	h.sessions.Flash(w, r, model.FlashSuccess, "Welcome back!")

	if returnTo == "" {
		returnTo = "/listings"
	}
	return web.Redirect(w, r, returnTo)
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) error {
	h.sessions.SignOut(w, r)
	h.sessions.Flash(w, r, model.FlashSuccess, "Goodbye!")
	return web.Redirect(w, r, "/listings")
}

func (h *UserHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/register", h.renderer.Boundary(h.RenderRegisterForm))
	router.POST("/register", h.renderer.Boundary(h.Register))
	router.GET("/login", h.renderer.Boundary(h.RenderLoginForm))
	router.POST("/login", h.renderer.Boundary(h.Login))
	router.POST("/logout", h.renderer.Boundary(h.Logout))
}

func credentialsFrom(r *http.Request) *model.Credentials {
	return &model.Credentials{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
}
