package web

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	apperrors "campsite/pkg/errors"
	"campsite/pkg/middleware"
	"campsite/pkg/model"
	"campsite/pkg/session"
)

// HandlerFunc is a route handler that reports failure instead of writing
// error responses itself. The boundary renders every failure uniformly.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) error

type errorView struct {
	Status  int
	Message string
}

// Boundary adapts a HandlerFunc into an httprouter.Handle, funneling any
// returned failure into the generic error view.
func (rd *Renderer) Boundary(fn HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		err := fn(w, r, ps)
		if err == nil {
			return
		}

		appErr := apperrors.AsAppError(err)
		rd.log.Error("Request failed",
			"request_id", middleware.RequestID(r),
			"method", r.Method,
			"path", r.URL.Path,
			"code", appErr.Code,
			"status", appErr.StatusCode(),
			"error", appErr,
		)

		rd.RenderError(w, r, appErr)
	}
}

func (rd *Renderer) RenderError(w http.ResponseWriter, r *http.Request, appErr *apperrors.AppError) {
	message := appErr.Message
	if message == "" {
		message = "Something went wrong"
	}
	_ = rd.Render(w, r, appErr.StatusCode(), "error.html", errorView{
		Status:  appErr.StatusCode(),
		Message: message,
	})
}

// NotFoundHandler routes unmatched paths through the same error rendering.
func (rd *Renderer) NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rd.RenderError(w, r, apperrors.NotFound("Page"))
	})
}

// RequireSignedIn gates a route on an authenticated session. Anonymous
// callers get their intended path recorded, a warning flash, and a redirect
// to the login screen.
func RequireSignedIn(sessions *session.Manager, fn HandlerFunc) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) error {
		cur := session.FromContext(r.Context())
		if !cur.SignedIn() {
			sessions.SetReturnTo(w, r, r.URL.RequestURI())
			sessions.Flash(w, r, model.FlashError, "You must be signed in to complete this action!")
			return Redirect(w, r, "/login")
		}
		return fn(w, r, ps)
	}
}
