package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"campsite/pkg/logger"
	"campsite/pkg/model"
	"campsite/pkg/session"
)

//go:embed templates/*.html templates/listings/*.html templates/users/*.html
var templatesFS embed.FS

var pages = []string{
	"home.html",
	"error.html",
	"listings/index.html",
	"listings/show.html",
	"listings/new.html",
	"listings/edit.html",
	"users/login.html",
	"users/register.html",
}

// View is what every template receives: the page payload plus the
// session-derived bits the layout renders on each page.
type View struct {
	CurrentUser *model.User
	Flashes     []model.Flash
	Data        any
}

type Renderer struct {
	templates map[string]*template.Template
	sessions  *session.Manager
	log       *logger.Logger
}

func NewRenderer(sessions *session.Manager, log *logger.Logger) (*Renderer, error) {
	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.ParseFS(templatesFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		templates[page] = t
	}

	return &Renderer{
		templates: templates,
		sessions:  sessions,
		log:       log,
	}, nil
}

func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data any) error {
	t, ok := rd.templates[page]
	if !ok {
		return fmt.Errorf("unknown template: %s", page)
	}

	cur := session.FromContext(r.Context())
	view := View{
		CurrentUser: cur.User,
		Flashes:     rd.sessions.PopFlashes(r),
		Data:        data,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "layout", view); err != nil {
		// Headers are gone; all we can do is log.
		rd.log.Error("Failed to execute template", "template", page, "error", err)
	}
	return nil
}

// Redirect is the post-write response shape: 303 so the browser re-requests
// with GET regardless of the overridden verb.
func Redirect(w http.ResponseWriter, r *http.Request, location string) error {
	http.Redirect(w, r, location, http.StatusSeeOther)
	return nil
}
