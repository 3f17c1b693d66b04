package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	"campsite/internal/images"
	"campsite/internal/listings/service"
	"campsite/pkg/config"
	apperrors "campsite/pkg/errors"
	"campsite/pkg/logger"
	"campsite/pkg/middleware"
	"campsite/pkg/model"
	"campsite/pkg/session"
	"campsite/pkg/web"
)

type mockListingService struct {
	getAllFunc    func(ctx context.Context) ([]model.Listing, error)
	getDetailFunc func(ctx context.Context, id string) (*model.ListingDetail, error)
	createFunc    func(ctx context.Context, authorID string, form *model.ListingForm, uploads []images.Upload) (*model.Listing, error)
	authorizeFunc func(ctx context.Context, id, userID string) (*model.Listing, error)
	updateFunc    func(ctx context.Context, listing *model.Listing, form *model.ListingForm, uploads []images.Upload, deleteImages []string) (*model.Listing, error)
	deleteFunc    func(ctx context.Context, listing *model.Listing) error
	deleted       int
}

func (m *mockListingService) GetAll(ctx context.Context) ([]model.Listing, error) {
	if m.getAllFunc != nil {
		return m.getAllFunc(ctx)
	}
	return nil, nil
}

func (m *mockListingService) GetDetail(ctx context.Context, id string) (*model.ListingDetail, error) {
	if m.getDetailFunc != nil {
		return m.getDetailFunc(ctx, id)
	}
	return nil, apperrors.NotFoundWithID("Listing", id)
}

func (m *mockListingService) Create(ctx context.Context, authorID string, form *model.ListingForm, uploads []images.Upload) (*model.Listing, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, authorID, form, uploads)
	}
	return &model.Listing{ID: "listing-1", Author: authorID}, nil
}

func (m *mockListingService) Authorize(ctx context.Context, id, userID string) (*model.Listing, error) {
	if m.authorizeFunc != nil {
		return m.authorizeFunc(ctx, id, userID)
	}
	return &model.Listing{ID: id, Author: userID}, nil
}

func (m *mockListingService) Update(ctx context.Context, listing *model.Listing, form *model.ListingForm, uploads []images.Upload, deleteImages []string) (*model.Listing, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, listing, form, uploads, deleteImages)
	}
	return listing, nil
}

func (m *mockListingService) Delete(ctx context.Context, listing *model.Listing) error {
	m.deleted++
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, listing)
	}
	return nil
}

var _ service.ListingService = (*mockListingService)(nil)

type memStore struct {
	sessions map[string]*model.Session
}

func newMemStore() *memStore {
	return &memStore{sessions: map[string]*model.Session{}}
}

func (s *memStore) Find(ctx context.Context, token string) (*model.Session, error) {
	if sess, ok := s.sessions[token]; ok {
		copied := *sess
		return &copied, nil
	}
	return nil, session.ErrSessionNotFound
}

func (s *memStore) Save(ctx context.Context, sess *model.Session) error {
	copied := *sess
	s.sessions[sess.Token] = &copied
	return nil
}

func (s *memStore) Delete(ctx context.Context, token string) error {
	delete(s.sessions, token)
	return nil
}

type harness struct {
	store   *memStore
	service *mockListingService
	handler http.Handler
}

// newHarness assembles the handler behind the same middleware the server
// runs: method override outside, session resolution inside.
func newHarness(t *testing.T, svc *mockListingService) *harness {
	t.Helper()

	log := logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
	store := newMemStore()

	users := map[string]*model.User{
		"user-1": {ID: "user-1", Username: "owner"},
		"user-2": {ID: "user-2", Username: "visitor"},
	}
	sessions := session.NewManager(store, "session", time.Hour, false,
		func(ctx context.Context, id string) (*model.User, error) {
			if user, ok := users[id]; ok {
				return user, nil
			}
			return nil, apperrors.NotFoundWithID("User", id)
		}, log)

	renderer, err := web.NewRenderer(sessions, log)
	if err != nil {
		t.Fatalf("failed to build renderer: %v", err)
	}

	cfg := &config.Config{Log: log, MaxUploadSize: 1 << 20}
	router := httprouter.New()
	NewListingHandler(svc, sessions, renderer, cfg).RegisterRoutes(router)

	var h http.Handler = router
	h = sessions.Middleware()(h)
	h = middleware.MethodOverride()(h)

	return &harness{store: store, service: svc, handler: h}
}

func (h *harness) signIn(userID string) *http.Cookie {
	token := "token-" + userID
	now := time.Now().UTC()
	h.store.sessions[token] = &model.Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	return &http.Cookie{Name: "session", Value: token}
}

func TestIndex_Anonymous(t *testing.T) {
	svc := &mockListingService{
		getAllFunc: func(ctx context.Context) ([]model.Listing, error) {
			return []model.Listing{{ID: "listing-1", Title: "Forest Hideaway", Location: "Bend, Oregon"}}, nil
		},
	}
	h := newHarness(t, svc)

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/listings", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Forest Hideaway") {
		t.Error("expected the listing title in the rendered index")
	}
}

func TestCreate_AnonymousRedirectsToLogin(t *testing.T) {
	h := newHarness(t, &mockListingService{})

	form := url.Values{"title": {"X"}}
	req := httptest.NewRequest(http.MethodPost, "/listings", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/login" {
		t.Errorf("expected redirect to /login, got %q", got)
	}

	// The intended path and the warning flash land in a fresh session.
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie to be set")
	}
	sess := h.store.sessions[cookies[0].Value]
	if sess == nil {
		t.Fatal("expected the session to be persisted")
	}
	if sess.ReturnTo != "/listings" {
		t.Errorf("expected ReturnTo /listings, got %q", sess.ReturnTo)
	}
	if len(sess.Flashes) != 1 || sess.Flashes[0].Kind != model.FlashError {
		t.Errorf("expected one error flash, got %v", sess.Flashes)
	}
}

func TestCreate_NegativePriceIs400(t *testing.T) {
	svc := &mockListingService{
		createFunc: func(ctx context.Context, authorID string, form *model.ListingForm, uploads []images.Upload) (*model.Listing, error) {
			if form.Price == nil || *form.Price != -5 {
				t.Errorf("expected bound price -5, got %v", form.Price)
			}
			return nil, apperrors.InvalidPayload("Price must be 0 or greater", nil)
		},
	}
	h := newHarness(t, svc)

	form := url.Values{
		"title":       {"Forest Hideaway"},
		"description": {"Room for tents."},
		"price":       {"-5"},
		"location":    {"Bend, Oregon"},
	}
	req := httptest.NewRequest(http.MethodPost, "/listings", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(h.signIn("user-1"))

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreate_AbsentPriceBindsNil(t *testing.T) {
	svc := &mockListingService{
		createFunc: func(ctx context.Context, authorID string, form *model.ListingForm, uploads []images.Upload) (*model.Listing, error) {
			if form.Price != nil {
				t.Errorf("expected nil price for an absent field, got %v", *form.Price)
			}
			return nil, apperrors.InvalidPayload("Price is required", nil)
		},
	}
	h := newHarness(t, svc)

	form := url.Values{
		"title":       {"Forest Hideaway"},
		"description": {"Room for tents."},
		"location":    {"Bend, Oregon"},
	}
	req := httptest.NewRequest(http.MethodPost, "/listings", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(h.signIn("user-1"))

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUpdate_NonOwnerRedirectsWithFlash(t *testing.T) {
	svc := &mockListingService{
		authorizeFunc: func(ctx context.Context, id, userID string) (*model.Listing, error) {
			return nil, apperrors.NotAuthorized("You do not have permission to do that!")
		},
		updateFunc: func(ctx context.Context, listing *model.Listing, form *model.ListingForm, uploads []images.Upload, deleteImages []string) (*model.Listing, error) {
			t.Fatal("update must not run for a non-owner")
			return nil, nil
		},
	}
	h := newHarness(t, svc)

	form := url.Values{"title": {"Taken Over"}}
	req := httptest.NewRequest(http.MethodPost, "/listings/abc123?_method=PUT", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(h.signIn("user-2"))

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/listings/abc123" {
		t.Errorf("expected redirect back to the listing, got %q", got)
	}
	sess := h.store.sessions["token-user-2"]
	if len(sess.Flashes) != 1 || sess.Flashes[0].Kind != model.FlashError {
		t.Errorf("expected one error flash, got %v", sess.Flashes)
	}
}

func TestDelete_OwnerCascades(t *testing.T) {
	svc := &mockListingService{
		authorizeFunc: func(ctx context.Context, id, userID string) (*model.Listing, error) {
			return &model.Listing{ID: id, Author: userID, Reviews: []string{"r1", "r2"}}, nil
		},
	}
	h := newHarness(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/listings/abc123?_method=DELETE", nil)
	req.AddCookie(h.signIn("user-1"))

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/listings" {
		t.Errorf("expected redirect to /listings, got %q", got)
	}
	if svc.deleted != 1 {
		t.Errorf("expected one delete call, got %d", svc.deleted)
	}
	sess := h.store.sessions["token-user-1"]
	if len(sess.Flashes) != 1 || sess.Flashes[0].Kind != model.FlashSuccess {
		t.Errorf("expected a success flash, got %v", sess.Flashes)
	}
}

func TestShow_MissingListingRedirects(t *testing.T) {
	h := newHarness(t, &mockListingService{})

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/listings/gone", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/listings" {
		t.Errorf("expected redirect to /listings, got %q", got)
	}
}

func TestShow_NewDispatchesToForm(t *testing.T) {
	h := newHarness(t, &mockListingService{
		getDetailFunc: func(ctx context.Context, id string) (*model.ListingDetail, error) {
			t.Fatalf("detail lookup must not run for the reserved id, got %q", id)
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/listings/new", nil)
	req.AddCookie(h.signIn("user-1"))

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "form") {
		t.Error("expected the creation form to render")
	}
}
