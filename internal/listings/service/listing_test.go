package service

import (
	"context"
	"io"
	"strings"
	"testing"

	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"campsite/internal/images"
	listingerrors "campsite/internal/listings/errors"
	"campsite/internal/listings/validator"
	"campsite/pkg/config"
	"campsite/pkg/db/mongo"
	apperrors "campsite/pkg/errors"
	"campsite/pkg/logger"
	"campsite/pkg/model"
)

type mockListingRepository struct {
	created      *model.Listing
	updated      *model.Listing
	deleted      []string
	pulledImages []string
	findByIDFunc func(ctx context.Context, id string) (*model.Listing, error)
	findAllFunc  func(ctx context.Context) ([]model.Listing, error)
}

func (m *mockListingRepository) Create(ctx context.Context, listing *model.Listing) error {
	listing.ID = "listing-1"
	m.created = listing
	return nil
}

func (m *mockListingRepository) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, listingerrors.ErrNotFound
}

func (m *mockListingRepository) FindAll(ctx context.Context) ([]model.Listing, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx)
	}
	return nil, nil
}

func (m *mockListingRepository) Update(ctx context.Context, listing *model.Listing) error {
	m.updated = listing
	return nil
}

func (m *mockListingRepository) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockListingRepository) PushReview(ctx context.Context, listingID, reviewID string) error {
	return nil
}

func (m *mockListingRepository) PullReview(ctx context.Context, listingID, reviewID string) error {
	return nil
}

func (m *mockListingRepository) PullImages(ctx context.Context, listingID string, filenames []string) error {
	m.pulledImages = append(m.pulledImages, filenames...)
	return nil
}

type mockReviewRepository struct {
	deletedIDs   []string
	findByIDsRet []model.Review
}

func (m *mockReviewRepository) Create(ctx context.Context, review *model.Review) error { return nil }

func (m *mockReviewRepository) FindByID(ctx context.Context, id string) (*model.Review, error) {
	return nil, nil
}

func (m *mockReviewRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Review, error) {
	return m.findByIDsRet, nil
}

func (m *mockReviewRepository) Delete(ctx context.Context, id string) error { return nil }

func (m *mockReviewRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	m.deletedIDs = append(m.deletedIDs, ids...)
	return nil
}

type mockUserService struct {
	byIDs map[string]*model.User
}

func (m *mockUserService) Register(ctx context.Context, creds *model.Credentials) (*model.User, error) {
	return nil, nil
}

func (m *mockUserService) Authenticate(ctx context.Context, creds *model.Credentials) (*model.User, error) {
	return nil, nil
}

func (m *mockUserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if user, ok := m.byIDs[id]; ok {
		return user, nil
	}
	return nil, apperrors.NotFoundWithID("User", id)
}

func (m *mockUserService) GetByIDs(ctx context.Context, ids []string) (map[string]*model.User, error) {
	out := map[string]*model.User{}
	for _, id := range ids {
		if user, ok := m.byIDs[id]; ok {
			out[id] = user
		}
	}
	return out, nil
}

type mockGeocoder struct {
	calls     int
	lastQuery string
}

func (m *mockGeocoder) Forward(ctx context.Context, location string) (*model.Geometry, error) {
	m.calls++
	m.lastQuery = location
	return &model.Geometry{Type: "Point", Coordinates: []float64{-121.3153, 44.0582}}, nil
}

type mockStorage struct {
	stored  []string
	removed []string
}

func (m *mockStorage) Store(ctx context.Context, file io.Reader, originalName string) (model.Image, error) {
	m.stored = append(m.stored, originalName)
	key := "key-" + originalName
	return model.Image{URL: "/images/" + key, Filename: key}, nil
}

func (m *mockStorage) Remove(ctx context.Context, filename string) error {
	m.removed = append(m.removed, filename)
	return nil
}

func (m *mockStorage) Open(ctx context.Context, filename string) ([]byte, string, error) {
	return nil, "", nil
}

type mockTransactionManager struct {
	executions int
}

func (m *mockTransactionManager) ExecuteTransaction(ctx context.Context, fn mongo.TransactionFunc) error {
	m.executions++
	return fn(mongodriver.SessionContext(nil))
}

type mockPublisher struct {
	events []string
}

func (m *mockPublisher) Publish(ctx context.Context, eventType, entityID string, payload any) {
	m.events = append(m.events, eventType)
}

type fixture struct {
	repo     *mockListingRepository
	reviews  *mockReviewRepository
	users    *mockUserService
	geocoder *mockGeocoder
	storage  *mockStorage
	tx       *mockTransactionManager
	pub      *mockPublisher
	svc      ListingService
}

func newFixture() *fixture {
	cfg := &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
	}

	f := &fixture{
		repo:     &mockListingRepository{},
		reviews:  &mockReviewRepository{},
		users:    &mockUserService{byIDs: map[string]*model.User{}},
		geocoder: &mockGeocoder{},
		storage:  &mockStorage{},
		tx:       &mockTransactionManager{},
		pub:      &mockPublisher{},
	}
	f.svc = NewListingService(
		f.repo, f.reviews, f.users,
		validator.NewListingValidator(cfg.Log),
		f.geocoder, f.storage, f.tx, f.pub, cfg,
	)
	return f
}

func priceOf(v float64) *float64 {
	return &v
}

func validForm() *model.ListingForm {
	return &model.ListingForm{
		Title:       "Forest Hideaway",
		Description: "Room for tents and a fire ring.",
		Price:       priceOf(25),
		Location:    "Bend, Oregon",
	}
}

func TestCreate_ValidationShortCircuits(t *testing.T) {
	f := newFixture()

	form := validForm()
	form.Price = priceOf(-5)
	_, err := f.svc.Create(context.Background(), "user-1", form, nil)
	if !apperrors.IsCode(err, apperrors.CodeInvalidPayload) {
		t.Fatalf("expected invalid payload error, got %v", err)
	}
	if f.geocoder.calls != 0 {
		t.Error("geocoder should not be called when validation fails")
	}
	if f.repo.created != nil {
		t.Error("nothing should be persisted when validation fails")
	}
}

func TestCreate_MissingPriceShortCircuits(t *testing.T) {
	f := newFixture()

	form := validForm()
	form.Price = nil
	_, err := f.svc.Create(context.Background(), "user-1", form, nil)
	if !apperrors.IsCode(err, apperrors.CodeInvalidPayload) {
		t.Fatalf("expected invalid payload error for an absent price, got %v", err)
	}
	if f.repo.created != nil {
		t.Error("nothing should be persisted when the price is absent")
	}
}

func TestCreate_GeocodesAndSetsAuthor(t *testing.T) {
	f := newFixture()

	uploads := []images.Upload{
		{File: strings.NewReader("fake"), Name: "tent.jpg"},
	}
	listing, err := f.svc.Create(context.Background(), "user-1", validForm(), uploads)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.geocoder.calls != 1 || f.geocoder.lastQuery != "Bend, Oregon" {
		t.Errorf("expected one geocode of the location, got %d (%q)", f.geocoder.calls, f.geocoder.lastQuery)
	}
	if listing.Geometry == nil || listing.Geometry.Type != "Point" {
		t.Fatalf("expected a point geometry, got %+v", listing.Geometry)
	}
	if listing.Author != "user-1" {
		t.Errorf("expected author user-1, got %q", listing.Author)
	}
	if len(listing.Images) != 1 || listing.Images[0].Filename != "key-tent.jpg" {
		t.Errorf("expected stored image attached, got %v", listing.Images)
	}
	if len(f.pub.events) != 1 || f.pub.events[0] != "listing.created" {
		t.Errorf("expected one listing.created event, got %v", f.pub.events)
	}
}

func TestUpdate_SameLocationSkipsGeocode(t *testing.T) {
	f := newFixture()

	existing := &model.Listing{
		ID:       "listing-1",
		Title:    "Old Title",
		Location: "Bend, Oregon",
		Geometry: &model.Geometry{Type: "Point", Coordinates: []float64{-1, 1}},
		Author:   "user-1",
	}

	updated, err := f.svc.Update(context.Background(), existing, validForm(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.geocoder.calls != 0 {
		t.Errorf("expected no geocode for an unchanged location, got %d", f.geocoder.calls)
	}
	if updated.Geometry.Coordinates[0] != -1 {
		t.Error("geometry should be untouched when the location did not change")
	}
	if updated.Title != "Forest Hideaway" {
		t.Errorf("expected merged title, got %q", updated.Title)
	}
	if f.repo.updated == nil {
		t.Fatal("expected the update to be persisted")
	}
}

func TestUpdate_ChangedLocationRegeocodes(t *testing.T) {
	f := newFixture()

	existing := &model.Listing{
		ID:       "listing-1",
		Location: "Moab, Utah",
		Geometry: &model.Geometry{Type: "Point", Coordinates: []float64{-1, 1}},
	}

	updated, err := f.svc.Update(context.Background(), existing, validForm(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.geocoder.calls != 1 {
		t.Fatalf("expected one geocode call, got %d", f.geocoder.calls)
	}
	if updated.Geometry.Coordinates[0] != -121.3153 {
		t.Errorf("expected refreshed geometry, got %v", updated.Geometry.Coordinates)
	}
}

func TestUpdate_DeleteImagesDetachesAndRemoves(t *testing.T) {
	f := newFixture()

	existing := &model.Listing{
		ID:       "listing-1",
		Location: "Bend, Oregon",
		Images: []model.Image{
			{URL: "/images/a", Filename: "a"},
			{URL: "/images/b", Filename: "b"},
		},
	}

	updated, err := f.svc.Update(context.Background(), existing, validForm(), nil, []string{"a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.repo.pulledImages) != 1 || f.repo.pulledImages[0] != "a" {
		t.Errorf("expected image a pulled from the document, got %v", f.repo.pulledImages)
	}
	if len(f.storage.removed) != 1 || f.storage.removed[0] != "a" {
		t.Errorf("expected image a removed from storage, got %v", f.storage.removed)
	}
	if len(updated.Images) != 1 || updated.Images[0].Filename != "b" {
		t.Errorf("expected only image b left, got %v", updated.Images)
	}
}

func TestDelete_CascadesReviewsInOneTransaction(t *testing.T) {
	f := newFixture()

	listing := &model.Listing{
		ID:      "listing-1",
		Reviews: []string{"r1", "r2"},
		Images:  []model.Image{{URL: "/images/a", Filename: "a"}},
	}

	if err := f.svc.Delete(context.Background(), listing); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.tx.executions != 1 {
		t.Errorf("expected 1 transaction, got %d", f.tx.executions)
	}
	if len(f.reviews.deletedIDs) != 2 {
		t.Errorf("expected 2 reviews deleted, got %v", f.reviews.deletedIDs)
	}
	if len(f.repo.deleted) != 1 || f.repo.deleted[0] != "listing-1" {
		t.Errorf("expected listing-1 deleted, got %v", f.repo.deleted)
	}
	if len(f.storage.removed) != 1 || f.storage.removed[0] != "a" {
		t.Errorf("expected image cleanup after commit, got %v", f.storage.removed)
	}
	if len(f.pub.events) != 1 || f.pub.events[0] != "listing.deleted" {
		t.Errorf("expected one listing.deleted event, got %v", f.pub.events)
	}
}

func TestAuthorize(t *testing.T) {
	f := newFixture()
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Listing, error) {
		return &model.Listing{ID: id, Author: "user-1"}, nil
	}

	if _, err := f.svc.Authorize(context.Background(), "listing-1", "user-1"); err != nil {
		t.Fatalf("owner should be authorized, got %v", err)
	}

	_, err := f.svc.Authorize(context.Background(), "listing-1", "user-2")
	if !apperrors.IsCode(err, apperrors.CodeNotAuthorized) {
		t.Fatalf("expected not authorized error, got %v", err)
	}
}

func TestAuthorize_MissingListing(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Authorize(context.Background(), "gone", "user-1")
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestGetDetail_ResolvesAuthors(t *testing.T) {
	f := newFixture()
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Listing, error) {
		return &model.Listing{ID: id, Author: "user-1", Reviews: []string{"r1"}}, nil
	}
	f.reviews.findByIDsRet = []model.Review{{ID: "r1", Body: "Nice", Rating: 4, Author: "user-2"}}
	f.users.byIDs = map[string]*model.User{
		"user-1": {ID: "user-1", Username: "owner"},
		"user-2": {ID: "user-2", Username: "reviewer"},
	}

	detail, err := f.svc.GetDetail(context.Background(), "listing-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Author.Username != "owner" {
		t.Errorf("expected resolved listing author, got %+v", detail.Author)
	}
	if len(detail.Reviews) != 1 || detail.Reviews[0].Author.Username != "reviewer" {
		t.Errorf("expected resolved review author, got %+v", detail.Reviews)
	}
}
