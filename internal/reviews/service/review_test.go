package service

import (
	"context"
	"testing"

	mongodriver "go.mongodb.org/mongo-driver/mongo"

	listingerrors "campsite/internal/listings/errors"
	reviewerrors "campsite/internal/reviews/errors"
	"campsite/internal/reviews/validator"
	"campsite/pkg/config"
	"campsite/pkg/db/mongo"
	apperrors "campsite/pkg/errors"
	"campsite/pkg/logger"
	"campsite/pkg/model"
)

type mockReviewRepository struct {
	creates      int
	deletes      []string
	findByIDFunc func(ctx context.Context, id string) (*model.Review, error)
}

func (m *mockReviewRepository) Create(ctx context.Context, review *model.Review) error {
	m.creates++
	review.ID = "review-1"
	return nil
}

func (m *mockReviewRepository) FindByID(ctx context.Context, id string) (*model.Review, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, reviewerrors.ErrNotFound
}

func (m *mockReviewRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Review, error) {
	return nil, nil
}

func (m *mockReviewRepository) Delete(ctx context.Context, id string) error {
	m.deletes = append(m.deletes, id)
	return nil
}

func (m *mockReviewRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	m.deletes = append(m.deletes, ids...)
	return nil
}

type mockListingRepository struct {
	pushes       []string
	pulls        []string
	findByIDFunc func(ctx context.Context, id string) (*model.Listing, error)
}

func (m *mockListingRepository) Create(ctx context.Context, listing *model.Listing) error { return nil }

func (m *mockListingRepository) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Listing{ID: id}, nil
}

func (m *mockListingRepository) FindAll(ctx context.Context) ([]model.Listing, error) {
	return nil, nil
}

func (m *mockListingRepository) Update(ctx context.Context, listing *model.Listing) error { return nil }

func (m *mockListingRepository) Delete(ctx context.Context, id string) error { return nil }

func (m *mockListingRepository) PushReview(ctx context.Context, listingID, reviewID string) error {
	m.pushes = append(m.pushes, reviewID)
	return nil
}

func (m *mockListingRepository) PullReview(ctx context.Context, listingID, reviewID string) error {
	m.pulls = append(m.pulls, reviewID)
	return nil
}

func (m *mockListingRepository) PullImages(ctx context.Context, listingID string, filenames []string) error {
	return nil
}

// mockTransactionManager runs the body directly; the transactional ordering
// is what the tests assert on.
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

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
	}
}

func newTestService(reviews *mockReviewRepository, listings *mockListingRepository, tx *mockTransactionManager, pub *mockPublisher) ReviewService {
	cfg := testConfig()
	return NewReviewService(reviews, listings, validator.NewReviewValidator(cfg.Log), tx, pub, cfg)
}

func TestCreate_OneInsertOnePush(t *testing.T) {
	reviews := &mockReviewRepository{}
	listings := &mockListingRepository{}
	tx := &mockTransactionManager{}
	pub := &mockPublisher{}
	svc := newTestService(reviews, listings, tx, pub)

	review, err := svc.Create(context.Background(), "listing-1", "user-1", &model.ReviewForm{
		Body:   "Great spot by the river.",
		Rating: 5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tx.executions != 1 {
		t.Errorf("expected 1 transaction, got %d", tx.executions)
	}
	if reviews.creates != 1 {
		t.Errorf("expected 1 review insert, got %d", reviews.creates)
	}
	if len(listings.pushes) != 1 || listings.pushes[0] != review.ID {
		t.Errorf("expected review id %q pushed once, got %v", review.ID, listings.pushes)
	}
	if review.Author != "user-1" {
		t.Errorf("expected author user-1, got %q", review.Author)
	}
	if len(pub.events) != 1 || pub.events[0] != "review.created" {
		t.Errorf("expected one review.created event, got %v", pub.events)
	}
}

func TestCreate_InvalidRatingShortCircuits(t *testing.T) {
	reviews := &mockReviewRepository{}
	listings := &mockListingRepository{}
	tx := &mockTransactionManager{}
	svc := newTestService(reviews, listings, tx, &mockPublisher{})

	_, err := svc.Create(context.Background(), "listing-1", "user-1", &model.ReviewForm{
		Body:   "fine",
		Rating: 9,
	})
	if !apperrors.IsCode(err, apperrors.CodeInvalidPayload) {
		t.Fatalf("expected invalid payload error, got %v", err)
	}
	if tx.executions != 0 || reviews.creates != 0 {
		t.Error("no writes expected when validation fails")
	}
}

func TestCreate_MissingListing(t *testing.T) {
	listings := &mockListingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Listing, error) {
			return nil, listingerrors.ErrNotFound
		},
	}
	svc := newTestService(&mockReviewRepository{}, listings, &mockTransactionManager{}, &mockPublisher{})

	_, err := svc.Create(context.Background(), "gone", "user-1", &model.ReviewForm{
		Body:   "nice",
		Rating: 3,
	})
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestAuthorize_NotAuthor(t *testing.T) {
	reviews := &mockReviewRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Review, error) {
			return &model.Review{ID: id, Author: "user-1"}, nil
		},
	}
	svc := newTestService(reviews, &mockListingRepository{}, &mockTransactionManager{}, &mockPublisher{})

	_, err := svc.Authorize(context.Background(), "review-1", "user-2")
	if !apperrors.IsCode(err, apperrors.CodeNotAuthorized) {
		t.Fatalf("expected not authorized error, got %v", err)
	}
}

func TestDelete_PullAndDeleteInOneTransaction(t *testing.T) {
	reviews := &mockReviewRepository{}
	listings := &mockListingRepository{}
	tx := &mockTransactionManager{}
	pub := &mockPublisher{}
	svc := newTestService(reviews, listings, tx, pub)

	err := svc.Delete(context.Background(), "listing-1", &model.Review{ID: "review-1", Author: "user-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tx.executions != 1 {
		t.Errorf("expected 1 transaction, got %d", tx.executions)
	}
	if len(listings.pulls) != 1 || listings.pulls[0] != "review-1" {
		t.Errorf("expected review-1 pulled from listing, got %v", listings.pulls)
	}
	if len(reviews.deletes) != 1 || reviews.deletes[0] != "review-1" {
		t.Errorf("expected review-1 deleted, got %v", reviews.deletes)
	}
	if len(pub.events) != 1 || pub.events[0] != "review.deleted" {
		t.Errorf("expected one review.deleted event, got %v", pub.events)
	}
}
