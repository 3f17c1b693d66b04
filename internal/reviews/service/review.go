package service

import (
	"context"
	"errors"

	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"campsite/internal/events"
	listingerrors "campsite/internal/listings/errors"
	listingrepo "campsite/internal/listings/repository"
	reviewerrors "campsite/internal/reviews/errors"
	"campsite/internal/reviews/repository"
	"campsite/internal/reviews/validator"
	"campsite/pkg/config"
	"campsite/pkg/db/mongo"
	apperrors "campsite/pkg/errors"
	"campsite/pkg/model"
	"campsite/pkg/sanitizer"
)

type ReviewService interface {
	Create(ctx context.Context, listingID, authorID string, form *model.ReviewForm) (*model.Review, error)
	Authorize(ctx context.Context, id, userID string) (*model.Review, error)
	Delete(ctx context.Context, listingID string, review *model.Review) error
}

type reviewService struct {
	repo      repository.ReviewRepository
	listings  listingrepo.ListingRepository
	validator *validator.ReviewValidator
	tx        mongo.TransactionManager
	events    events.Publisher
	cfg       *config.Config
}

func NewReviewService(
	repo repository.ReviewRepository,
	listings listingrepo.ListingRepository,
	validator *validator.ReviewValidator,
	tx mongo.TransactionManager,
	publisher events.Publisher,
	cfg *config.Config,
) ReviewService {
	return &reviewService{
		repo:      repo,
		listings:  listings,
		validator: validator,
		tx:        tx,
		events:    publisher,
		cfg:       cfg,
	}
}

// Create inserts the review and appends its id to the parent listing in one
// transaction, so the reference list and the review documents never drift.
func (s *reviewService) Create(ctx context.Context, listingID, authorID string, form *model.ReviewForm) (*model.Review, error) {
	form.Body = sanitizer.TrimAndNormalize(form.Body)

	if err := s.validator.Validate(form); err != nil {
		s.cfg.Log.Warn("Review validation failed", "listing_id", listingID, "error", err)
		return nil, apperrors.InvalidPayload(err.Error(), nil)
	}

	if _, err := s.listings.FindByID(ctx, listingID); err != nil {
		if errors.Is(err, listingerrors.ErrNotFound) || errors.Is(err, listingerrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Listing", listingID)
		}
		return nil, apperrors.Internal("Failed to retrieve listing", err)
	}

	review := &model.Review{
		Body:   form.Body,
		Rating: form.Rating,
		Author: authorID,
	}

	err := s.tx.ExecuteTransaction(ctx, func(sessCtx mongodriver.SessionContext) error {
		if err := s.repo.Create(sessCtx, review); err != nil {
			return err
		}
		return s.listings.PushReview(sessCtx, listingID, review.ID)
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create review", "listing_id", listingID, "error", err)
		return nil, apperrors.Internal("Failed to create review", err)
	}

	s.cfg.Log.Info("Review created", "id", review.ID, "listing_id", listingID)
	s.events.Publish(ctx, events.ReviewCreated, review.ID, map[string]any{
		"listing_id": listingID,
		"author":     authorID,
		"rating":     review.Rating,
	})
	return review, nil
}

// Authorize returns the review only when the given user wrote it.
func (s *reviewService) Authorize(ctx context.Context, id, userID string) (*model.Review, error) {
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reviewerrors.ErrNotFound) || errors.Is(err, reviewerrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Review", id)
		}
		return nil, apperrors.Internal("Failed to retrieve review", err)
	}

	if review.Author != userID {
		return nil, apperrors.NotAuthorized("You do not have permission to do that!")
	}
	return review, nil
}

// Delete removes the review and its reference on the parent listing in one
// transaction.
func (s *reviewService) Delete(ctx context.Context, listingID string, review *model.Review) error {
	err := s.tx.ExecuteTransaction(ctx, func(sessCtx mongodriver.SessionContext) error {
		if err := s.listings.PullReview(sessCtx, listingID, review.ID); err != nil {
			return err
		}
		return s.repo.Delete(sessCtx, review.ID)
	})
	if err != nil {
		s.cfg.Log.Error("Failed to delete review", "id", review.ID, "listing_id", listingID, "error", err)
		return apperrors.Internal("Failed to delete review", err)
	}

	s.cfg.Log.Info("Review deleted", "id", review.ID, "listing_id", listingID)
	s.events.Publish(ctx, events.ReviewDeleted, review.ID, map[string]any{
		"listing_id": listingID,
	})
	return nil
}
