package service

import (
	"context"
	"errors"

	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"campsite/internal/events"
	"campsite/internal/geocode"
	"campsite/internal/images"
	listingerrors "campsite/internal/listings/errors"
	"campsite/internal/listings/repository"
	"campsite/internal/listings/validator"
	reviewrepo "campsite/internal/reviews/repository"
	userservice "campsite/internal/users/service"
	"campsite/pkg/config"
	"campsite/pkg/db/mongo"
	apperrors "campsite/pkg/errors"
	"campsite/pkg/model"
	"campsite/pkg/sanitizer"
)

type ListingService interface {
	GetAll(ctx context.Context) ([]model.Listing, error)
	GetDetail(ctx context.Context, id string) (*model.ListingDetail, error)
	Create(ctx context.Context, authorID string, form *model.ListingForm, uploads []images.Upload) (*model.Listing, error)
	Authorize(ctx context.Context, id, userID string) (*model.Listing, error)
	Update(ctx context.Context, listing *model.Listing, form *model.ListingForm, uploads []images.Upload, deleteImages []string) (*model.Listing, error)
	Delete(ctx context.Context, listing *model.Listing) error
}

type listingService struct {
	repo      repository.ListingRepository
	reviews   reviewrepo.ReviewRepository
	users     userservice.UserService
	validator *validator.ListingValidator
	geocoder  geocode.Geocoder
	storage   images.Storage
	tx        mongo.TransactionManager
	events    events.Publisher
	cfg       *config.Config
}

func NewListingService(
	repo repository.ListingRepository,
	reviews reviewrepo.ReviewRepository,
	users userservice.UserService,
	validator *validator.ListingValidator,
	geocoder geocode.Geocoder,
	storage images.Storage,
	tx mongo.TransactionManager,
	publisher events.Publisher,
	cfg *config.Config,
) ListingService {
	return &listingService{
		repo:      repo,
		reviews:   reviews,
		users:     users,
		validator: validator,
		geocoder:  geocoder,
		storage:   storage,
		tx:        tx,
		events:    publisher,
		cfg:       cfg,
	}
}

func (s *listingService) GetAll(ctx context.Context) ([]model.Listing, error) {
	listings, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve listings", err)
	}
	return listings, nil
}

// GetDetail loads the listing with its author and each review's author
// resolved, which is everything the detail view renders.
func (s *listingService) GetDetail(ctx context.Context, id string) (*model.ListingDetail, error) {
	listing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviews.FindByIDs(ctx, listing.Reviews)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve reviews", err)
	}

	authorIDs := make([]string, 0, len(reviews)+1)
	authorIDs = append(authorIDs, listing.Author)
	for _, review := range reviews {
		authorIDs = append(authorIDs, review.Author)
	}
	authors, err := s.users.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	detail := &model.ListingDetail{Listing: *listing}
	if author, ok := authors[listing.Author]; ok {
		detail.Author = *author
	}
	for _, review := range reviews {
		rd := model.ReviewDetail{Review: review}
		if author, ok := authors[review.Author]; ok {
			rd.Author = *author
		}
		detail.Reviews = append(detail.Reviews, rd)
	}
	return detail, nil
}

func (s *listingService) Create(ctx context.Context, authorID string, form *model.ListingForm, uploads []images.Upload) (*model.Listing, error) {
	normalize(form)

	if err := s.validator.Validate(form); err != nil {
		s.cfg.Log.Warn("Listing validation failed", "error", err)
		return nil, apperrors.InvalidPayload(err.Error(), nil)
	}

	geometry, err := s.geocoder.Forward(ctx, form.Location)
	if err != nil {
		return nil, err
	}

	stored, err := s.storeUploads(ctx, uploads)
	if err != nil {
		return nil, err
	}

	listing := &model.Listing{
		Title:       form.Title,
		Description: form.Description,
		Price:       *form.Price,
		Location:    form.Location,
		Images:      stored,
		Geometry:    geometry,
		Author:      authorID,
	}

	if err := s.repo.Create(ctx, listing); err != nil {
		s.discardImages(ctx, stored)
		s.cfg.Log.Error("Failed to create listing", "error", err)
		return nil, apperrors.Internal("Failed to create listing", err)
	}

	s.cfg.Log.Info("Listing created", "id", listing.ID, "author", authorID)
	s.events.Publish(ctx, events.ListingCreated, listing.ID, map[string]any{
		"title":    listing.Title,
		"location": listing.Location,
		"author":   authorID,
	})
	return listing, nil
}

// Authorize returns the listing only when the given user owns it.
func (s *listingService) Authorize(ctx context.Context, id, userID string) (*model.Listing, error) {
	listing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if listing.Author != userID {
		return nil, apperrors.NotAuthorized("You do not have permission to do that!")
	}
	return listing, nil
}

// Update merges the validated fields onto the listing. The location is only
// re-geocoded when it actually changed. New uploads are appended; storage
// keys listed in deleteImages are pulled from the document and removed from
// the image store best-effort.
func (s *listingService) Update(ctx context.Context, listing *model.Listing, form *model.ListingForm, uploads []images.Upload, deleteImages []string) (*model.Listing, error) {
	normalize(form)

	if err := s.validator.Validate(form); err != nil {
		s.cfg.Log.Warn("Listing validation failed", "id", listing.ID, "error", err)
		return nil, apperrors.InvalidPayload(err.Error(), nil)
	}

	if form.Location != listing.Location {
		geometry, err := s.geocoder.Forward(ctx, form.Location)
		if err != nil {
			return nil, err
		}
		listing.Geometry = geometry
	}

	stored, err := s.storeUploads(ctx, uploads)
	if err != nil {
		return nil, err
	}

	listing.Title = form.Title
	listing.Description = form.Description
	listing.Price = *form.Price
	listing.Location = form.Location
	listing.Images = append(listing.Images, stored...)

	if err := s.repo.Update(ctx, listing); err != nil {
		s.discardImages(ctx, stored)
		if errors.Is(err, listingerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Listing", listing.ID)
		}
		s.cfg.Log.Error("Failed to update listing", "id", listing.ID, "error", err)
		return nil, apperrors.Internal("Failed to update listing", err)
	}

	if len(deleteImages) > 0 {
		if err := s.repo.PullImages(ctx, listing.ID, deleteImages); err != nil {
			s.cfg.Log.Error("Failed to detach listing images", "id", listing.ID, "error", err)
		} else {
			s.removeImages(ctx, listing, deleteImages)
		}
	}

	s.cfg.Log.Info("Listing updated", "id", listing.ID)
	s.events.Publish(ctx, events.ListingUpdated, listing.ID, map[string]any{
		"title":    listing.Title,
		"location": listing.Location,
	})
	return listing, nil
}

// Delete removes the listing and every review it references in one
// transaction. Stored images are cleaned up best-effort after the commit;
// an orphaned blob is preferable to a half-deleted listing.
func (s *listingService) Delete(ctx context.Context, listing *model.Listing) error {
	err := s.tx.ExecuteTransaction(ctx, func(sessCtx mongodriver.SessionContext) error {
		if err := s.reviews.DeleteByIDs(sessCtx, listing.Reviews); err != nil {
			return err
		}
		return s.repo.Delete(sessCtx, listing.ID)
	})
	if err != nil {
		s.cfg.Log.Error("Failed to delete listing", "id", listing.ID, "error", err)
		return apperrors.Internal("Failed to delete listing", err)
	}

	s.discardImages(ctx, listing.Images)

	s.cfg.Log.Info("Listing deleted", "id", listing.ID, "reviews", len(listing.Reviews))
	s.events.Publish(ctx, events.ListingDeleted, listing.ID, map[string]any{
		"reviews_deleted": len(listing.Reviews),
	})
	return nil
}

func (s *listingService) find(ctx context.Context, id string) (*model.Listing, error) {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, listingerrors.ErrNotFound) || errors.Is(err, listingerrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Listing", id)
		}
		return nil, apperrors.Internal("Failed to retrieve listing", err)
	}
	return listing, nil
}

func (s *listingService) storeUploads(ctx context.Context, uploads []images.Upload) ([]model.Image, error) {
	var stored []model.Image
	for _, upload := range uploads {
		img, err := s.storage.Store(ctx, upload.File, upload.Name)
		if err != nil {
			s.discardImages(ctx, stored)
			return nil, apperrors.Internal("Failed to store image", err)
		}
		stored = append(stored, img)
	}
	return stored, nil
}

// removeImages drops the named keys from the in-memory image list and the
// image store. Store failures are logged, never surfaced.
func (s *listingService) removeImages(ctx context.Context, listing *model.Listing, filenames []string) {
	doomed := make(map[string]bool, len(filenames))
	for _, name := range filenames {
		doomed[name] = true
	}

	kept := listing.Images[:0]
	for _, img := range listing.Images {
		if doomed[img.Filename] {
			if err := s.storage.Remove(ctx, img.Filename); err != nil {
				s.cfg.Log.Error("Failed to remove image", "filename", img.Filename, "error", err)
			}
			continue
		}
		kept = append(kept, img)
	}
	listing.Images = kept
}

func (s *listingService) discardImages(ctx context.Context, imgs []model.Image) {
	for _, img := range imgs {
		if err := s.storage.Remove(ctx, img.Filename); err != nil {
			s.cfg.Log.Error("Failed to remove image", "filename", img.Filename, "error", err)
		}
	}
}

func normalize(form *model.ListingForm) {
	form.Title = sanitizer.NormalizeTitle(form.Title)
	form.Description = sanitizer.TrimAndNormalize(form.Description)
	form.Location = sanitizer.NormalizeLocation(form.Location)
}
