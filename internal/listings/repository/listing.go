package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	listingerrors "campsite/internal/listings/errors"
	"campsite/pkg/config"
	"campsite/pkg/model"
)

const CollectionName = "Listings"

type ListingRepository interface {
	Create(ctx context.Context, listing *model.Listing) error
	FindByID(ctx context.Context, id string) (*model.Listing, error)
	FindAll(ctx context.Context) ([]model.Listing, error)
	Update(ctx context.Context, listing *model.Listing) error
	Delete(ctx context.Context, id string) error
	PushReview(ctx context.Context, listingID, reviewID string) error
	PullReview(ctx context.Context, listingID, reviewID string) error
	PullImages(ctx context.Context, listingID string, filenames []string) error
}

type mongoListingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoListingRepository(cfg *config.Config) ListingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoListingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoListingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoListingRepository) Create(ctx context.Context, listing *model.Listing) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	listing.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, listing)
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		listing.ID = oid.Hex()
	}
	return nil
}

func (r *mongoListingRepository) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", listingerrors.ErrInvalidID, id)
	}

	var listing model.Listing
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", listingerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find listing: %w", err)
	}

	return &listing, nil
}

// FindAll returns the newest listings for the index view, capped at
// config.DefaultPaginationLimit so one unbounded query can't render an
// arbitrarily large page.
func (r *mongoListingRepository) FindAll(ctx context.Context) ([]model.Listing, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(config.DefaultPaginationLimit)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer cursor.Close(ctx)

	var listings []model.Listing
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}
	return listings, nil
}

// Update persists the mutable fields. Author, reviews and creation time are
// owned by other operations and never touched here.
func (r *mongoListingRepository) Update(ctx context.Context, listing *model.Listing) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(listing.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", listingerrors.ErrInvalidID, listing.ID)
	}

	update := bson.M{"$set": bson.M{
		"title":       listing.Title,
		"description": listing.Description,
		"price":       listing.Price,
		"location":    listing.Location,
		"images":      listing.Images,
		"geometry":    listing.Geometry,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", listingerrors.ErrNotFound, listing.ID)
	}
	return nil
}

func (r *mongoListingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", listingerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", listingerrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoListingRepository) PushReview(ctx context.Context, listingID, reviewID string) error {
	return r.updateReviews(ctx, listingID, bson.M{"$push": bson.M{"reviews": reviewID}})
}

func (r *mongoListingRepository) PullReview(ctx context.Context, listingID, reviewID string) error {
	return r.updateReviews(ctx, listingID, bson.M{"$pull": bson.M{"reviews": reviewID}})
}

func (r *mongoListingRepository) updateReviews(ctx context.Context, listingID string, update bson.M) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(listingID)
	if err != nil {
		return fmt.Errorf("%w: %s", listingerrors.ErrInvalidID, listingID)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update listing reviews: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", listingerrors.ErrNotFound, listingID)
	}
	return nil
}

// PullImages removes the named storage keys from the listing's image list.
func (r *mongoListingRepository) PullImages(ctx context.Context, listingID string, filenames []string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(listingID)
	if err != nil {
		return fmt.Errorf("%w: %s", listingerrors.ErrInvalidID, listingID)
	}

	update := bson.M{"$pull": bson.M{"images": bson.M{"filename": bson.M{"$in": filenames}}}}
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update); err != nil {
		return fmt.Errorf("failed to remove listing images: %w", err)
	}
	return nil
}
