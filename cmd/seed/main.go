package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"

	listingrepo "campsite/internal/listings/repository"
	reviewrepo "campsite/internal/reviews/repository"
	userrepo "campsite/internal/users/repository"
	"campsite/pkg/config"
	"campsite/pkg/model"
)

const JobName = "seed"

var seedPlaces = []struct {
	City string
	Lng  float64
	Lat  float64
}{
	{"Yosemite Valley, California", -119.5383, 37.8651},
	{"Moab, Utah", -109.5498, 38.5733},
	{"Bend, Oregon", -121.3153, 44.0582},
	{"Asheville, North Carolina", -82.5515, 35.5951},
	{"Sedona, Arizona", -111.7610, 34.8697},
	{"Lake Placid, New York", -73.9799, 44.2795},
}

var seedTitles = []string{
	"Forest Hideaway",
	"Riverside Pines",
	"Dusty Canyon Camp",
	"Maple Hollow",
	"Silent Ridge",
	"Cascade Meadow",
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()
	cfg.Log.Info("Starting seed job")

	users := userrepo.NewMongoUserRepository(cfg)
	listings := listingrepo.NewMongoListingRepository(cfg)

	// Seeding replaces the catalogue: wipe listings and their reviews so
	// repeated runs don't pile up duplicates. Users are kept.
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	for _, name := range []string{listingrepo.CollectionName, reviewrepo.CollectionName} {
		if _, err := db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			cfg.Log.Fatal("Failed to clear collection", "collection", name, "error", err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("changeme123"), bcrypt.DefaultCost)
	if err != nil {
		cfg.Log.Fatal("Failed to hash seed password", "error", err)
	}

	author := &model.User{
		Username:     "ranger",
		PasswordHash: string(hash),
	}
	if err := users.Create(ctx, author); err != nil {
		// Re-running the seed against an existing database is fine; reuse
		// the existing account.
		existing, findErr := users.FindByUsername(ctx, author.Username)
		if findErr != nil {
			cfg.Log.Fatal("Failed to create seed user", "error", err)
		}
		author = existing
	}

	for i, place := range seedPlaces {
		listing := &model.Listing{
			Title:       seedTitles[i%len(seedTitles)],
			Description: "A quiet spot with room for tents, a fire ring, and easy trail access.",
			Price:       float64(10 + rand.Intn(30)),
			Location:    place.City,
			Geometry: &model.Geometry{
				Type:        "Point",
				Coordinates: []float64{place.Lng, place.Lat},
			},
			Author: author.ID,
		}
		if err := listings.Create(ctx, listing); err != nil {
			cfg.Log.Fatal("Failed to create seed listing", "title", listing.Title, "error", err)
		}
		cfg.Log.Info("Seeded listing", "id", listing.ID, "title", listing.Title)
	}

	fmt.Println("Seeding completed successfully.")
}
