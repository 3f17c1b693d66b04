package main

import (
	"context"

	"campsite/internal/events"
	"campsite/internal/geocode"
	"campsite/internal/images"
	listinghandler "campsite/internal/listings/handler"
	listingrepo "campsite/internal/listings/repository"
	listingservice "campsite/internal/listings/service"
	listingvalidator "campsite/internal/listings/validator"
	reviewhandler "campsite/internal/reviews/handler"
	reviewrepo "campsite/internal/reviews/repository"
	reviewservice "campsite/internal/reviews/service"
	reviewvalidator "campsite/internal/reviews/validator"
	userhandler "campsite/internal/users/handler"
	userrepo "campsite/internal/users/repository"
	userservice "campsite/internal/users/service"
	uservalidator "campsite/internal/users/validator"
	"campsite/pkg/app"
	"campsite/pkg/config"
	dbmongo "campsite/pkg/db/mongo"
	kafkaconfig "campsite/pkg/kafka/config"
	"campsite/pkg/model"
	"campsite/pkg/session"
	"campsite/pkg/web"
)

const ServiceName = "campsite"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)

	users := userservice.NewUserService(
		userrepo.NewMongoUserRepository(cfg),
		uservalidator.NewUserValidator(cfg.Log),
		cfg,
	)

	sessions := session.NewManager(
		session.NewMongoStore(db, cfg.WriteTimeout),
		cfg.SessionCookieName,
		cfg.SessionTTL,
		cfg.CookieSecure,
		func(ctx context.Context, id string) (*model.User, error) {
			return users.GetByID(ctx, id)
		},
		cfg.Log,
	)

	renderer, err := web.NewRenderer(sessions, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to load templates", "error", err)
	}

	publisher, closeEvents := events.NewPublisher(kafkaconfig.Load(), cfg.Log)

	tx := dbmongo.NewTransactionManager(cfg.Client.Mongo)
	storage := images.NewGridFSStorage(db)
	geocoder := geocode.NewClient(cfg.GeocoderBaseURL, cfg.GeocoderToken)

	listingRepo := listingrepo.NewMongoListingRepository(cfg)
	reviewRepo := reviewrepo.NewMongoReviewRepository(cfg)

	listings := listingservice.NewListingService(
		listingRepo,
		reviewRepo,
		users,
		listingvalidator.NewListingValidator(cfg.Log),
		geocoder,
		storage,
		tx,
		publisher,
		cfg,
	)

	reviews := reviewservice.NewReviewService(
		reviewRepo,
		listingRepo,
		reviewvalidator.NewReviewValidator(cfg.Log),
		tx,
		publisher,
		cfg,
	)

	application := app.NewApplication()
	application.SetApp(cfg, sessions, renderer, closeEvents,
		listinghandler.NewListingHandler(listings, sessions, renderer, cfg),
		reviewhandler.NewReviewHandler(reviews, sessions, renderer, cfg.Log),
		userhandler.NewUserHandler(users, sessions, renderer, cfg.Log),
		images.NewHandler(storage, renderer, cfg.Log),
	)
	application.Run()
}
