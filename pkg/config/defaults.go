package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "campsite"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "3000"

	DefaultSessionTTL        = 7 * 24 * time.Hour
	DefaultSessionCookieName = "session"

	DefaultGeocoderBaseURL = "https://api.mapbox.com"

	DefaultLoginRateLimitRequests = 10
	DefaultLoginRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 20 * 1024 * 1024 // uploads ride the request body
	DefaultMaxUploadSize  = 5 * 1024 * 1024  // per stored image

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100
)
