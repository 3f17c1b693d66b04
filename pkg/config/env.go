package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvSessionTTL        = "SESSION_TTL"
	EnvSessionCookieName = "SESSION_COOKIE_NAME"
	EnvCookieSecure      = "COOKIE_SECURE"

	EnvGeocoderBaseURL = "GEOCODER_BASE_URL"
	EnvGeocoderToken   = "GEOCODER_TOKEN"

	EnvLoginRateLimitRequests = "LOGIN_RATE_LIMIT_REQUESTS"
	EnvLoginRateLimitWindow   = "LOGIN_RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"
	EnvMaxUploadSize  = "MAX_UPLOAD_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
