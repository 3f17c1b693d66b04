package model

import "time"

const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-time user-facing notice, cleared after being read once.
type Flash struct {
	Kind string `bson:"kind"`
	Text string `bson:"text"`
}

// Session is one keyed session document. ExpiresAt carries the TTL index;
// Mongo reaps expired sessions on its own.
type Session struct {
	Token     string    `bson:"_id"`
	UserID    string    `bson:"user_id,omitempty"`
	ReturnTo  string    `bson:"return_to,omitempty"`
	Flashes   []Flash   `bson:"flashes,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}
