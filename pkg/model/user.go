package model

import "time"

// User carries credential material in PasswordHash. It is bson-only and
// must never reach a rendered view or serialized response.
type User struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty"`
	Username     string    `json:"username" bson:"username"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

type Credentials struct {
	Username string `validate:"required,min=3,max=30"`
	Password string `validate:"required,min=8,max=72"`
}
