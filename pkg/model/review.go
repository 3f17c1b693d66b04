package model

import "time"

type Review struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	Body      string    `json:"body" bson:"body"`
	Rating    int       `json:"rating" bson:"rating"`
	Author    string    `json:"author" bson:"author"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type ReviewForm struct {
	Body   string `validate:"required,min=1,max=1000"`
	Rating int    `validate:"required,min=1,max=5"`
}

// ReviewDetail is a review with its author resolved for rendering.
type ReviewDetail struct {
	Review Review
	Author User
}
