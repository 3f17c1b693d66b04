package model

import "time"

// Image is one stored upload: the public URL it is served from and the
// storage key used to delete it from the image store.
type Image struct {
	URL      string `json:"url" bson:"url"`
	Filename string `json:"filename" bson:"filename"`
}

// Geometry is a GeoJSON point, coordinates ordered longitude, latitude.
type Geometry struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

type Listing struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Price       float64   `json:"price" bson:"price"`
	Location    string    `json:"location" bson:"location"`
	Images      []Image   `json:"images,omitempty" bson:"images"`
	Geometry    *Geometry `json:"geometry,omitempty" bson:"geometry,omitempty"`
	Author      string    `json:"author" bson:"author"`
	Reviews     []string  `json:"reviews,omitempty" bson:"reviews"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// ListingForm is the validated shape of an inbound create/update payload.
// Identifier and author are never bound from the client. Price is a pointer
// so an absent field is distinguishable from a legitimate free listing.
type ListingForm struct {
	Title       string   `validate:"required,min=2,max=100"`
	Description string   `validate:"required,min=2,max=2000"`
	Price       *float64 `validate:"required,gte=0"`
	Location    string   `validate:"required,min=2,max=200"`
}

// ListingDetail is a listing with its author and reviews resolved,
// as rendered by the show view.
type ListingDetail struct {
	Listing Listing
	Author  User
	Reviews []ReviewDetail
}
