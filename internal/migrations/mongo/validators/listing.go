package validators

import "go.mongodb.org/mongo-driver/bson"

var ListingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"title",
			"description",
			"price",
			"location",
			"author",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"title": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"description": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 2000,
			},

			"price": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"location": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},

			"images": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"url", "filename"},
					"properties": bson.M{
						"url":      bson.M{"bsonType": "string"},
						"filename": bson.M{"bsonType": "string"},
					},
				},
			},

			"geometry": bson.M{
				"bsonType": "object",
				"required": []string{"type", "coordinates"},
				"properties": bson.M{
					"type": bson.M{"enum": []string{"Point"}},
					"coordinates": bson.M{
						"bsonType": "array",
						"minItems": 2,
						"maxItems": 2,
						"items":    bson.M{"bsonType": "double"},
					},
				},
			},

			"author": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"reviews": bson.M{
				"bsonType": "array",
				"items":    bson.M{"bsonType": "string"},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
