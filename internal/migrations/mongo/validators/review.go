package validators

import "go.mongodb.org/mongo-driver/bson"

var ReviewValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"body",
			"rating",
			"author",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"body": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 1000,
			},

			"rating": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  5,
			},

			"author": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
