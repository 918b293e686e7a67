package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"reference",
			"guest",
			"resort_id",
			"rate_plan_id",
			"check_in",
			"check_out",
			"nights",
			"total",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"reference": bson.M{
				"bsonType":  "string",
				"minLength": 8,
				"maxLength": 32,
			},

			"guest": bson.M{
				"bsonType": "object",
				"required": []string{"name", "email"},
				"properties": bson.M{
					"name":    bson.M{"bsonType": "string"},
					"email":   bson.M{"bsonType": "string"},
					"phone":   bson.M{"bsonType": "string"},
					"country": bson.M{"bsonType": "string", "minLength": 2, "maxLength": 2},
				},
			},

			"resort_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"rate_plan_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"check_in": bson.M{
				"bsonType": "date",
			},

			"check_out": bson.M{
				"bsonType": "date",
			},

			"nights": bson.M{
				"bsonType": "int",
				"minimum":  1,
			},

			"adults": bson.M{
				"bsonType": "int",
				"minimum":  1,
			},

			"children": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"subtotal": bson.M{"bsonType": "decimal"},
			"total":    bson.M{"bsonType": "decimal"},

			"items": bson.M{
				"bsonType": "array",
				"items":    bson.M{"bsonType": "object"},
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"confirmed",
					"cancelled",
					"completed",
					"no_show",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
