package validators

import "go.mongodb.org/mongo-driver/bson"

var ResortValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "currency", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "objectId"},
			"name":       bson.M{"bsonType": "string"},
			"currency":   bson.M{"bsonType": "string", "minLength": 3, "maxLength": 3},
			"tax_rules":  bson.M{"bsonType": "object"},
			"active":     bson.M{"bsonType": "bool"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}

var RatePlanValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"resort_id", "room_type_id", "name", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":          bson.M{"bsonType": "objectId"},
			"resort_id":    bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24},
			"room_type_id": bson.M{"bsonType": "string"},
			"name":         bson.M{"bsonType": "string"},
			"deposit": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"required":   bson.M{"bsonType": "bool"},
					"percentage": bson.M{"bsonType": "decimal"},
				},
			},
			"country_restriction": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"mode":      bson.M{"enum": []string{"", "none", "include", "exclude"}},
					"countries": bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
				},
			},
			"active":     bson.M{"bsonType": "bool"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}

var SeasonalRateValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"rate_plan_id", "start_date", "end_date", "nightly_price", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":           bson.M{"bsonType": "objectId"},
			"rate_plan_id":  bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24},
			"start_date":    bson.M{"bsonType": "date"},
			"end_date":      bson.M{"bsonType": "date"},
			"nightly_price": bson.M{"bsonType": "decimal"},
			"min_stay":      bson.M{"bsonType": "int", "minimum": 0},
			"max_stay":      bson.M{"bsonType": "int", "minimum": 0},
			"created_at":    bson.M{"bsonType": "date"},
		},
	},
}

var InventoryValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"rate_plan_id", "start_date", "end_date", "available_rooms"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":             bson.M{"bsonType": "objectId"},
			"rate_plan_id":    bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24},
			"start_date":      bson.M{"bsonType": "date"},
			"end_date":        bson.M{"bsonType": "date"},
			"available_rooms": bson.M{"bsonType": "int", "minimum": 0},
			"blocked":         bson.M{"bsonType": "bool"},
			"version":         bson.M{"bsonType": "long"},
		},
	},
}

var PromotionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"code", "type", "value", "current_uses", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":          bson.M{"bsonType": "objectId"},
			"code":         bson.M{"bsonType": "string", "minLength": 3, "maxLength": 32},
			"type":         bson.M{"enum": []string{"percentage", "fixed"}},
			"value":        bson.M{"bsonType": "decimal"},
			"max_uses":     bson.M{"bsonType": "int", "minimum": 1},
			"current_uses": bson.M{"bsonType": "int", "minimum": 0},
			"active":       bson.M{"bsonType": "bool"},
			"created_at":   bson.M{"bsonType": "date"},
		},
	},
}

var CommissionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"agent_id", "name", "commission_type", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":             bson.M{"bsonType": "objectId"},
			"agent_id":        bson.M{"bsonType": "string"},
			"name":            bson.M{"bsonType": "string"},
			"commission_type": bson.M{"enum": []string{"percentage", "fixed_amount"}},
			"commission_rate": bson.M{"bsonType": "decimal"},
			"fixed_amount":    bson.M{"bsonType": "decimal"},
			"active":          bson.M{"bsonType": "bool"},
			"created_at":      bson.M{"bsonType": "date"},
		},
	},
}

var TransferValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"resort_id", "name", "unit_price", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "objectId"},
			"resort_id":  bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24},
			"name":       bson.M{"bsonType": "string"},
			"unit_price": bson.M{"bsonType": "decimal"},
			"active":     bson.M{"bsonType": "bool"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
