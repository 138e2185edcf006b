package reportqueries

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ValidatorActivity counts decided reports per validator role. The
// aggregation joins reports with users so deactivated validators still
// attribute their past decisions to the right role.
func ValidatorActivity(ctx context.Context, db *mongo.Database) (map[string]int64, error) {
	result := make(map[string]int64)

	pipeline := []bson.M{
		{"$match": bson.M{"validator": bson.M{"$ne": nil}}},
		{"$lookup": bson.M{
			"from":         "users",
			"localField":   "validator",
			"foreignField": "_id",
			"as":           "validator_user",
		}},
		{"$unwind": "$validator_user"},
		{"$group": bson.M{"_id": "$validator_user.role", "count": bson.M{"$sum": 1}}},
	}

	cur, err := db.Collection("reports").Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			Role  string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		result[row.Role] = row.Count
	}
	return result, cur.Err()
}
