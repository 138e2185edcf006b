// Package reportqueries provides the read-only aggregate queries that
// power the statistics endpoints.
package reportqueries

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Summary aggregates report counts for the stats endpoint, scoped to
// whatever the caller's role lets them see.
type Summary struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"byStatus"`
	ByCategory map[string]int64 `json:"byCategory"`
	BySeverity map[string]int64 `json:"bySeverity"`
	Monthly    []MonthlyCount   `json:"monthly"`
}

// MonthlyCount is the submission volume for one calendar month.
type MonthlyCount struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Count int64 `json:"count"`
}

// Summarize runs the grouped counts over the reports matching scope.
// An empty scope summarizes the whole collection.
func Summarize(ctx context.Context, db *mongo.Database, scope bson.M) (*Summary, error) {
	c := db.Collection("reports")
	out := &Summary{
		ByStatus:   map[string]int64{},
		ByCategory: map[string]int64{},
		BySeverity: map[string]int64{},
	}

	for _, g := range []struct {
		field string
		dest  map[string]int64
	}{
		{"status", out.ByStatus},
		{"category", out.ByCategory},
		{"severity", out.BySeverity},
	} {
		pipe := mongo.Pipeline{}
		if len(scope) > 0 {
			pipe = append(pipe, bson.D{{Key: "$match", Value: scope}})
		}
		pipe = append(pipe, bson.D{{Key: "$group", Value: bson.M{
			"_id":   "$" + g.field,
			"count": bson.M{"$sum": 1},
		}}})

		cur, err := c.Aggregate(ctx, pipe)
		if err != nil {
			return nil, err
		}
		for cur.Next(ctx) {
			var row struct {
				Key   string `bson:"_id"`
				Count int64  `bson:"count"`
			}
			if err := cur.Decode(&row); err != nil {
				cur.Close(ctx)
				return nil, err
			}
			g.dest[row.Key] = row.Count
		}
		if err := cur.Err(); err != nil {
			cur.Close(ctx)
			return nil, err
		}
		cur.Close(ctx)
	}

	for _, n := range out.ByStatus {
		out.Total += n
	}

	monthly, err := monthlyCounts(ctx, c, scope)
	if err != nil {
		return nil, err
	}
	out.Monthly = monthly
	return out, nil
}

// monthlyCounts groups submissions by calendar month, most recent
// first, capped at twelve months.
func monthlyCounts(ctx context.Context, c *mongo.Collection, scope bson.M) ([]MonthlyCount, error) {
	pipe := mongo.Pipeline{}
	if len(scope) > 0 {
		pipe = append(pipe, bson.D{{Key: "$match", Value: scope}})
	}
	pipe = append(pipe,
		bson.D{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"year":  bson.M{"$year": "$created_at"},
				"month": bson.M{"$month": "$created_at"},
			},
			"count": bson.M{"$sum": 1},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "_id.year", Value: -1},
			{Key: "_id.month", Value: -1},
		}}},
		bson.D{{Key: "$limit", Value: 12}},
	)

	cur, err := c.Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var months []MonthlyCount
	for cur.Next(ctx) {
		var row struct {
			ID struct {
				Year  int `bson:"year"`
				Month int `bson:"month"`
			} `bson:"_id"`
			Count int64 `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		months = append(months, MonthlyCount{Year: row.ID.Year, Month: row.ID.Month, Count: row.Count})
	}
	return months, cur.Err()
}

// AdminStats extends the summary with review-queue numbers that only
// validator roles see.
type AdminStats struct {
	Summary
	PendingReview      int64            `json:"pendingReview"`
	UnderInvestigation int64            `json:"underInvestigation"`
	ByValidatorRole    map[string]int64 `json:"byValidatorRole"`
}

// SummarizeForAdmin runs the unscoped summary plus the workload counts.
func SummarizeForAdmin(ctx context.Context, db *mongo.Database) (*AdminStats, error) {
	s, err := Summarize(ctx, db, bson.M{})
	if err != nil {
		return nil, err
	}
	activity, err := ValidatorActivity(ctx, db)
	if err != nil {
		return nil, err
	}
	return &AdminStats{
		Summary:            *s,
		PendingReview:      s.ByStatus["pending"],
		UnderInvestigation: s.ByStatus["under_investigation"],
		ByValidatorRole:    activity,
	}, nil
}
