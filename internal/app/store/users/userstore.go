package userstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mangrovewatch/mangrovewatch/internal/app/system/authz"
	"github.com/mangrovewatch/mangrovewatch/internal/app/system/normalize"
	"github.com/mangrovewatch/mangrovewatch/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrDuplicateUsername is returned when the username is already taken.
	ErrDuplicateUsername = errors.New("a user with this username already exists")
	// ErrNotFound is returned when the requested user does not exist.
	ErrNotFound = errors.New("user not found")

	errBadRole = errors.New(`role must be "community"|"ngo"|"government"|"researcher"`)
)

// Create inserts a new user after normalizing and validating fields.
// The caller supplies PasswordHash already hashed.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Username = normalize.Username(u.Username)
	u.Email = normalize.Email(u.Email)
	u.FirstName = normalize.Name(u.FirstName)
	u.LastName = normalize.Name(u.LastName)
	u.Role = normalize.Role(u.Role)
	if u.Role == "" {
		u.Role = authz.RoleCommunity
	}
	if !authz.IsValidRole(u.Role) {
		return models.User{}, errBadRole
	}

	u.IsActive = true
	u.Points = 0
	u.ReportsSubmitted = 0
	u.ReportsValidated = 0

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, s.classifyDup(ctx, u)
		}
		return models.User{}, err
	}
	return u, nil
}

// classifyDup decides which unique index a duplicate-key error hit by
// re-checking the two candidate fields. The driver error does not
// always carry the index name through every vendor.
func (s *Store) classifyDup(ctx context.Context, u models.User) error {
	err := s.c.FindOne(ctx, bson.M{"email": u.Email}).Err()
	if err == nil {
		return ErrDuplicateEmail
	}
	return ErrDuplicateUsername
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByUsername looks up a user by case-insensitive username.
func (s *Store) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"username": normalize.Username(username)}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ProfileUpdate holds the user-editable profile fields. Role, email,
// and username are deliberately absent.
type ProfileUpdate struct {
	FirstName    string
	LastName     string
	Organization string
	Location     models.UserLocation
}

// UpdateProfile applies a profile edit to the given user.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) error {
	set := bson.M{
		"first_name":   normalize.Name(upd.FirstName),
		"last_name":    normalize.Name(upd.LastName),
		"organization": upd.Organization,
		"location":     upd.Location,
		"updated_at":   time.Now(),
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetLastLogin stamps the login time on a successful sign-in.
func (s *Store) SetLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"last_login": at}})
	return err
}

// SetActive activates or deactivates an account.
func (s *Store) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": active, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ChangePassword replaces the stored hash. The caller has already
// verified the current password and hashed the new one.
func (s *Store) ChangePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"password_hash": hash, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CounterDelta is one entry in the gamification ledger: how much to
// move each counter by, applied atomically with $inc.
type CounterDelta struct {
	Points           int
	ReportsSubmitted int
	ReportsValidated int
}

// ApplyCounterDelta is the single write path for points and report
// counters. Every change is logged with its reason so awards can be
// audited later.
func (s *Store) ApplyCounterDelta(ctx context.Context, id primitive.ObjectID, d CounterDelta, reason string) error {
	inc := bson.M{}
	if d.Points != 0 {
		inc["points"] = d.Points
	}
	if d.ReportsSubmitted != 0 {
		inc["reports_submitted"] = d.ReportsSubmitted
	}
	if d.ReportsValidated != 0 {
		inc["reports_validated"] = d.ReportsValidated
	}
	if len(inc) == 0 {
		return nil
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": inc})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	zap.L().Info("user counters updated",
		zap.String("user_id", id.Hex()),
		zap.String("reason", reason),
		zap.Int("points", d.Points),
		zap.Int("reports_submitted", d.ReportsSubmitted),
		zap.Int("reports_validated", d.ReportsValidated))
	return nil
}

// Leaderboard returns the top active users by points, using reports
// submitted as the tiebreak. The projection omits the password hash
// and other private fields.
func (s *Store) Leaderboard(ctx context.Context, limit int64) ([]models.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "points", Value: -1}, {Key: "reports_submitted", Value: -1}}).
		SetLimit(limit).
		SetProjection(bson.M{
			"username": 1, "first_name": 1, "last_name": 1, "role": 1,
			"organization": 1, "points": 1, "reports_submitted": 1, "reports_validated": 1,
		})
	cur, err := s.c.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// RankByPoints returns the 1-based leaderboard position for a score:
// one more than the count of active users with strictly more points.
func (s *Store) RankByPoints(ctx context.Context, points int) (int64, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"is_active": true,
		"points":    bson.M{"$gt": points},
	})
	if err != nil {
		return 0, err
	}
	return n + 1, nil
}

// Search finds active users by username, first name, last name, or
// organization, case-insensitively. A non-empty role narrows the match
// to that role.
func (s *Store) Search(ctx context.Context, q, role string, limit int64) ([]models.User, error) {
	rx := bson.M{"$regex": q, "$options": "i"}
	filter := bson.M{
		"is_active": true,
		"$or": []bson.M{
			{"username": rx},
			{"first_name": rx},
			{"last_name": rx},
			{"organization": rx},
		},
	}
	if role != "" {
		filter["role"] = role
	}
	opts := options.Find().
		SetLimit(limit).
		SetProjection(bson.M{
			"username": 1, "first_name": 1, "last_name": 1, "role": 1,
			"organization": 1, "points": 1,
		})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Recent returns the newest active accounts, for the community stats
// endpoint's recent-registrations panel.
func (s *Store) Recent(ctx context.Context, limit int64) ([]models.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetProjection(bson.M{
			"username": 1, "first_name": 1, "last_name": 1, "role": 1,
			"organization": 1, "created_at": 1,
		})
	cur, err := s.c.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CommunityStats summarizes the user base for the public stats endpoint.
type CommunityStats struct {
	TotalUsers  int64            `json:"totalUsers"`
	TotalPoints int64            `json:"totalPoints"`
	ByRole      map[string]int64 `json:"byRole"`
}

// Stats aggregates active-user counts and points by role.
func (s *Store) Stats(ctx context.Context) (*CommunityStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"is_active": true}}},
		{{Key: "$group", Value: bson.M{
			"_id":    "$role",
			"count":  bson.M{"$sum": 1},
			"points": bson.M{"$sum": "$points"},
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	stats := &CommunityStats{ByRole: map[string]int64{}}
	for cur.Next(ctx) {
		var row struct {
			Role   string `bson:"_id"`
			Count  int64  `bson:"count"`
			Points int64  `bson:"points"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		stats.ByRole[row.Role] = row.Count
		stats.TotalUsers += row.Count
		stats.TotalPoints += row.Points
	}
	return stats, cur.Err()
}
