package repository

import (
	"context"
	"time"

	"cafe-rater-backend/internal/database"
	"cafe-rater-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ReviewRepo is the review store. Cafe-level and item-level reviews live in
// separate collections; the Review model covers both, keyed on ItemID presence.
type ReviewRepo struct {
	cafeReviews *mongo.Collection
	itemReviews *mongo.Collection
}

func NewReviewRepo() *ReviewRepo {
	return &ReviewRepo{
		cafeReviews: database.GetCollection("cafe_reviews"),
		itemReviews: database.GetCollection("item_reviews"),
	}
}

func (r *ReviewRepo) target(review *models.Review) *mongo.Collection {
	if review.IsItemReview() {
		return r.itemReviews
	}
	return r.cafeReviews
}

// Create stamps the server-side timestamp and persists the review. Reviews are
// never updated after this point.
func (r *ReviewRepo) Create(ctx context.Context, review *models.Review) error {
	review.Timestamp = time.Now().UTC()
	result, err := r.target(review).InsertOne(ctx, review)
	if err != nil {
		return err
	}
	review.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (r *ReviewRepo) list(ctx context.Context, coll *mongo.Collection, filter bson.M, limit int64) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// ListForCafe returns the cafe's own reviews (not its items'), most recent
// first. limit <= 0 means no limit.
func (r *ReviewRepo) ListForCafe(ctx context.Context, cafeID bson.ObjectID, limit int64) ([]models.Review, error) {
	return r.list(ctx, r.cafeReviews, bson.M{"cafeId": cafeID}, limit)
}

func (r *ReviewRepo) ListForItem(ctx context.Context, itemID bson.ObjectID, limit int64) ([]models.Review, error) {
	return r.list(ctx, r.itemReviews, bson.M{"itemId": itemID}, limit)
}

// ListRecent returns the most recent cafe-level reviews across all cafes.
func (r *ReviewRepo) ListRecent(ctx context.Context, limit int64) ([]models.Review, error) {
	return r.list(ctx, r.cafeReviews, bson.M{}, limit)
}

type rollupRow struct {
	AvgRating    float64 `bson:"avgRating"`
	TotalRatings int64   `bson:"totalRatings"`
}

func (r *ReviewRepo) countAndAverage(ctx context.Context, coll *mongo.Collection, match bson.M) (int64, float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":          nil,
			"avgRating":    bson.M{"$avg": "$rating"},
			"totalRatings": bson.M{"$sum": 1},
		}}},
	}
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	var rows []rollupRow
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, 0, err
	}
	if len(rows) == 0 {
		// No matching reviews; zero count, average rendered as 0 by convention.
		return 0, 0, nil
	}
	return rows[0].TotalRatings, rows[0].AvgRating, nil
}

// CountAndAverageForCafe folds the cafe's own reviews into (count, mean).
// Item-level reviews are excluded on purpose.
func (r *ReviewRepo) CountAndAverageForCafe(ctx context.Context, cafeID bson.ObjectID) (int64, float64, error) {
	return r.countAndAverage(ctx, r.cafeReviews, bson.M{"cafeId": cafeID})
}

func (r *ReviewRepo) CountAndAverageForItem(ctx context.Context, itemID bson.ObjectID) (int64, float64, error) {
	return r.countAndAverage(ctx, r.itemReviews, bson.M{"itemId": itemID})
}

func (r *ReviewRepo) CountAndAverageGlobal(ctx context.Context) (int64, float64, error) {
	return r.countAndAverage(ctx, r.cafeReviews, bson.M{})
}

// DeleteForCafe removes every review referencing the cafe, both its own and
// those of its items. Idempotent; the two DeleteMany calls are not atomic, so
// a concurrent reader can briefly see item reviews outlive the cafe reviews.
func (r *ReviewRepo) DeleteForCafe(ctx context.Context, cafeID bson.ObjectID) error {
	if _, err := r.cafeReviews.DeleteMany(ctx, bson.M{"cafeId": cafeID}); err != nil {
		return err
	}
	_, err := r.itemReviews.DeleteMany(ctx, bson.M{"cafeId": cafeID})
	return err
}

// DeleteForItem removes all reviews for a single menu item. Idempotent.
func (r *ReviewRepo) DeleteForItem(ctx context.Context, itemID bson.ObjectID) error {
	_, err := r.itemReviews.DeleteMany(ctx, bson.M{"itemId": itemID})
	return err
}

// EnsureIndexes creates the target+recency indexes both review collections
// are queried on.
func (r *ReviewRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.cafeReviews.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "cafeId", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return err
	}
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "itemId", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "cafeId", Value: 1}}},
	}
	_, err = r.itemReviews.Indexes().CreateMany(ctx, indexes)
	return err
}
