package repository

import (
	"context"

	"cafe-rater-backend/internal/database"
	"cafe-rater-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type CafeRepo struct {
	collection *mongo.Collection
}

func NewCafeRepo() *CafeRepo {
	return &CafeRepo{
		collection: database.GetCollection("cafes"),
	}
}

// Create inserts a new cafe. The unique index on name rejects duplicates;
// callers can distinguish that case with IsDuplicateName.
func (r *CafeRepo) Create(ctx context.Context, cafe *models.Cafe) error {
	if cafe.Items == nil {
		cafe.Items = []models.MenuItem{}
	}
	result, err := r.collection.InsertOne(ctx, cafe)
	if err != nil {
		return err
	}
	cafe.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func IsDuplicateName(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

func (r *CafeRepo) FindByID(ctx context.Context, id bson.ObjectID) (*models.Cafe, error) {
	var cafe models.Cafe
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&cafe)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &cafe, nil
}

// FindByItemID resolves the cafe embedding the given menu item.
func (r *CafeRepo) FindByItemID(ctx context.Context, itemID bson.ObjectID) (*models.Cafe, error) {
	var cafe models.Cafe
	err := r.collection.FindOne(ctx, bson.M{"items._id": itemID}).Decode(&cafe)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &cafe, nil
}

func (r *CafeRepo) FindAll(ctx context.Context) ([]models.Cafe, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	cafes := []models.Cafe{}
	if err := cursor.All(ctx, &cafes); err != nil {
		return nil, err
	}
	return cafes, nil
}

// AddItem pushes a menu item onto the cafe's embedded array, assigning its id
// server-side. Returns the stored item.
func (r *CafeRepo) AddItem(ctx context.Context, cafeID bson.ObjectID, item models.MenuItem) (*models.MenuItem, error) {
	item.ID = bson.NewObjectID()
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": cafeID},
		bson.M{"$push": bson.M{"items": item}},
	)
	if err != nil {
		return nil, err
	}
	if result.MatchedCount == 0 {
		return nil, nil
	}
	return &item, nil
}

// RemoveItem pulls a menu item out of whichever cafe embeds it. Reports
// whether an item was actually removed.
func (r *CafeRepo) RemoveItem(ctx context.Context, itemID bson.ObjectID) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"items._id": itemID},
		bson.M{"$pull": bson.M{"items": bson.M{"_id": itemID}}},
	)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

// Delete removes the cafe document; embedded items go with it. Review cleanup
// is the caller's job (see ReviewRepo.DeleteForCafe). Idempotent.
func (r *CafeRepo) Delete(ctx context.Context, id bson.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// EnsureIndexes creates the unique name index for the cafes collection.
func (r *CafeRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
