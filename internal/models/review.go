package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 200
)

// Review rates either a cafe as a whole or a single menu item: ItemID is set
// only for item-level reviews. Reviews are immutable once written and are
// removed only when their target is deleted.
type Review struct {
	ID        bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	CafeID    bson.ObjectID  `bson:"cafeId" json:"cafeId"`
	ItemID    *bson.ObjectID `bson:"itemId,omitempty" json:"itemId,omitempty"`
	Rating    int            `bson:"rating" json:"rating"`
	Comment   string         `bson:"comment,omitempty" json:"comment,omitempty"`
	Timestamp time.Time      `bson:"timestamp" json:"timestamp"`
}

func (r *Review) IsItemReview() bool {
	return r.ItemID != nil
}
