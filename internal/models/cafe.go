package models

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Item categories shown in the directory UI.
const (
	ItemTypeEntree  = "entree"
	ItemTypeDrink   = "drink"
	ItemTypeSide    = "side"
	ItemTypeDessert = "dessert"
	ItemTypeOther   = "other"
)

func ValidItemType(t string) bool {
	switch t {
	case ItemTypeEntree, ItemTypeDrink, ItemTypeSide, ItemTypeDessert, ItemTypeOther:
		return true
	}
	return false
}

// MenuItem is embedded in its cafe document; deleting the cafe drops its items.
type MenuItem struct {
	ID    bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name  string        `bson:"name" json:"name"`
	Price float64       `bson:"price" json:"price"`
	Type  string        `bson:"type" json:"type"`
}

type Cafe struct {
	ID       bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string        `bson:"name" json:"name"`
	Building string        `bson:"building" json:"building"`
	Items    []MenuItem    `bson:"items" json:"items"`
}
