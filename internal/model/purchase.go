package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Purchase is an immutable record of a user obtaining access to a model.
// ModelID is a weak reference by hex string, not a live foreign key: the
// model may be deleted later, which is why ModelName and CreatedBy are
// denormalized snapshots taken at purchase time.
type Purchase struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id"`
	ModelID     string        `bson:"modelId" json:"modelId"`
	ModelName   string        `bson:"modelName" json:"modelName"`
	CreatedBy   string        `bson:"createdBy" json:"createdBy"`
	PurchasedBy string        `bson:"purchasedBy" json:"purchasedBy"`
	PurchasedAt time.Time     `bson:"purchasedAt" json:"purchasedAt"`
}

// ModelPurchaseStat is one row of the per-model purchase aggregation.
type ModelPurchaseStat struct {
	ModelID   string `bson:"_id" json:"modelId"`
	ModelName string `bson:"modelName" json:"modelName"`
	Count     int64  `bson:"count" json:"count"`
}

// PurchaseStats summarizes purchases across all models of one creator.
type PurchaseStats struct {
	TotalModels      int64               `json:"totalModels"`
	TotalPurchases   int64               `json:"totalPurchases"`
	PurchasesByModel []ModelPurchaseStat `json:"purchasesByModel"`
}
