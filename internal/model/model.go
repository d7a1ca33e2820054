package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Model represents an AI model catalog entry
type Model struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string        `bson:"name" json:"name"`
	Framework   string        `bson:"framework" json:"framework"`
	UseCase     string        `bson:"useCase" json:"useCase"`
	Dataset     string        `bson:"dataset" json:"dataset"`
	Description string        `bson:"description" json:"description"`
	Image       string        `bson:"image" json:"image"`
	CreatedBy   string        `bson:"createdBy" json:"createdBy"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt,omitempty" json:"updatedAt"`
	Purchased   int64         `bson:"purchased" json:"purchased"`
}

// IsValidID reports whether id is a well-formed document id.
func IsValidID(id string) bool {
	_, err := bson.ObjectIDFromHex(id)
	return err == nil
}
