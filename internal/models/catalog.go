package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category groups products in the catalog. Name is unique.
type Category struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// Product is a catalog item. Image is an opaque reference managed outside this service.
type Product struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title string             `bson:"title" json:"title"`
	Price float64            `bson:"price" json:"price"`
	Image string             `bson:"image,omitempty" json:"image,omitempty"`
}
