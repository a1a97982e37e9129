package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Discount is an optional override price on a product, active only while
// flagged valid.
type Discount struct {
	Price   Amount `bson:"price" json:"price"`
	IsValid bool   `bson:"isValid" json:"isValid"`
}

// Product carries two price fields: Price is the customer-facing list price
// (also the reference price profit is measured against) and PurchaseCost is
// what the store paid for the item.
type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Price        Amount             `bson:"price" json:"price"`
	PurchaseCost Amount             `bson:"purchaseCost" json:"purchaseCost"`
	Discount     *Discount          `bson:"discount,omitempty" json:"discount,omitempty"`
	Currency     Currency           `bson:"currency" json:"currency"`
	Category     StringList         `bson:"category" json:"category"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Barcode      string             `bson:"barcode,omitempty" json:"barcode,omitempty"`
	Brand        string             `bson:"brand,omitempty" json:"brand,omitempty"`
	IsOnSale     bool               `bson:"-" json:"isOnSale"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	IsDeleted    bool               `bson:"isDeleted" json:"isDeleted,omitempty"`
	DeletedAt    *time.Time         `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// HasValidDiscount reports whether the discount price should be charged
// instead of the list price.
func (p Product) HasValidDiscount() bool {
	return p.Discount != nil && p.Discount.IsValid
}
