package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User is an application account. OrdersCount is a lifetime counter bumped
// atomically when an order is placed; CustomerName on orders is snapshotted
// from Name so later renames do not rewrite order history.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Name         string             `bson:"name" json:"name"`
	Mobile       string             `bson:"mobile,omitempty" json:"mobile,omitempty"`
	Role         string             `bson:"role" json:"role"`
	IsBlocked    bool               `bson:"isBlocked" json:"isBlocked"`
	OrdersCount  int64              `bson:"ordersCount" json:"ordersCount"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
