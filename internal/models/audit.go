package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AuditActionCreate  = "CREATE"
	AuditActionUpdate  = "UPDATE"
	AuditActionDelete  = "DELETE"
	AuditActionBlock   = "BLOCK"
	AuditActionUnblock = "UNBLOCK"
)

const (
	AuditEntityOrder   = "ORDER"
	AuditEntityProduct = "PRODUCT"
	AuditEntityUser    = "USER"
)

// AuditLog is one back-office action record. Writes are best effort; a failed
// log entry never fails the request that produced it.
type AuditLog struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ActionType  string             `bson:"actionType" json:"actionType"`
	EntityType  string             `bson:"entityType" json:"entityType"`
	EntityID    string             `bson:"entityId" json:"entityId"`
	ActorUserID primitive.ObjectID `bson:"actorUserId" json:"actorUserId"`
	Details     string             `bson:"details,omitempty" json:"details,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
