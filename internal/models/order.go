package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the lifecycle state of an order. Transitions form a small
// directed graph, not a total order; CanTransitionTo is the single source of
// truth for what an admin may do next.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusDeclined   OrderStatus = "declined"
	StatusProcessing OrderStatus = "processing"
	StatusDelivered  OrderStatus = "delivered"
)

var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusConfirmed, StatusDeclined},
	StatusConfirmed:  {StatusProcessing},
	StatusProcessing: {StatusDelivered},
	StatusDeclined:   {},
	StatusDelivered:  {},
}

func ParseOrderStatus(status string) (OrderStatus, error) {
	s := OrderStatus(status)
	if _, ok := statusTransitions[s]; !ok {
		return "", fmt.Errorf("unknown order status %q", status)
	}
	return s, nil
}

// CanTransitionTo reports whether next is directly reachable from s. There is
// no skip-ahead path; pending orders must pass through confirmed and
// processing before delivery.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is defined from s.
func (s OrderStatus) IsTerminal() bool {
	return len(statusTransitions[s]) == 0
}

// OrderLine is one product snapshot within an order. Prices are captured at
// order time and never recomputed from the live catalog, so later catalog
// edits cannot rewrite historical orders or profit reports.
type OrderLine struct {
	ProductID         primitive.ObjectID `bson:"productId" json:"productId"`
	Name              string             `bson:"name" json:"name"`
	Quantity          int                `bson:"quantity" json:"quantity"`
	UnitPrice         Money              `bson:"unitPrice" json:"unitPrice"`
	OriginalUnitPrice Money              `bson:"originalUnitPrice" json:"originalUnitPrice"`
	DiscountApplied   bool               `bson:"discountApplied" json:"discountApplied"`
}

// StatusEvent is one append-only audit-trail entry. Events are never edited
// or deleted.
type StatusEvent struct {
	Status      OrderStatus        `bson:"status" json:"status"`
	Message     string             `bson:"message,omitempty" json:"message,omitempty"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
	ActorUserID primitive.ObjectID `bson:"actorUserId" json:"actorUserId"`
}

// Order is the persisted order document. Lines and status history are
// embedded so the initial write of header + lines + first event is a single
// atomic insert, and a status change is a single atomic update.
type Order struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	CustomerName   string             `bson:"customerName" json:"customerName"`
	Address        string             `bson:"address" json:"address"`
	Status         OrderStatus        `bson:"status" json:"status"`
	IdempotencyKey string             `bson:"idempotencyKey,omitempty" json:"-"`
	Lines          []OrderLine        `bson:"lines" json:"lines"`
	StatusHistory  []StatusEvent      `bson:"statusHistory" json:"statusHistory"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

// LatestStatus returns the status of the most recent history event. It must
// always agree with Status; both are written in the same atomic operation.
func (o Order) LatestStatus() OrderStatus {
	if len(o.StatusHistory) == 0 {
		return o.Status
	}
	return o.StatusHistory[len(o.StatusHistory)-1].Status
}
