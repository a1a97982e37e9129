package handlers

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"souq/internal/models"
)

// Typed errors raised inside service transactions. Handlers translate them to
// HTTP statuses at the boundary; raw driver errors are logged and surfaced as
// a generic message.

type productNotFoundError struct {
	ProductID primitive.ObjectID
}

func (e productNotFoundError) Error() string {
	return fmt.Sprintf("product not found: %s", e.ProductID.Hex())
}

type invalidTransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e invalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}

// transitionConflictError reports that the order's status changed between the
// read and the guarded write. The caller lost the race; no history entry was
// written for it.
type transitionConflictError struct {
	OrderID primitive.ObjectID
}

func (e transitionConflictError) Error() string {
	return "order status changed concurrently"
}
