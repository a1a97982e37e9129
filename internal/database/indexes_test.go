package database

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

// The placement dedupe lookups filter on (userId, idempotencyKey); the unique
// index must cover the same pair so a key reused by a different user cannot
// trip the constraint.
func TestOrderIdempotencyIndexIsScopedPerUser(t *testing.T) {
	var found bool
	for _, model := range orderIndexModels() {
		if model.Options == nil || model.Options.Name == nil || *model.Options.Name != "userId_idempotencyKey_unique" {
			continue
		}
		found = true

		keys, ok := model.Keys.(bson.D)
		if !ok || len(keys) != 2 {
			t.Fatalf("expected compound keys, got %#v", model.Keys)
		}
		if keys[0].Key != "userId" || keys[1].Key != "idempotencyKey" {
			t.Fatalf("expected (userId, idempotencyKey), got %v", keys)
		}
		if model.Options.Unique == nil || !*model.Options.Unique {
			t.Fatal("idempotency index must be unique")
		}
		if model.Options.PartialFilterExpression == nil {
			t.Fatal("idempotency index must be partial so keyless orders are unconstrained")
		}
	}
	if !found {
		t.Fatal("idempotency index missing from order index models")
	}
}
