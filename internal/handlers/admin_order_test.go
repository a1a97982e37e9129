package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"souq/internal/models"
)

func TestBuildOrderListFilterStatus(t *testing.T) {
	filter, err := buildOrderListFilter("", "all")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(filter) != 0 {
		t.Fatalf("expected empty filter for status=all, got %v", filter)
	}

	filter, err = buildOrderListFilter("", "delivered")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filter["status"] != models.StatusDelivered {
		t.Fatalf("expected delivered status filter, got %v", filter)
	}

	if _, err := buildOrderListFilter("", "shipped"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestBuildOrderListFilterSearch(t *testing.T) {
	filter, err := buildOrderListFilter("ahmed", "all")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	or, ok := filter["$or"].([]bson.M)
	if !ok || len(or) != 1 {
		t.Fatalf("expected one search clause, got %v", filter)
	}

	id := primitive.NewObjectID()
	filter, err = buildOrderListFilter(id.Hex(), "all")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	or, ok = filter["$or"].([]bson.M)
	if !ok || len(or) != 2 {
		t.Fatalf("expected name and id clauses for hex search, got %v", filter)
	}
	if or[1]["_id"] != id {
		t.Fatalf("expected id clause, got %v", or[1])
	}
}
