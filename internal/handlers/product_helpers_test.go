package handlers

import (
	"encoding/json"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestNormalizeProductDocumentHandlesLegacyDiscountFlag(t *testing.T) {
	product, err := normalizeProductDocument(bson.M{
		"name":  "Test",
		"price": "100",
		"discount": bson.M{
			"price":   "80",
			"isVaild": true,
		},
		"currency": bson.M{"code": "SAR", "name": "Saudi Riyal"},
		"category": []string{"Snacks"},
	})
	if err != nil {
		t.Fatalf("normalizeProductDocument returned error: %v", err)
	}
	if product.Discount == nil || !product.Discount.IsValid {
		t.Fatalf("expected legacy isVaild flag to decode as IsValid, got %+v", product.Discount)
	}
	if !product.IsOnSale {
		t.Fatal("expected IsOnSale to be true")
	}
}

func TestNormalizeProductDocumentAcceptsStringCategory(t *testing.T) {
	product, err := normalizeProductDocument(bson.M{
		"name":     "Test",
		"price":    "50",
		"currency": bson.M{"code": "YER", "name": "Yemeni Rial"},
		"category": "Fruits",
	})
	if err != nil {
		t.Fatalf("normalizeProductDocument returned error: %v", err)
	}
	if len(product.Category) != 1 || product.Category[0] != "Fruits" {
		t.Fatalf("expected category [Fruits], got %v", product.Category)
	}
	if product.IsOnSale {
		t.Fatal("expected IsOnSale=false without discount")
	}
}

func TestProductJSONIncludesDiscountFields(t *testing.T) {
	product, err := normalizeProductDocument(bson.M{
		"name":  "Test",
		"price": "120",
		"discount": bson.M{
			"price":   "99",
			"isValid": true,
		},
		"currency": bson.M{"code": "SAR", "name": "Saudi Riyal"},
		"category": []string{"Drinks"},
	})
	if err != nil {
		t.Fatalf("normalizeProductDocument returned error: %v", err)
	}

	body, err := json.Marshal(product)
	if err != nil {
		t.Fatalf("json marshal failed: %v", err)
	}

	jsonBody := string(body)
	if !strings.Contains(jsonBody, "\"isOnSale\":true") {
		t.Fatalf("expected isOnSale=true in response json, got %s", jsonBody)
	}
	if !strings.Contains(jsonBody, "\"99\"") {
		t.Fatalf("expected discount price in response json, got %s", jsonBody)
	}
}
