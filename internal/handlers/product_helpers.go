package handlers

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"souq/internal/models"
)

// normalizeProductDocument decodes a raw product document, papering over
// legacy shapes: category stored as a plain string and discount documents
// written with the old misspelled "isVaild" flag.
func normalizeProductDocument(raw bson.M) (models.Product, error) {
	if cat, ok := raw["category"].(string); ok {
		raw["category"] = []string{cat}
	}

	if discount, ok := raw["discount"].(bson.M); ok {
		if value, ok := discount["isVaild"]; ok {
			if _, exists := discount["isValid"]; !exists {
				discount["isValid"] = value
			}
			delete(discount, "isVaild")
		}
	}

	data, err := bson.Marshal(raw)
	if err != nil {
		return models.Product{}, err
	}

	var p models.Product
	if err := bson.Unmarshal(data, &p); err != nil {
		return models.Product{}, err
	}

	p.IsOnSale = p.HasValidDiscount()

	return p, nil
}

func decodeProducts(ctx context.Context, cursor *mongo.Cursor) ([]models.Product, error) {
	products := make([]models.Product, 0)

	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}

		product, err := normalizeProductDocument(raw)
		if err != nil {
			return nil, err
		}

		products = append(products, product)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return products, nil
}
