package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"souq/internal/models"
)

type discountRequest struct {
	Price   string `json:"price" binding:"required"`
	IsValid bool   `json:"isValid"`
}

type productRequest struct {
	Name         string           `json:"name" binding:"required"`
	Price        string           `json:"price" binding:"required"`
	PurchaseCost string           `json:"purchaseCost"`
	Discount     *discountRequest `json:"discount"`
	CurrencyCode string           `json:"currencyCode" binding:"required"`
	CurrencyName string           `json:"currencyName"`
	Category     []string         `json:"category"`
	Description  string           `json:"description"`
	Barcode      string           `json:"barcode"`
	Brand        string           `json:"brand"`
	IsActive     *bool            `json:"isActive"`
}

// productFromRequest validates and converts an admin payload into a product
// document. Amounts arrive as strings so they parse as exact decimals.
func productFromRequest(req productRequest) (models.Product, error) {
	price, err := models.NewAmount(req.Price)
	if err != nil {
		return models.Product{}, err
	}

	purchaseCost := models.ZeroAmount()
	if req.PurchaseCost != "" {
		if purchaseCost, err = models.NewAmount(req.PurchaseCost); err != nil {
			return models.Product{}, err
		}
	}

	code, err := models.ParseCurrencyCode(req.CurrencyCode)
	if err != nil {
		return models.Product{}, err
	}

	var discount *models.Discount
	if req.Discount != nil {
		discountPrice, err := models.NewAmount(req.Discount.Price)
		if err != nil {
			return models.Product{}, err
		}
		discount = &models.Discount{Price: discountPrice, IsValid: req.Discount.IsValid}
	}
	if err := validateDiscount(price, discount); err != nil {
		return models.Product{}, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	return models.Product{
		Name:         strings.TrimSpace(req.Name),
		Price:        price,
		PurchaseCost: purchaseCost,
		Discount:     discount,
		Currency:     models.Currency{Code: code, Name: strings.TrimSpace(req.CurrencyName)},
		Category:     models.StringList(req.Category),
		Description:  strings.TrimSpace(req.Description),
		Barcode:      strings.TrimSpace(req.Barcode),
		Brand:        strings.TrimSpace(req.Brand),
		IsActive:     isActive,
	}, nil
}

func GetAllProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/products"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		filter := bson.M{"isDeleted": bson.M{"$ne": true}}

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("products").CountDocuments(ctx, filter)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		cursor, err := db.Collection("products").Find(ctx, filter, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		products, err := decodeProducts(ctx, cursor)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data": products,
			"pagination": gin.H{
				"page":  page,
				"limit": limit,
				"total": total,
			},
		})
	}
}

func CreateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/products"
		defer handlePanic(c, route)

		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		product, err := productFromRequest(req)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		product.CreatedAt = time.Now()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("products").InsertOne(ctx, product)
		if mongo.IsDuplicateKeyError(err) {
			respondWithError(c, http.StatusConflict, route, "barcode already exists")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		productID, _ := res.InsertedID.(primitive.ObjectID)
		if actorID, ok := actorIDFromClaims(c); ok {
			writeAuditLog(db, models.AuditLog{
				ActionType:  models.AuditActionCreate,
				EntityType:  models.AuditEntityProduct,
				EntityID:    productID.Hex(),
				ActorUserID: actorID,
			})
		}

		c.JSON(http.StatusCreated, gin.H{"id": productID.Hex()})
	}
}

func UpdateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/products/:id"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		product, err := productFromRequest(req)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		update := bson.M{"$set": bson.M{
			"name":         product.Name,
			"price":        product.Price,
			"purchaseCost": product.PurchaseCost,
			"currency":     product.Currency,
			"category":     product.Category,
			"description":  product.Description,
			"barcode":      product.Barcode,
			"brand":        product.Brand,
			"isActive":     product.IsActive,
		}}
		if product.Discount != nil {
			update["$set"].(bson.M)["discount"] = product.Discount
		} else {
			update["$unset"] = bson.M{"discount": ""}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("products").UpdateOne(
			ctx,
			bson.M{"_id": productID, "isDeleted": bson.M{"$ne": true}},
			update,
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}

		if actorID, ok := actorIDFromClaims(c); ok {
			writeAuditLog(db, models.AuditLog{
				ActionType:  models.AuditActionUpdate,
				EntityType:  models.AuditEntityProduct,
				EntityID:    productID.Hex(),
				ActorUserID: actorID,
			})
		}

		c.JSON(http.StatusOK, gin.H{"message": "product updated"})
	}
}

// DeleteProduct soft-deletes so historical order lines keep resolving their
// product reference.
func DeleteProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/products/:id"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		now := time.Now()
		res, err := db.Collection("products").UpdateOne(
			ctx,
			bson.M{"_id": productID, "isDeleted": bson.M{"$ne": true}},
			bson.M{"$set": bson.M{"isDeleted": true, "isActive": false, "deletedAt": now}},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}

		if actorID, ok := actorIDFromClaims(c); ok {
			writeAuditLog(db, models.AuditLog{
				ActionType:  models.AuditActionDelete,
				EntityType:  models.AuditEntityProduct,
				EntityID:    productID.Hex(),
				ActorUserID: actorID,
			})
		}

		c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
	}
}
