package handlers

import (
	"context"
	"errors"
	"html"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"souq/internal/models"
)

const idempotencyKeyHeader = "Idempotency-Key"

type placeOrderItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type placeOrderRequest struct {
	Address string                  `json:"address" binding:"required,min=10"`
	Items   []placeOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

/* =========================
   PLACE ORDER
========================= */

// PlaceOrder creates an order from the caller's cart. Prices are re-resolved
// server-side and the order document (header, lines, initial pending event)
// is inserted atomically together with the user's lifetime order counter
// increment. Without an Idempotency-Key header the operation is not
// idempotent: a retried request creates a second order.
func PlaceOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var req placeOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		userID, ok := userIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		idempotencyKey, err := idempotencyKeyFromHeader(c.GetHeader(idempotencyKeyHeader))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid idempotency key")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var user models.User
		err = db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if user.IsBlocked {
			c.JSON(http.StatusForbidden, gin.H{"error": "account is blocked"})
			return
		}

		// A retried checkout with the same key returns the first order.
		if idempotencyKey != "" {
			if existing, found, err := findOrderByIdempotencyKey(ctx, db, userID, idempotencyKey); err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			} else if found {
				c.JSON(http.StatusOK, gin.H{"orderId": existing.ID.Hex(), "message": "order already placed"})
				return
			}
		}

		order, err := buildOrderFromRequest(req, user, time.Now())
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		order.IdempotencyKey = idempotencyKey

		session, err := db.Client().StartSession()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer session.EndSession(ctx)

		var orderID primitive.ObjectID
		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			lines := make([]models.OrderLine, 0, len(order.Lines))

			for _, line := range order.Lines {
				var product models.Product
				err := db.Collection("products").FindOne(
					sessCtx,
					bson.M{
						"_id":       line.ProductID,
						"isActive":  bson.M{"$ne": false},
						"isDeleted": bson.M{"$ne": true},
					},
				).Decode(&product)
				if err == mongo.ErrNoDocuments {
					return nil, productNotFoundError{ProductID: line.ProductID}
				}
				if err != nil {
					return nil, err
				}

				resolved := resolveLinePrice(product)
				code := product.Currency.Code
				lines = append(lines, models.OrderLine{
					ProductID:         line.ProductID,
					Name:              product.Name,
					Quantity:          line.Quantity,
					UnitPrice:         models.Money{Amount: resolved.UnitPrice, Currency: code},
					OriginalUnitPrice: models.Money{Amount: resolved.OriginalPrice, Currency: code},
					DiscountApplied:   resolved.DiscountApplied,
				})
			}

			order.Lines = lines

			res, err := db.Collection("orders").InsertOne(sessCtx, order)
			if err != nil {
				return nil, err
			}
			if id, ok := res.InsertedID.(primitive.ObjectID); ok {
				orderID = id
			}

			_, err = db.Collection("users").UpdateOne(
				sessCtx,
				bson.M{"_id": userID},
				bson.M{"$inc": bson.M{"ordersCount": 1}},
			)
			return nil, err
		})
		if err != nil {
			var notFoundErr productNotFoundError
			if errors.As(err, &notFoundErr) {
				c.JSON(http.StatusNotFound, gin.H{
					"error":     "product not found",
					"productId": notFoundErr.ProductID.Hex(),
				})
				return
			}
			// A concurrent retry with the same key can commit first; treat
			// the duplicate key as success and return that order.
			if idempotencyKey != "" && mongo.IsDuplicateKeyError(err) {
				if existing, found, lookupErr := findOrderByIdempotencyKey(ctx, db, userID, idempotencyKey); lookupErr == nil && found {
					c.JSON(http.StatusOK, gin.H{"orderId": existing.ID.Hex(), "message": "order already placed"})
					return
				}
			}
			respondWithError(c, http.StatusInternalServerError, route, "order could not be placed, please try again")
			return
		}

		writeAuditLog(db, models.AuditLog{
			ActionType:  models.AuditActionCreate,
			EntityType:  models.AuditEntityOrder,
			EntityID:    orderID.Hex(),
			ActorUserID: userID,
		})

		log.Println("[ORDER] [INFO] order created for user:", userID.Hex())
		c.JSON(http.StatusCreated, gin.H{
			"orderId": orderID.Hex(),
			"message": "order created",
		})
	}
}

/* =========================
   LIST OWN ORDERS
========================= */

// ListOrders returns the caller's orders, newest first, each with its
// per-currency totals and full status timeline.
func ListOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		userID, ok := userIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, bson.M{"userId": userID}, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "orders could not be fetched")
			return
		}
		defer cursor.Close(ctx)

		var orders []models.Order
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "orders could not be fetched")
			return
		}

		c.JSON(http.StatusOK, gin.H{"orders": ordersWithTotals(orders)})
	}
}

type orderResponse struct {
	models.Order
	Totals map[models.CurrencyCode]models.Amount `json:"totals"`
}

func ordersWithTotals(orders []models.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, orderResponse{Order: order, Totals: orderCurrencyTotals(order)})
	}
	return out
}

/* =========================
   BUILD ORDER
========================= */

// buildOrderFromRequest validates the cart and assembles the order skeleton:
// escaped address, snapshotted customer name, pending status and the initial
// history event. Line prices stay unresolved until the placement transaction
// loads each product.
func buildOrderFromRequest(req placeOrderRequest, user models.User, now time.Time) (models.Order, error) {
	// Length is checked before escaping so entity expansion cannot pad a
	// too-short address past the minimum.
	trimmed := strings.TrimSpace(req.Address)
	if len(trimmed) < 10 {
		return models.Order{}, errors.New("address is too short")
	}
	address := html.EscapeString(trimmed)

	if len(req.Items) == 0 {
		return models.Order{}, errors.New("at least one item is required")
	}

	lines := make([]models.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			return models.Order{}, errors.New("invalid productId")
		}
		if item.Quantity < 1 {
			return models.Order{}, errors.New("quantity must be at least 1")
		}
		lines = append(lines, models.OrderLine{
			ProductID: productID,
			Quantity:  item.Quantity,
		})
	}

	return models.Order{
		UserID:       user.ID,
		CustomerName: user.Name,
		Address:      address,
		Status:       models.StatusPending,
		Lines:        lines,
		StatusHistory: []models.StatusEvent{{
			Status:      models.StatusPending,
			Timestamp:   now,
			ActorUserID: user.ID,
		}},
		CreatedAt: now,
	}, nil
}

// idempotencyKeyFromHeader normalizes the client key. The header is optional;
// when present it must be a UUID.
func idempotencyKeyFromHeader(header string) (string, error) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return "", nil
	}
	key, err := uuid.Parse(raw)
	if err != nil {
		return "", err
	}
	return key.String(), nil
}

func findOrderByIdempotencyKey(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, key string) (models.Order, bool, error) {
	var order models.Order
	err := db.Collection("orders").FindOne(ctx, bson.M{
		"userId":         userID,
		"idempotencyKey": key,
	}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return models.Order{}, false, nil
	}
	if err != nil {
		return models.Order{}, false, err
	}
	return order, true, nil
}
