package handlers

import (
	"context"
	"errors"
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

/* =========================
   LIST ORDERS (ADMIN)
========================= */

// GetAllOrders lists orders for the back office with search, status filter,
// sort and pagination, plus the five most recent pending orders.
func GetAllOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		filter, err := buildOrderListFilter(c.Query("search"), c.DefaultQuery("status", "all"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		sortDir := -1
		if c.Query("sort") == "oldest" {
			sortDir = 1
		}

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: sortDir}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("orders").CountDocuments(ctx, filter)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		cursor, err := db.Collection("orders").Find(ctx, filter, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		var orders []models.Order
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		pendingOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetLimit(5)
		pendingCursor, err := db.Collection("orders").Find(ctx, bson.M{"status": models.StatusPending}, pendingOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer pendingCursor.Close(ctx)

		var pending []models.Order
		if err := pendingCursor.All(ctx, &pending); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"orders":        ordersWithTotals(orders),
			"pendingOrders": ordersWithTotals(pending),
			"pagination": gin.H{
				"page":  page,
				"limit": limit,
				"total": total,
			},
		})
	}
}

// buildOrderListFilter assembles the admin listing query. Search matches the
// snapshotted customer name (case-insensitive) or the order id.
func buildOrderListFilter(search, status string) (bson.M, error) {
	filter := bson.M{}

	if status != "" && status != "all" {
		parsed, err := models.ParseOrderStatus(status)
		if err != nil {
			return nil, err
		}
		filter["status"] = parsed
	}

	if search = strings.TrimSpace(search); search != "" {
		or := []bson.M{
			{"customerName": bson.M{"$regex": search, "$options": "i"}},
		}
		if id, err := primitive.ObjectIDFromHex(search); err == nil {
			or = append(or, bson.M{"_id": id})
		}
		filter["$or"] = or
	}

	return filter, nil
}

/* =========================
   GET ORDER (ADMIN)
========================= */

func GetOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders/:id"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		var customer models.User
		phone := ""
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": order.UserID}).Decode(&customer); err == nil {
			phone = customer.Mobile
		}

		c.JSON(http.StatusOK, gin.H{
			"order": orderResponse{Order: order, Totals: orderCurrencyTotals(order)},
			"phone": phone,
		})
	}
}

/* =========================
   TRANSITION STATUS
========================= */

type transitionStatusRequest struct {
	Status  string `json:"status" binding:"required"`
	Message string `json:"message"`
}

// TransitionStatus applies an admin status change. The transition table is
// enforced against the order's current status, and the status field plus the
// new history event are written in one guarded update so the two can never
// diverge and no event is ever lost.
func TransitionStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/orders/:id/status"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req transitionStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		newStatus, err := models.ParseOrderStatus(req.Status)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid status")
			return
		}

		actorID, ok := actorIDFromClaims(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		updated, err := applyStatusTransition(ctx, db, orderID, newStatus, actorID, strings.TrimSpace(req.Message))
		if err != nil {
			var invalidErr invalidTransitionError
			var conflictErr transitionConflictError
			switch {
			case err == mongo.ErrNoDocuments:
				respondWithError(c, http.StatusNotFound, route, "order not found")
			case errors.As(err, &invalidErr):
				respondWithError(c, http.StatusBadRequest, route, invalidErr.Error())
			case errors.As(err, &conflictErr):
				respondWithError(c, http.StatusConflict, route, "order was updated concurrently, reload and retry")
			default:
				respondWithError(c, http.StatusInternalServerError, route, "db error")
			}
			return
		}

		writeAuditLog(db, models.AuditLog{
			ActionType:  models.AuditActionUpdate,
			EntityType:  models.AuditEntityOrder,
			EntityID:    orderID.Hex(),
			ActorUserID: actorID,
			Details:     "status -> " + string(newStatus),
		})

		c.JSON(http.StatusOK, gin.H{
			"order": orderResponse{Order: updated, Totals: orderCurrencyTotals(updated)},
		})
	}
}

// applyStatusTransition loads the order, checks the transition table and runs
// the guarded update. The filter pins the expected current status, so a
// concurrent transition that commits first makes this one fail with a
// conflict instead of overwriting history.
func applyStatusTransition(
	ctx context.Context,
	db *mongo.Database,
	orderID primitive.ObjectID,
	newStatus models.OrderStatus,
	actorID primitive.ObjectID,
	message string,
) (models.Order, error) {
	var order models.Order
	if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
		return models.Order{}, err
	}

	if !order.Status.CanTransitionTo(newStatus) {
		return models.Order{}, invalidTransitionError{From: order.Status, To: newStatus}
	}

	event := models.StatusEvent{
		Status:      newStatus,
		Message:     message,
		Timestamp:   time.Now(),
		ActorUserID: actorID,
	}

	after := options.After
	findOptions := options.FindOneAndUpdate().SetReturnDocument(after)
	err := db.Collection("orders").FindOneAndUpdate(
		ctx,
		bson.M{"_id": orderID, "status": order.Status},
		bson.M{
			"$set":  bson.M{"status": newStatus},
			"$push": bson.M{"statusHistory": event},
		},
		findOptions,
	).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return models.Order{}, transitionConflictError{OrderID: orderID}
	}
	if err != nil {
		return models.Order{}, err
	}

	return order, nil
}

/* =========================
   PENDING COUNT / DASHBOARD
========================= */

func GetPendingOrderCount(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders/pending-count"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("orders").CountDocuments(ctx, bson.M{"status": models.StatusPending})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

// GetDashboardReport aggregates delivered orders into per-currency revenue
// and profit plus a twelve-month series for the admin charts. Undelivered
// orders do not count as realized revenue.
func GetDashboardReport(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/dashboard"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		totalOrders, err := db.Collection("orders").CountDocuments(ctx, bson.M{})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		totalProducts, err := db.Collection("products").CountDocuments(ctx, bson.M{"isDeleted": bson.M{"$ne": true}})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		cursor, err := db.Collection("orders").Find(ctx, bson.M{"status": models.StatusDelivered})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		var delivered []models.Order
		if err := cursor.All(ctx, &delivered); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		totals, monthly := aggregateDelivered(delivered)

		c.JSON(http.StatusOK, gin.H{
			"statsData": gin.H{
				"totalOrders":   totalOrders,
				"totalProducts": totalProducts,
				"currencyStats": totals,
			},
			"salesData": monthly,
		})
	}
}
