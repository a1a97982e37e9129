package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"souq/internal/models"
)

// GetUsers lists customer accounts for the back office, busiest buyers first.
func GetUsers(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/users"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		findOptions := options.Find().
			SetSort(bson.D{{Key: "ordersCount", Value: -1}, {Key: "createdAt", Value: -1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit).
			SetProjection(bson.M{"passwordHash": 0})

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		filter := bson.M{"role": bson.M{"$ne": models.RoleAdmin}}

		total, err := db.Collection("users").CountDocuments(ctx, filter)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		cursor, err := db.Collection("users").Find(ctx, filter, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		users := make([]models.User, 0)
		if err := cursor.All(ctx, &users); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"users": users,
			"pagination": gin.H{
				"page":  page,
				"limit": limit,
				"total": total,
			},
		})
	}
}

type userAccessRequest struct {
	IsBlocked *bool `json:"isBlocked" binding:"required"`
}

// UpdateUserAccess blocks or unblocks a customer account. Blocked users
// cannot place orders.
func UpdateUserAccess(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/users/:id/access"
		defer handlePanic(c, route)

		userID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req userAccessRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("users").UpdateOne(
			ctx,
			bson.M{"_id": userID, "role": bson.M{"$ne": models.RoleAdmin}},
			bson.M{"$set": bson.M{"isBlocked": *req.IsBlocked, "updatedAt": time.Now()}},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "user not found")
			return
		}

		action := models.AuditActionUnblock
		if *req.IsBlocked {
			action = models.AuditActionBlock
		}
		if actorID, ok := actorIDFromClaims(c); ok {
			writeAuditLog(db, models.AuditLog{
				ActionType:  action,
				EntityType:  models.AuditEntityUser,
				EntityID:    userID.Hex(),
				ActorUserID: actorID,
			})
		}

		c.JSON(http.StatusOK, gin.H{"isBlocked": *req.IsBlocked})
	}
}
