package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"souq/internal/models"
)

// writeAuditLog records a back-office action. Best effort: failures are
// logged and never fail the request that produced them.
func writeAuditLog(db *mongo.Database, entry models.AuditLog) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if entry.Details == "" {
		entry.Details = entry.ActionType + " on " + entry.EntityType
	}
	entry.CreatedAt = time.Now()

	if _, err := db.Collection("logs").InsertOne(ctx, entry); err != nil {
		log.Println("[AUDIT] [ERROR] log write failed:", err)
	}
}

func GetAuditLogs(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/logs"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("logs").Find(ctx, bson.M{}, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		logs := make([]models.AuditLog, 0)
		if err := cursor.All(ctx, &logs); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"logs": logs})
	}
}
