package handlers

import (
	"context"
	"net/http"
	"time"

	"deliveryfood/config"
	"deliveryfood/models"
	"deliveryfood/statemachine"

	"github.com/gin-gonic/gin"
)

// Version is reported by /health; overridden at build time.
var Version = "1.0.0"

// Health reports whether the service and its database are reachable
func Health(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	database := "up"

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if sqlDB, err := config.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		status, code, database = "degraded", http.StatusServiceUnavailable, "down"
	}

	c.JSON(code, gin.H{
		"status":   status,
		"service":  "deliveryfood",
		"version":  Version,
		"database": database,
	})
}

// GetStateMachineInfo returns the order lifecycle for documentation
func GetStateMachineInfo(c *gin.Context) {
	respond(c, http.StatusOK, "Order lifecycle state machine", gin.H{
		"states":          statemachine.Lifecycle,
		"transitions":     statemachine.GetAllTransitions(),
		"terminal_states": []models.OrderStatus{models.StatusDelivered},
	})
}
