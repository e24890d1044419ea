package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"deliveryfood/events"
	"deliveryfood/middleware"

	"github.com/gin-gonic/gin"
)

// Deps are the collaborators handlers reach besides config.DB.
type Deps struct {
	Events      events.Publisher
	Logger      *slog.Logger
	DeliveryFee int64
	UploadDir   string
}

var deps = Deps{
	Events:    events.Noop{},
	Logger:    slog.Default(),
	UploadDir: "uploads",
}

// Configure installs handler dependencies. Call before serving.
func Configure(d Deps) {
	if d.Events == nil {
		d.Events = events.Noop{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.UploadDir == "" {
		d.UploadDir = "uploads"
	}
	deps = d
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, gin.H{"message": message, "data": data})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

// internalError logs err with the request id and replies 500 without leaking it.
func internalError(c *gin.Context, message string, err error) {
	_ = c.Error(err)
	deps.Logger.Error(message, "error", err, "request_id", middleware.GetRequestID(c), "route", c.FullPath())
	fail(c, http.StatusInternalServerError, message)
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		fail(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// publish never fails the request; broker outages are logged.
func publish(c *gin.Context, e events.Event) {
	if err := deps.Events.Publish(c.Request.Context(), e); err != nil {
		deps.Logger.Error("failed to publish order event",
			"error", err, "type", e.Type, "order_id", e.OrderID, "request_id", middleware.GetRequestID(c))
	}
}
