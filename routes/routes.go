package routes

import (
	"log/slog"
	"net/http"

	"deliveryfood/handlers"
	"deliveryfood/middleware"
	"deliveryfood/models"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the engine with the standard middleware chain.
func NewRouter(log *slog.Logger, metrics http.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.CORS())
	SetupRoutes(r, metrics)
	return r
}

// SetupRoutes registers the REST API. metrics may be nil.
func SetupRoutes(r *gin.Engine, metrics http.Handler) {
	// ── Ops ────────────────────────────────────────────────────────
	r.GET("/health", handlers.Health)
	r.GET("/state-machine", handlers.GetStateMachineInfo)
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}

	auth := middleware.AuthRequired()
	admin := middleware.RoleRequired(models.RoleAdmin)
	customer := middleware.RoleRequired(models.RoleCustomer)

	// ── Users ──────────────────────────────────────────────────────
	users := r.Group("/users")
	{
		users.POST("/login", handlers.Login)
		users.POST("/register", handlers.Register)

		users.GET("/all", auth, admin, handlers.ListUsers)
		users.GET("/:id", auth, middleware.SelfOrAdmin("id"), handlers.GetUser)
		users.PUT("/:id/address", auth, middleware.SelfOrAdmin("id"), handlers.UpdateAddress)

		// Courier management; the path carries the acting admin's id
		users.POST("/register/courier/:adminId", auth, admin, middleware.SelfOnly("adminId"), handlers.CreateCourier)
		users.PUT("/courier/:adminId/:id", auth, admin, middleware.SelfOnly("adminId"), handlers.UpdateCourier)
		users.DELETE("/courier/:adminId/:id", auth, admin, middleware.SelfOnly("adminId"), handlers.DeleteCourier)
	}

	// ── Restaurants ────────────────────────────────────────────────
	restaurants := r.Group("/restaurants")
	{
		restaurants.GET("", handlers.ListRestaurants)
		restaurants.GET("/get/:id", handlers.GetRestaurant)
		restaurants.POST("/create", auth, admin, handlers.CreateRestaurant)
		restaurants.PUT("/update/:id", auth, admin, handlers.UpdateRestaurant)
		restaurants.DELETE("/delete/:id", auth, admin, handlers.DeleteRestaurant)
	}

	// ── Menus ──────────────────────────────────────────────────────
	menus := r.Group("/menus")
	{
		menus.GET("/get", handlers.ListMenus)
		menus.GET("/get/:id", handlers.GetMenu)
		menus.GET("/uploads/:filename", handlers.ServeMenuImage)
		menus.POST("/create", auth, admin, handlers.CreateMenu)
		menus.PUT("/update/:id", auth, admin, handlers.UpdateMenu)
		menus.DELETE("/delete/:id", auth, admin, handlers.DeleteMenu)
	}

	// ── Cart ───────────────────────────────────────────────────────
	cart := r.Group("/cart", auth, customer)
	{
		cart.GET("/:userId", middleware.SelfOnly("userId"), handlers.GetCart)
		cart.POST("", handlers.AddToCart)
		cart.PUT("/:cartId", handlers.UpdateCartLine)
		cart.DELETE("/:cartId", handlers.DeleteCartLine)
	}

	// ── Orders ─────────────────────────────────────────────────────
	orders := r.Group("/orders", auth)
	{
		orders.POST("/preview", customer, handlers.PreviewOrder)
		orders.POST("/create", customer, handlers.CreateOrder)
		orders.GET("/customer/:id/history", middleware.SelfOrAdmin("id"), handlers.OrderHistory)
		orders.GET("/get", admin, handlers.ListOrders)
		orders.GET("/get/:id", handlers.GetOrder)
		orders.GET("/reports", admin, handlers.Reports)
	}

	// ── Courier assignments ────────────────────────────────────────
	assignments := r.Group("/courier-assignments", auth)
	{
		assignments.GET("/unassigned-orders", admin, handlers.UnassignedOrders)
		assignments.GET("/available-couriers", admin, handlers.AvailableCouriers)
		assignments.POST("/assign/:orderId/:courierId", admin, handlers.AssignCourier)
		assignments.PUT("/update-status/:orderId",
			middleware.RoleRequired(models.RoleCourier, models.RoleAdmin), handlers.UpdateOrderStatus)
		assignments.GET("/courier-orders/:courierId",
			middleware.RoleRequired(models.RoleCourier, models.RoleAdmin), middleware.SelfOrAdmin("courierId"), handlers.CourierOrders)
	}
}
