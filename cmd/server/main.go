package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/fbawholesale/ops-service/internal/api"
	"github.com/fbawholesale/ops-service/internal/db"
	"github.com/fbawholesale/ops-service/internal/events"
	"github.com/fbawholesale/ops-service/internal/logging"
	"github.com/fbawholesale/ops-service/internal/models"
	"github.com/fbawholesale/ops-service/internal/redisx"
	"github.com/fbawholesale/ops-service/internal/services"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Ensure all log output goes to stdout so the platform captures it
	log.SetOutput(os.Stdout)

	log.Printf("Ops Service starting (GIT_SHA=%s BUILD_TIME=%s)", os.Getenv("GIT_SHA"), os.Getenv("BUILD_TIME"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database connection (non-fatal to allow liveness health checks)
	database, err := db.NewDatabase()
	if err != nil {
		log.Printf("[WARN] Database initialization failed at startup: %v", err)
	}
	if database != nil {
		defer database.Close()
	}

	// Optional Redis: session-scoped active organization and status cache
	rdb := redisx.New(os.Getenv("REDIS_ADDR"))
	if rdb != nil {
		if err := redisx.Ping(ctx, rdb); err != nil {
			log.Printf("[WARN] Redis unreachable at startup: %v", err)
		}
		defer rdb.Close()
	}

	// Optional Kafka producer for purchase order lifecycle events
	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}
	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		topic = "po.events"
	}
	// The producer outlives the signal context: it is stopped only after the
	// HTTP server has finished its in-flight requests, so their events still
	// get queued and flushed.
	producerCtx, stopProducer := context.WithCancel(context.Background())
	defer stopProducer()
	producer := events.NewProducer(brokers, topic, "ops-service", 256)
	producer.Start(producerCtx)

	// Optional SES notifications for access approvals
	email := services.NewEmailService(ctx)

	// Initialize handlers
	handler := api.NewHandler(database, rdb, producer, email)

	// Set up Gin router
	router := setupRouter(handler)

	// Get port from environment or use default
	port := os.Getenv("OPS_PORT")
	if port == "" {
		port = "8083"
	}

	srv := &http.Server{Addr: ":" + port, Handler: router}

	go func() {
		log.Printf("Starting ops service on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()

	log.Println("Shutting down ops service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] Server shutdown: %v", err)
	}

	// Server is done; stop the producer and wait for the event flush.
	stopProducer()
	producer.WaitClosed()
}

func setupRouter(handler *api.Handler) *gin.Engine {
	// Set Gin mode based on environment
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware
	router.Use(logging.JSONLogger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// Health and readiness endpoints
	router.GET("/live", func(c *gin.Context) { c.Status(200) })
	router.GET("/ready", handler.Health)
	// Keep /health as liveness-only for platform health checks
	router.GET("/health", func(c *gin.Context) { c.Status(200) })

	// Identity routes: authenticated but usable before any membership exists
	identity := router.Group("/api")
	identity.Use(api.AuthMiddleware())
	{
		identity.GET("/me", handler.Me)
		identity.POST("/orgs/select", handler.SelectOrganization)
	}

	// Tenant routes: membership required, per-route action gates
	apiGroup := router.Group("/api")
	apiGroup.Use(api.AuthMiddleware())
	apiGroup.Use(handler.OrgContext())
	{
		apiGroup.GET("/dashboard", api.RequireAction(models.ActionViewDashboard), handler.Dashboard)

		// Purchase order lifecycle
		apiGroup.POST("/purchase-orders", api.RequireAction(models.ActionCreatePO), handler.CreatePurchaseOrder)
		apiGroup.GET("/purchase-orders", handler.ListPurchaseOrders)
		apiGroup.GET("/purchase-orders/:po_id", handler.GetPurchaseOrder)
		apiGroup.POST("/purchase-orders/:po_id/submit", handler.SubmitPurchaseOrder)
		apiGroup.PUT("/purchase-orders/:po_id/approve", api.RequireAction(models.ActionApprovePO), handler.ApprovePurchaseOrder)
		apiGroup.PUT("/purchase-orders/:po_id/reject", api.RequireAction(models.ActionApprovePO), handler.RejectPurchaseOrder)
		apiGroup.PUT("/purchase-orders/:po_id/receive", api.RequireAction(models.ActionEditPO), handler.ReceivePurchaseOrder)
		apiGroup.DELETE("/purchase-orders/:po_id", api.RequireAction(models.ActionDeletePO), handler.DeletePurchaseOrder)

		// Inbound shipments
		apiGroup.POST("/purchase-orders/:po_id/shipments", api.RequireAction(models.ActionCreateShipment), handler.CreateShipment)
		apiGroup.GET("/shipments", handler.ListShipments)
		apiGroup.PUT("/shipments/:shipment_id/status", api.RequireAction(models.ActionManageShipments), handler.UpdateShipmentStatus)

		// Catalog
		apiGroup.GET("/products", handler.ListProducts)
		apiGroup.POST("/products", api.RequireAction(models.ActionAccessSettings), handler.CreateProduct)
		apiGroup.GET("/skus", handler.ListSKUs)
		apiGroup.POST("/skus", api.RequireAction(models.ActionAccessSettings), handler.CreateSKU)
		apiGroup.GET("/suppliers", handler.ListSuppliers)
		apiGroup.POST("/suppliers", api.RequireAction(models.ActionAccessSettings), handler.CreateSupplier)
		apiGroup.GET("/warehouses", handler.ListWarehouses)
		apiGroup.POST("/warehouses", api.RequireAction(models.ActionAccessSettings), handler.CreateWarehouse)
		apiGroup.GET("/inventory", handler.ListInventory)
		apiGroup.PUT("/inventory", api.RequireAction(models.ActionAccessSettings), handler.UpsertInventory)

		// Settings
		apiGroup.GET("/settings", api.RequireAction(models.ActionAccessSettings), handler.GetSettings)
		apiGroup.PUT("/settings", api.RequireAction(models.ActionAccessSettings), handler.UpdateSettings)
	}

	// Admin API routes: access approvals and role management
	adminGroup := router.Group("/api/admin")
	adminGroup.Use(api.AuthMiddleware())
	adminGroup.Use(handler.OrgContext())
	adminGroup.Use(api.RequireAction(models.ActionManageUsers))
	{
		adminGroup.GET("/users", handler.ListUsers)
		adminGroup.PUT("/users/:user_id/role", handler.SetUserRole)
	}

	// Root endpoint for basic info
	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "ops-service",
			"version": "1.0.0",
			"status":  "running",
		})
	})

	return router
}

// corsMiddleware adds CORS headers to allow cross-origin requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
