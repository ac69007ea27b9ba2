// api/router.go
package api

import (
	"database/sql"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/smartquery/text2sql-backend/api/handlers"
	"github.com/smartquery/text2sql-backend/api/middleware"
	"github.com/smartquery/text2sql-backend/config"
	"github.com/smartquery/text2sql-backend/internal/nlquery"
)

// SetupRouter initializes the Gin router and sets up all routes.
func SetupRouter(metaDB *sql.DB, cfg *config.Config, pipeline *nlquery.Pipeline) *gin.Engine {
	router := gin.Default() // Includes Logger and Recovery

	// Browser frontend runs on a different origin.
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	ratelimiter := middleware.NewRateLimiter()
	router.Use(middleware.RateLimitMiddleware(ratelimiter))
	// Runs after Logger/Recovery but wraps the handlers, so attached
	// errors become responses.
	router.Use(middleware.ErrorHandler())

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(metaDB, cfg)
	queryHandler := handlers.NewQueryHandler(pipeline)
	schemaHandler := handlers.NewSchemaHandler(pipeline, cfg)

	// --- Public Routes ---
	router.GET("/ping", func(c *gin.Context) { c.String(200, "pong") })
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/signup", authHandler.Signup)
		authRoutes.POST("/login", authHandler.Login)
	}

	// --- Protected Routes ---
	apiRoutes := router.Group("/api/v1")
	apiRoutes.Use(middleware.AuthMiddleware(cfg))
	{
		apiRoutes.GET("/me", authHandler.Me)

		apiRoutes.POST("/query", queryHandler.Query)

		apiRoutes.GET("/schema", schemaHandler.GetSchema)
		apiRoutes.POST("/admin/reconnect", schemaHandler.Reconnect)
	}

	return router
}
