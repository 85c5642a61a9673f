package router

import (
	"net/http"

	"storefront-service/internal/handlers"
	"storefront-service/internal/middleware"
	"storefront-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

type Deps struct {
	Orders      service.OrderService
	Products    *service.ProductService
	Auth        *service.AuthService
	CORSOrigins []string
}

func Router(d Deps, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsCfg := cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", middleware.HeaderRequestID},
	}
	// с "*" браузеры не принимают credentials
	corsCfg.AllowCredentials = !(len(origins) == 1 && origins[0] == "*")
	r.Use(cors.New(corsCfg))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	orderHandler := handlers.NewOrderHandler(d.Orders, log)
	productHandler := handlers.NewProductHandler(d.Products, log)
	authHandler := handlers.NewAuthHandler(d.Auth, log)

	api := r.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)

		api.GET("/products", productHandler.List)
		api.GET("/products/:id", productHandler.Get)

		api.POST("/orders", orderHandler.Create)
		api.GET("/orders/track/:orderNumber", orderHandler.Track)
		api.GET("/orders/:id/items", orderHandler.Items)
	}

	admin := api.Group("", middleware.AuthRequired(d.Auth, log))
	{
		admin.GET("/orders", orderHandler.List)
		admin.GET("/orders/stats/summary", orderHandler.Stats)
		admin.GET("/orders/:id", orderHandler.Get)
		admin.PUT("/orders/:id/status", orderHandler.UpdateStatus)

		admin.POST("/products", productHandler.Create)
		admin.PUT("/products/:id", productHandler.Update)
	}

	return r
}
