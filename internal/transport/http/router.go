package http

import (
	"orderflow/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

func Router(svc service.OrderService, log *zap.Logger) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", IdempotencyHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	orderHandler := NewOrderHandler(svc, log)
	r.POST("/orders", orderHandler.PlaceOrder)
	r.GET("/orders/by-email/:email", orderHandler.ListByEmail)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}
