package app

import (
	"database/sql"
	"time"

	"go-tienda-api/internal/cart"
	"go-tienda-api/internal/cloudinary"
	"go-tienda-api/internal/messaging/kafka/producer"
	"go-tienda-api/internal/middleware"
	"go-tienda-api/internal/product"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const productCacheTTL = 5 * time.Minute

type moduleDeps struct {
	DB         *sql.DB
	Redis      *redis.Client
	Kafka      *kafka.Writer
	Cloudinary cloudinary.Service
	Logger     *zap.Logger
}

func registerModules(router *gin.Engine, deps moduleDeps) {
	router.Use(middleware.RequestID())

	// --- Repositories ---
	productRepo := product.NewRepository(deps.DB)
	cartRepo := cart.NewRepository(deps.DB)

	// --- Supporting infrastructure ---
	snapshotPublisher := producer.NewSnapshotPublisher(deps.Kafka, deps.Logger)
	productCache := product.NewRedisCache(deps.Redis, productCacheTTL, deps.Logger)

	// --- Services ---
	productService := product.NewService(product.Deps{
		Repo:     productRepo,
		Cache:    productCache,
		Notifier: snapshotPublisher,
		Media:    deps.Cloudinary,
		Logger:   deps.Logger,
	})
	cartService := cart.NewService(cart.Deps{
		DB:       deps.DB,
		Repo:     cartRepo,
		Products: productRepo,
		Notifier: snapshotPublisher,
		Logger:   deps.Logger,
	})

	// --- Handlers ---
	productHandler := product.NewHandler(productService)
	cartHandler := cart.NewHandler(cartService)

	// --- Routes ---
	api := router.Group("/api")
	{
		product.RegisterRoutes(api, productHandler)
		cart.RegisterRoutes(api, cartHandler)
	}
}
