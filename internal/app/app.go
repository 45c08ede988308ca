package app

import (
	"os"

	"go-tienda-api/internal/cloudinary"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func BuildApp(router *gin.Engine, logger *zap.Logger) error {
	// 1. Infrastructure
	db, err := connectDBWithRetry(os.Getenv("DB_URL"), 5)
	if err != nil {
		return err
	}

	redisClient, err := connectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}

	kafkaWriter, err := connectKafkaWithRetry(os.Getenv("KAFKA_BROKER"), 5)
	if err != nil {
		return err
	}

	// 2. Third party services
	cloudinaryService, err := cloudinary.NewService(
		os.Getenv("CLOUDINARY_CLOUD_NAME"),
		os.Getenv("CLOUDINARY_API_KEY"),
		os.Getenv("CLOUDINARY_API_SECRET"),
		os.Getenv("CLOUDINARY_FOLDER"),
	)
	if err != nil {
		return err
	}

	// 3. Modules & routes
	registerModules(router, moduleDeps{
		DB:         db,
		Redis:      redisClient,
		Kafka:      kafkaWriter,
		Cloudinary: cloudinaryService,
		Logger:     logger,
	})

	return nil
}
