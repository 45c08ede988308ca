package product

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	products := r.Group("/products")
	{
		products.GET("", handler.List)
		products.GET("/:pid", handler.GetByID)
		products.POST("", handler.Create)
		products.PUT("/:pid", handler.Update)
		products.DELETE("/:pid", handler.Delete)
		products.POST("/:pid/thumbnails", handler.AddThumbnail)
	}
}
