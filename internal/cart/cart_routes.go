package cart

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	carts := r.Group("/carts")
	{
		carts.POST("", handler.Create)
		carts.GET("/:cid", handler.Detail)
		carts.PUT("/:cid", handler.ReplaceItems)
		carts.DELETE("/:cid", handler.Delete)
		carts.DELETE("/:cid/items", handler.Clear)

		items := carts.Group("/:cid/products/:pid")
		{
			items.POST("", handler.AddItem)
			items.PUT("", handler.UpdateQty)
			items.DELETE("", handler.DeleteItem)
		}
	}
}
