package api

import (
	"github.com/gin-gonic/gin"

	"github.com/sergiovidalh/recluta/internal/handlers"
)

func registerApplicationRoutes(api *gin.RouterGroup, handler *handlers.ApplicationHandler) {
	group := api.Group("/applications")
	{
		group.GET("", handler.Board)
		group.POST("", handler.Create)
		group.GET("/:id", handler.Get)
		group.GET("/:id/history", handler.History)

		group.POST("/:id/move", handler.Move)
		group.POST("/:id/discard", handler.Discard)
		group.POST("/:id/restore", handler.Restore)
	}
}
