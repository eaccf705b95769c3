package api

import (
	"github.com/gin-gonic/gin"

	"github.com/sergiovidalh/recluta/internal/handlers"
)

func registerStageRoutes(api *gin.RouterGroup, handler *handlers.StageHandler) {
	group := api.Group("/stages")
	{
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.PATCH("/:id", handler.Update)
		group.DELETE("/:id", handler.Delete)
	}
}
