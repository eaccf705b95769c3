package api

import (
	"github.com/gin-gonic/gin"

	"github.com/sergiovidalh/recluta/internal/handlers"
)

func registerInterviewRoutes(api *gin.RouterGroup, handler *handlers.InterviewHandler) {
	group := api.Group("/interviews")
	{
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.GET("/:id", handler.Get)

		group.POST("/:id/confirm-slot", handler.ConfirmSlot)
		group.POST("/:id/reschedule", handler.Reschedule)
		group.POST("/:id/cancel", handler.Cancel)
		group.POST("/:id/complete", handler.Complete)
		group.DELETE("/:id", handler.Delete)
	}
}
