package api

import (
	"github.com/gin-gonic/gin"

	"github.com/sergiovidalh/recluta/internal/handlers"
)

func registerDirectoryRoutes(api *gin.RouterGroup, handler *handlers.DirectoryHandler) {
	candidates := api.Group("/candidates")
	{
		candidates.GET("", handler.ListCandidates)
		candidates.POST("", handler.CreateCandidate)
		candidates.GET("/:id", handler.GetCandidate)
		candidates.POST("/:id/link-user", handler.LinkCandidateUser)
	}

	vacancies := api.Group("/vacancies")
	{
		vacancies.GET("", handler.ListVacancies)
		vacancies.POST("", handler.CreateVacancy)
		vacancies.GET("/:id", handler.GetVacancy)
	}

	orgs := api.Group("/client-orgs")
	{
		orgs.GET("", handler.ListClientOrgs)
		orgs.POST("", handler.CreateClientOrg)
	}
}
