package http

import "github.com/gin-gonic/gin"

// Register attaches the project and user routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	projects := rg.Group("/projects")
	projects.POST("", h.createProject)
	projects.GET("", h.listProjects)
	projects.GET("/:project_id", h.getProject)
	projects.DELETE("/:project_id", h.deleteProject)

	projects.GET("/:project_id/assets", h.listAssets)
	projects.POST("/:project_id/assets", h.uploadAssets)
	projects.GET("/:project_id/assets/:asset_id", h.downloadAsset)
	projects.DELETE("/:project_id/assets/:asset_id", h.deleteAsset)

	projects.GET("/:project_id/processes", h.listProcesses)

	user := rg.Group("/user")
	user.POST("/request-api-key", h.requestAPIKey)
	user.POST("/save-api-key", h.saveAPIKey)
	user.GET("/get-api-key", h.getAPIKey)
}
