package api

import "github.com/gin-gonic/gin"

// SetupRouter configures and returns a gin engine for the retrieval
// service.
func SetupRouter(h *Handler) *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", h.Health)

	apiV1 := r.Group("/api/v1")
	{
		apiV1.POST("/retrieve", h.Retrieve)

		standards := apiV1.Group("/standards")
		{
			standards.GET("", h.AvailableStandards)
			standards.POST("/load", h.LoadStandards)
		}
	}

	return r
}
