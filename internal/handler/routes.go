package handler

import "github.com/gin-gonic/gin"

// RegisterWizardRoutes mounts the wizard endpoints on rg.
func RegisterWizardRoutes(rg *gin.RouterGroup, h *ProfileWizardHandler) {
	wizards := rg.Group("/wizards")
	wizards.POST("", h.Mount)
	wizards.GET("/:id", h.Get)
	wizards.DELETE("/:id", h.Discard)
	wizards.POST("/:id/reseed", h.Reseed)
	wizards.GET("/:id/steps/:step", h.GetStep)
	wizards.PATCH("/:id/steps/:step", h.PatchStep)
	wizards.POST("/:id/touch", h.Touch)
	wizards.POST("/:id/lists/:group", h.AppendItem)
	wizards.DELETE("/:id/lists/:group/:index", h.RemoveItem)
	wizards.POST("/:id/next", h.Next)
	wizards.POST("/:id/prev", h.Prev)
	wizards.PUT("/:id/documents/:field", h.UploadDocument)
	wizards.DELETE("/:id/documents/:field", h.RemoveDocument)
	wizards.GET("/:id/review", h.Review)
	wizards.POST("/:id/submit", h.Submit)
}

// RegisterCatalogRoutes mounts the lookup endpoints on rg. refresh guards
// the cache refresh endpoint.
func RegisterCatalogRoutes(rg *gin.RouterGroup, h *CatalogHandler, refresh ...gin.HandlerFunc) {
	catalog := rg.Group("/catalog")
	catalog.GET("/services", h.Services)
	catalog.POST("/services/refresh", append(refresh, h.RefreshServices)...)
	catalog.GET("/exam-types", h.ExamTypes)
	catalog.GET("/countries", h.Countries)
	catalog.GET("/enquiry-statuses", h.EnquiryStatuses)
}
