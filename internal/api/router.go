package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Register builds the gin engine with the full operation surface mounted
// under /api/v1
func Register(h *Handler, log zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	v1 := r.Group("/api/v1")

	v1.GET("/activity", h.getActivityFeed)

	v1.POST("/transactions/:id/split", h.splitTransaction)
	v1.POST("/transactions/:id/categorize", h.markCategorized)
	v1.POST("/transactions/:id/institutional", h.markInstitutionalFunding)
	v1.POST("/transactions/:id/receipt", h.attachReceipt)
	v1.POST("/transactions/:id/reconcile", h.reconcileTransaction)
	v1.POST("/transactions/suggestions", h.applySuggestions)

	v1.PUT("/statements/:stmtId/lines/:lineId", h.updateStatementLine)

	v1.PUT("/checklist/:stepId", h.updateChecklistStep)
	v1.GET("/close-readiness", h.getCloseReadiness)

	v1.GET("/forecast", h.getForecast)
	v1.POST("/opportunities", h.createOpportunity)
	v1.PUT("/opportunities/:id", h.updateOpportunity)
	v1.PUT("/forecast/goal", h.updateGoal)

	return r
}
