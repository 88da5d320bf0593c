package controller

import (
	"net/http"
	"time"

	"github.com/Itish41/WorkflowPro/logging"
	"github.com/Itish41/WorkflowPro/middleware"
	services "github.com/Itish41/WorkflowPro/service"
	"github.com/gin-gonic/gin"
)

// APIVersion is reported by GET /api.
const APIVersion = "2.0.0"

// Services groups the application services the router dispatches to.
type Services struct {
	WorkItems     *services.WorkItemService
	DocumentTypes *services.DocumentTypeService
	Checklists    *services.ChecklistService
	Documents     *services.DocumentService
	Users         *services.UserService
	Reconciler    *services.ReconcileService
}

type RouterConfig struct {
	Logger      logging.Logger
	Production  bool
	CORSOrigins []string

	// GlobalRateLimit applies to every route; StrictRateLimit to uploads and
	// maintenance sweeps. Zero disables a limiter.
	GlobalRateLimit int
	StrictRateLimit int
	RateLimitWindow time.Duration

	MaxUploadBytes int64

	// UploadDir is served read-only under /uploads when set.
	UploadDir string

	StartedAt time.Time
}

// NewRouter builds the HTTP handler with every API route registered.
func NewRouter(cfg RouterConfig, svc Services) *gin.Engine {
	RegisterValidations()
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = time.Minute
	}
	if cfg.StartedAt.IsZero() {
		cfg.StartedAt = time.Now()
	}

	router := gin.New()
	router.Use(
		middleware.Recovery(cfg.Logger, cfg.Production),
		middleware.RequestLogger(cfg.Logger),
		middleware.CORSMiddleware(cfg.CORSOrigins),
		middleware.ErrorHandler(cfg.Logger, cfg.Production),
		middleware.NewRateLimiter(cfg.GlobalRateLimit, cfg.RateLimitWindow).Limit(),
	)
	strict := middleware.NewRateLimiter(cfg.StrictRateLimit, cfg.RateLimitWindow).Limit()
	router.NoRoute(middleware.NoRoute)

	router.GET("/health", health(cfg.StartedAt))
	if cfg.UploadDir != "" {
		router.Static("/uploads", cfg.UploadDir)
	}

	workItems := NewWorkItemController(svc.WorkItems)
	docTypes := NewDocumentTypeController(svc.DocumentTypes)
	checklists := NewChecklistController(svc.Checklists)
	documents := NewDocumentController(svc.Documents, cfg.MaxUploadBytes)
	users := NewUserController(svc.Users)
	maintenance := NewMaintenanceController(svc.Reconciler)

	api := router.Group("/api")
	api.GET("", apiInfo)

	wi := api.Group("/work-items")
	wi.GET("", workItems.List)
	wi.POST("", workItems.Create)
	wi.GET("/:id", workItems.Get)
	wi.PUT("/:id", workItems.Update)
	wi.PATCH("/:id", workItems.UpdateStatus)
	wi.PATCH("/:id/status", workItems.UpdateStatus)
	wi.PATCH("/:id/stato", workItems.UpdateStatus)
	wi.DELETE("/:id", workItems.Delete)
	wi.GET("/:id/documents", documents.ListByWorkItem)
	wi.POST("/:id/documents", strict, documents.Upload)

	cl := api.Group("/checklists")
	cl.GET("", checklists.List)
	cl.POST("", checklists.Create)
	cl.GET("/:id", checklists.Get)
	cl.PUT("/:id", checklists.Update)
	cl.DELETE("/:id", checklists.Delete)
	cl.GET("/:id/questions", checklists.ListQuestions)
	cl.POST("/:id/questions", checklists.CreateQuestion)

	api.PUT("/questions/:id", checklists.UpdateQuestion)
	api.DELETE("/questions/:id", checklists.DeleteQuestion)

	dt := api.Group("/document-types")
	dt.GET("", docTypes.List)
	dt.POST("", docTypes.Create)
	dt.GET("/categories", docTypes.Categories)
	dt.GET("/:id", docTypes.Get)
	dt.PUT("/:id", docTypes.Update)
	dt.DELETE("/:id", docTypes.Delete)

	docs := api.Group("/documents")
	docs.GET("/search", documents.Search)
	docs.GET("/:id", documents.Get)
	docs.GET("/:id/download", documents.Download)
	docs.DELETE("/:id", documents.Delete)

	us := api.Group("/users")
	us.GET("", users.List)
	us.POST("", users.Create)
	us.GET("/:id", users.Get)
	us.PUT("/:id", users.Update)
	us.DELETE("/:id", users.Delete)

	mt := api.Group("/maintenance")
	mt.GET("/orphans", maintenance.Orphans)
	mt.POST("/orphans/sweep", strict, maintenance.Sweep)

	return router
}

func health(startedAt time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"uptime":    time.Since(startedAt).Seconds(),
		})
	}
}

func apiInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Workflow Pro API",
		"version": APIVersion,
		"endpoints": []string{
			"/api/work-items",
			"/api/work-items/:id/documents",
			"/api/documents",
			"/api/document-types",
			"/api/checklists",
			"/api/questions",
			"/api/users",
			"/api/maintenance/orphans",
		},
	})
}
