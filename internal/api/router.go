package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter 组装全部中间件和路由
func NewRouter(h *HTTPHandler) *gin.Engine {
	useWireFieldNames()

	r := gin.New()
	r.Use(LoggingMiddleware())
	r.Use(MetricsMiddleware())
	r.Use(CORSMiddleware(h.cfg.CORSAllowedOrigins))
	r.Use(gin.Recovery())

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	h.registerUploads(r)

	apiGroup := r.Group("/api")

	authGroup := apiGroup.Group("/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)

	apiGroup.GET("/tags", h.ListTags)

	projects := apiGroup.Group("/projects")
	projects.GET("", h.ListProjects)
	projects.GET("/search", h.SearchProjects)
	projects.GET("/:id", h.GetProject)

	admin := projects.Group("")
	admin.Use(h.AuthMiddleware(), h.RequireAdmin())
	admin.POST("", h.CreateProject)
	admin.PUT("/:id", h.UpdateProject)
	admin.DELETE("/:id", h.DeleteProject)
	admin.POST("/:id/screenshots", h.UploadScreenshot)
	admin.DELETE("/:id/screenshots/:screenshotId", h.DeleteScreenshot)
	admin.PUT("/:id/screenshots/reorder", h.ReorderScreenshots)

	r.NoRoute(func(c *gin.Context) {
		NotFound(c, ErrCodeNotFound, "route "+c.Request.URL.Path+" not found")
	})
	return r
}
