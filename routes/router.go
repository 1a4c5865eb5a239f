package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sciencejournal/controllers"
	"sciencejournal/middleware"
)

// Deps sind die Abhängigkeiten, die der Router verdrahtet.
type Deps struct {
	DB            *gorm.DB
	Logger        *zap.Logger
	Secret        string
	MetricsAPIKey string
	Resolver      middleware.PrincipalResolver

	Papers      *controllers.PaperController
	Conferences *controllers.ConferenceController
	Auth        *controllers.AuthController
}

// Setup registriert alle Routen des Portals.
func Setup(router *gin.Engine, d Deps) {
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(d.Logger))

	router.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			d.Logger.Error("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", middleware.APIKey(d.MetricsAPIKey), gin.WrapH(promhttp.Handler()))

	authenticated := router.Group("/", middleware.Authenticate(d.Secret, d.Resolver))
	setupAuthRoutes(authenticated, d)
	setupConferenceRoutes(authenticated, d)
	setupPaperRoutes(authenticated, d)
}

func setupAuthRoutes(rg *gin.RouterGroup, d Deps) {
	g := rg.Group("/auth")
	g.POST("/register", d.Auth.Register)
	g.POST("/login", d.Auth.Login)
	g.GET("/me", middleware.RequireAuth(), d.Auth.Me)
	g.GET("/antiforgery", middleware.RequireAuth(), d.Auth.AntiForgery)
}

func setupConferenceRoutes(rg *gin.RouterGroup, d Deps) {
	g := rg.Group("/conferences")
	g.GET("", d.Conferences.List)
	g.POST("", middleware.RequireAuth(), d.Conferences.Create)
}

func setupPaperRoutes(rg *gin.RouterGroup, d Deps) {
	pc := d.Papers
	rg.GET("/documents/:documentId", pc.GetPdfDocument)

	g := rg.Group("/papers")
	g.GET("", pc.Index)
	g.GET("/:id", pc.Details)

	user := g.Group("", middleware.RequireAuth())
	user.GET("/new", pc.CreateForm)
	user.GET("/mine", pc.MyPapers)
	user.GET("/pending", pc.ShowPendingPapers)
	user.GET("/:id/edit", pc.EditForm)
	user.GET("/:id/delete", pc.DeleteForm)
	user.GET("/:id/approve", pc.ApprovePaper)
	user.POST("/:id/approve", pc.ApprovePaper)
	user.GET("/:id/deny", pc.DenyPaper)
	user.POST("/:id/deny", pc.DenyPaper)
	user.GET("/:id/reviews", pc.ReviewHistory)

	forms := user.Group("", middleware.RequireAntiForgery(d.Secret))
	forms.POST("", pc.Create)
	forms.PUT("/:id", pc.Edit)
	forms.POST("/:id/edit", pc.Edit)
	forms.DELETE("/:id", pc.DeleteConfirmed)
	forms.POST("/:id/delete", pc.DeleteConfirmed)
}
