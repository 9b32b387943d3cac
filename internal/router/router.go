package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sccsite/internal/config"
	"github.com/sccsite/internal/handler"
	"github.com/sccsite/internal/httpmiddleware"
	"github.com/sccsite/internal/view"
)

const sessionName = "scc_session"

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(cfg config.AppConfig, api *handler.API) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.MaxMultipartMemory = cfg.MaxUploadBytes

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionTTL / time.Second),
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	r.SetHTMLTemplate(view.Templates())

	// 本地存储模式下直接提供上传文件
	if cfg.StorageDriver == config.StorageLocal && cfg.UploadDir != "" {
		r.Static(uploadRoute(cfg.UploadURLPath), cfg.UploadDir)
	}

	r.GET("/healthz", handler.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := r.Group("/api")
	{
		public.GET("/team", api.ListTeam)
		public.GET("/team/departments", api.ListDepartments)
		public.GET("/events", api.ListEvents)
		public.GET("/events/:id", api.GetEvent)
		public.GET("/projects", api.ListProjects)
		public.GET("/gallery", api.ListGallery)
		public.GET("/announcements", api.ListAnnouncements)
		public.GET("/about", api.ListAbout)
		public.POST("/contact", httpmiddleware.RateLimit(cfg.ContactRatePerMinute, time.Minute), api.SubmitContact)
	}

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.GET("/login", api.RedirectIfAuthenticated(), api.ShowLoginPage)
		admin.POST("/login", api.Login)
		admin.GET("/logout", api.Logout)
		admin.POST("/logout", api.Logout)
		admin.GET("/api/session", api.SessionStatus)

		// 需要认证的后台路由
		authed := admin.Group("")
		authed.Use(api.RequireAdmin())
		{
			authed.GET("", api.ShowDashboard)

			apiGroup := authed.Group("/api")
			for _, routes := range api.ContentRoutes() {
				base := "/" + routes.Name()
				apiGroup.GET(base, routes.List)
				apiGroup.POST(base, routes.Create)
				apiGroup.GET(base+"/:id", routes.Get)
				apiGroup.PUT(base+"/:id", routes.Update)
				apiGroup.DELETE(base+"/:id", routes.Delete)
			}
			apiGroup.DELETE("/events/:id/gallery", api.RemoveEventGalleryImage)

			apiGroup.GET("/messages", api.ListMessages)
			apiGroup.PATCH("/messages/:id/read", api.MarkMessageRead)
			apiGroup.DELETE("/messages/:id", api.DeleteMessage)

			apiGroup.POST("/uploads/preview", api.PreviewUpload)
			apiGroup.GET("/sync", api.SyncStatus)
			apiGroup.POST("/sync", api.RunSync)
			apiGroup.GET("/dashboard", api.ShowDashboard)
		}
	}

	return r
}

func uploadRoute(urlPath string) string {
	urlPath = "/" + strings.Trim(strings.TrimSpace(urlPath), "/")
	if urlPath == "/" {
		return "/uploads"
	}
	return urlPath
}
