package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bitacora/internal/handler"
	"github.com/bitacora/web"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Options configures SetupRouter.
type Options struct {
	SessionSecret string
	UploadDir     string
	UploadURLPath string
	Logger        *zap.Logger
	// AuthLimiter throttles POSTs to login and signup; nil disables it.
	AuthLimiter *handler.IPRateLimiter
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) (*gin.Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(requestLogger(logger), gin.Recovery())

	// 配置会话中间件
	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 14 * 24 * 60 * 60, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions("bitacora_session", store))
	r.Use(api.LoadAccount())

	// 加载模板并添加自定义函数
	tmpl, err := web.ParseTemplates(handler.TemplateFuncs(api.Images(), api.Location()))
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	// 上传文件
	if opts.UploadURLPath != "" && opts.UploadDir != "" {
		r.Static(opts.UploadURLPath, opts.UploadDir)
	}

	registerRoutes(r, api, opts.AuthLimiter)
	return r, nil
}

func registerRoutes(r *gin.Engine, api *handler.API, limiter *handler.IPRateLimiter) {
	r.NoRoute(api.NotFound)

	// 公开页面
	r.GET("/", api.ShowHome)
	r.GET("/articulo/:slug/", api.ShowArticle)
	r.GET("/categoria/:slug/", api.ShowCategory)
	r.GET("/autor/:username/", api.ShowAuthor)
	r.GET("/archivo/:year/", api.ShowArchiveYear)
	r.GET("/archivo/:year/:month", api.ShowArchiveMonth)

	// 文章编辑
	r.GET("/crear_articulo/", api.ShowCreateArticle)
	r.POST("/crear_articulo/", api.CreateArticle)
	r.GET("/actualizar_articulo/:slug", api.ShowUpdateArticle)
	r.POST("/actualizar_articulo/:slug", api.UpdateArticle)
	r.GET("/eliminar_articulo/:slug", api.ShowDeleteArticle)
	r.POST("/eliminar_articulo/:slug", api.DeleteArticle)
	r.POST("/subir_imagen/", api.UploadContentImage)

	// 账户
	limited := handler.RateLimit(limiter)
	r.GET("/signup/", api.ShowSignup)
	r.POST("/signup/", limited, api.Signup)
	r.GET("/confirmacion/:code/:user/", api.Confirm)
	r.GET("/accounts/login/", api.ShowLogin)
	r.POST("/accounts/login/", limited, api.Login)
	r.GET("/accounts/logout/", api.Logout)
	r.POST("/accounts/logout/", api.Logout)

	// 后台管理路由
	admin := r.Group("/admin")
	admin.Use(api.RequireSuperuser())
	{
		admin.GET("/", api.ShowDashboard)

		apiGroup := admin.Group("/api")
		{
			apiGroup.GET("/articles", api.GetArticles)
			apiGroup.PUT("/articles/:id/publish", api.SetArticlePublished)
			apiGroup.DELETE("/articles/:id", api.AdminDeleteArticle)

			apiGroup.GET("/categories", api.GetCategories)
			apiGroup.POST("/categories", api.CreateCategory)
			apiGroup.PUT("/categories/:id", api.UpdateCategory)
			apiGroup.DELETE("/categories/:id", api.DeleteCategory)

			apiGroup.GET("/tags", api.GetTags)
			apiGroup.POST("/tags", api.CreateTag)
			apiGroup.PUT("/tags/:id", api.UpdateTag)
			apiGroup.DELETE("/tags/:id", api.DeleteTag)

			apiGroup.GET("/social-links", api.GetSocialLinks)
			apiGroup.GET("/social-links/icons", api.GetSocialIcons)
			apiGroup.POST("/social-links", api.CreateSocialLink)
			apiGroup.PUT("/social-links/:id", api.UpdateSocialLink)
			apiGroup.DELETE("/social-links/:id", api.DeleteSocialLink)

			apiGroup.GET("/about", api.GetAboutBlurbs)
			apiGroup.POST("/about", api.CreateAboutBlurb)
			apiGroup.PUT("/about/:id", api.UpdateAboutBlurb)
			apiGroup.DELETE("/about/:id", api.DeleteAboutBlurb)

			apiGroup.GET("/accounts", api.GetAccounts)
			apiGroup.PUT("/accounts/:id/roles", api.SetAccountRole)
		}
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("request", fields...)
			return
		}
		logger.Debug("request", fields...)
	}
}
