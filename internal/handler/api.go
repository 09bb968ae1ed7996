package handler

import (
	"net/http"
	"time"

	"github.com/bitacora/internal/config"
	"github.com/bitacora/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db         *gorm.DB
	articles   *service.ArticleService
	categories *service.CategoryService
	tags       *service.TagService
	socials    *service.SocialLinkService
	about      *service.AboutService
	site       *service.SiteContextService
	accounts   *service.AccountService
	images     *service.ImageStore
	loc        *time.Location
	admin      config.AdminSite
	log        *zap.Logger
}

// Options carries the settings NewAPI needs besides the database.
type Options struct {
	UploadDir   string
	UploadURL   string
	SiteBaseURL string
	Location    *time.Location
	Tokens      *service.TokenIssuer
	Mailer      service.Mailer
	Admin       config.AdminSite
	Logger      *zap.Logger
}

const siteContextKey = "__site_context"

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, opts Options) *API {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = service.NewTokenIssuer("", 0)
	}

	registerFormFieldNames()

	images := service.NewImageStore(opts.UploadDir, opts.UploadURL, log)
	return &API{
		db:         gdb,
		articles:   service.NewArticleService(gdb, images, loc, log),
		categories: service.NewCategoryService(gdb),
		tags:       service.NewTagService(gdb),
		socials:    service.NewSocialLinkService(gdb),
		about:      service.NewAboutService(gdb),
		site:       service.NewSiteContextService(gdb, loc),
		accounts:   service.NewAccountService(gdb, tokens, opts.Mailer, opts.SiteBaseURL, log),
		images:     images,
		loc:        loc,
		admin:      opts.Admin,
		log:        log,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

// Accounts exposes the account service, used by the sweep job.
func (a *API) Accounts() *service.AccountService {
	return a.accounts
}

// Images exposes the upload store for template helpers.
func (a *API) Images() *service.ImageStore {
	return a.images
}

// Location is the zone dates are displayed in.
func (a *API) Location() *time.Location {
	return a.loc
}

func (a *API) siteContext(c *gin.Context) service.SiteContext {
	if cached, exists := c.Get(siteContextKey); exists {
		if view, ok := cached.(service.SiteContext); ok {
			return view
		}
	}

	view, err := a.site.Build()
	if err != nil {
		a.log.Error("build site context", zap.Error(err))
		c.Error(err)
	}

	c.Set(siteContextKey, view)
	return view
}

// renderHTML 在渲染模板时附加页面公共部分：关于、分类、归档、社交链接、当前用户与提示信息。
func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	site := a.siteContext(c)
	if _, exists := payload["site"]; !exists {
		payload["site"] = site
	}
	if _, exists := payload["currentUser"]; !exists {
		payload["currentUser"] = currentAccount(c)
	}
	if _, exists := payload["flashes"]; !exists {
		payload["flashes"] = popFlashes(c)
	}
	if _, exists := payload["errors"]; !exists {
		payload["errors"] = service.ValidationErrors{}
	}
	if _, exists := payload["year"]; !exists {
		payload["year"] = time.Now().Year()
	}

	c.HTML(status, template, payload)
}

func (a *API) renderNotFound(c *gin.Context) {
	a.renderHTML(c, http.StatusNotFound, "404.html", gin.H{"title": "Página no encontrada"})
}

func (a *API) renderServerError(c *gin.Context, err error) {
	a.log.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	c.HTML(http.StatusInternalServerError, "500.html", gin.H{"title": "Error del servidor"})
}

// NotFound renders the 404 page for unmatched routes.
func (a *API) NotFound(c *gin.Context) {
	a.renderNotFound(c)
}
