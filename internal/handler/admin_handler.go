package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bitacora/internal/db"
	"github.com/bitacora/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const adminArticlesPerPage = 20

type publishRequest struct {
	Published *bool `json:"published" binding:"required"`
}

type roleRequest struct {
	Role    string `json:"role" binding:"required,oneof=miembro colaborador"`
	Granted *bool  `json:"granted" binding:"required"`
}

// ShowDashboard 渲染后台主面板
func (a *API) ShowDashboard(c *gin.Context) {
	total, published, err := a.articles.CountAll()
	if err != nil {
		a.renderServerError(c, err)
		return
	}

	var categoryCount, tagCount, accountCount int64
	for _, count := range []struct {
		model any
		dest  *int64
	}{
		{&db.Category{}, &categoryCount},
		{&db.Tag{}, &tagCount},
		{&db.Account{}, &accountCount},
	} {
		if err := a.db.Model(count.model).Count(count.dest).Error; err != nil {
			a.renderServerError(c, err)
			return
		}
	}

	a.renderHTML(c, http.StatusOK, "admin.html", gin.H{
		"title":          a.admin.IndexTitle,
		"admin":          a.admin,
		"articleCount":   total,
		"publishedCount": published,
		"draftCount":     total - published,
		"categoryCount":  categoryCount,
		"tagCount":       tagCount,
		"accountCount":   accountCount,
	})
}

// GetArticles 获取文章列表，支持搜索与按作者、分类、标签筛选
func (a *API) GetArticles(c *gin.Context) {
	page := 1
	if raw := strings.TrimSpace(c.Query("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(c, http.StatusBadRequest, "página inválida")
			return
		}
		page = n
	}

	query := service.ArticleQuery{
		Search:     c.Query("search"),
		AuthorID:   parseOptionalUint(c.Query("author")),
		CategoryID: parseOptionalUint(c.Query("category")),
		TagID:      parseOptionalUint(c.Query("tag")),
	}
	switch c.Query("published") {
	case "true", "1":
		query.PublishedOnly = true
	}

	result, err := a.articles.ListForAdmin(query, page, adminArticlesPerPage)
	if err != nil {
		a.respondServiceError(c, err, service.ErrPageOutOfRange, "no se pudieron listar los artículos")
		return
	}

	items := make([]gin.H, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, articleJSON(&result.Items[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"articles":   items,
		"page":       result.Number,
		"totalPages": result.TotalPages,
		"total":      result.Total,
	})
}

// SetArticlePublished 切换文章的发布状态
func (a *API) SetArticlePublished(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "id inválido")
		return
	}

	var req publishRequest
	if !bindJSON(c, &req) {
		return
	}

	article, err := a.articles.SetPublished(id, *req.Published)
	if err != nil {
		a.respondServiceError(c, err, service.ErrArticleNotFound, "no se pudo cambiar el estado")
		return
	}

	a.log.Info("article publish toggled", zap.Uint("article_id", id), zap.Bool("published", article.Published))
	c.JSON(http.StatusOK, gin.H{"message": "estado actualizado", "article": articleJSON(article)})
}

// AdminDeleteArticle 删除文章及其图片
func (a *API) AdminDeleteArticle(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "id inválido")
		return
	}

	if err := a.articles.Delete(id); err != nil {
		a.respondServiceError(c, err, service.ErrArticleNotFound, "no se pudo eliminar el artículo")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "artículo eliminado"})
}

// GetAccounts lists accounts with their roles.
func (a *API) GetAccounts(c *gin.Context) {
	accounts, err := a.accounts.List()
	if err != nil {
		a.respondServiceError(c, err, nil, "no se pudieron listar las cuentas")
		return
	}

	items := make([]gin.H, 0, len(accounts))
	for i := range accounts {
		items = append(items, accountJSON(&accounts[i]))
	}
	c.JSON(http.StatusOK, gin.H{"accounts": items})
}

// SetAccountRole grants or revokes a role.
func (a *API) SetAccountRole(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "id inválido")
		return
	}

	var req roleRequest
	if !bindJSON(c, &req) {
		return
	}

	account, err := a.accounts.SetRole(id, db.Role(req.Role), *req.Granted)
	if err != nil {
		a.respondServiceError(c, err, service.ErrAccountNotFound, "no se pudo actualizar el rol")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "rol actualizado", "account": accountJSON(account)})
}

func articleJSON(article *db.Article) gin.H {
	out := gin.H{
		"id":        article.ID,
		"title":     article.Title,
		"slug":      article.Slug,
		"summary":   article.Summary,
		"published": article.Published,
		"image":     article.ImagePath,
		"createdAt": article.CreatedAt,
		"updatedAt": article.UpdatedAt,
	}
	if article.Author != nil {
		out["author"] = gin.H{"id": article.Author.ID, "username": article.Author.Username}
	}
	if article.Category != nil {
		out["category"] = gin.H{"id": article.Category.ID, "name": article.Category.Name, "slug": article.Category.Slug}
	}
	tags := make([]gin.H, 0, len(article.Tags))
	for _, tag := range article.Tags {
		tags = append(tags, gin.H{"id": tag.ID, "name": tag.Name})
	}
	out["tags"] = tags
	return out
}

func accountJSON(account *db.Account) gin.H {
	roles := make([]string, 0, len(account.Groups))
	for _, group := range account.Groups {
		roles = append(roles, string(group.Name))
	}
	return gin.H{
		"id":          account.ID,
		"username":    account.Username,
		"email":       account.Email,
		"isActive":    account.IsActive,
		"isSuperuser": account.IsSuperuser,
		"roles":       roles,
		"lastLogin":   account.LastLogin,
		"createdAt":   account.CreatedAt,
	}
}
