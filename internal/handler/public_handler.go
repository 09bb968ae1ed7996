package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/bitacora/internal/db"
	"github.com/bitacora/internal/service"
	"github.com/gin-gonic/gin"
)

type articleLister func(page int) (*service.Page[db.Article], error)

// renderListing is shared by every paginated public view: read the page
// number, run the query, render. Bad or out-of-range pages and empty
// archive periods are 404s.
func (a *API) renderListing(c *gin.Context, template string, data gin.H, list articleLister) {
	number, ok := pageNumber(c)
	if !ok {
		a.renderNotFound(c)
		return
	}

	page, err := list(number)
	if err != nil {
		if errors.Is(err, service.ErrPageOutOfRange) ||
			errors.Is(err, service.ErrInvalidArchiveDate) ||
			errors.Is(err, service.ErrEmptyArchive) {
			a.renderNotFound(c)
			return
		}
		a.renderServerError(c, err)
		return
	}

	payload := gin.H{
		"articles": page.Items,
		"page":     page,
	}
	for key, value := range data {
		payload[key] = value
	}
	a.renderHTML(c, http.StatusOK, template, payload)
}

// ShowHome renders the newest published articles.
func (a *API) ShowHome(c *gin.Context) {
	a.renderListing(c, "inicio.html", gin.H{"title": "Inicio"}, a.articles.ListPublished)
}

// ShowArticle renders a single article by slug.
func (a *API) ShowArticle(c *gin.Context) {
	article, err := a.articles.GetBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			a.renderNotFound(c)
			return
		}
		a.renderServerError(c, err)
		return
	}

	a.renderHTML(c, http.StatusOK, "articulo.html", gin.H{
		"title":     article.Title,
		"article":   article,
		"content":   renderMarkdown(article.Body),
		"canManage": service.CanManageArticle(currentAccount(c), article),
	})
}

// ShowCategory lists the published articles of one category.
func (a *API) ShowCategory(c *gin.Context) {
	category, err := a.categories.GetBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			a.renderNotFound(c)
			return
		}
		a.renderServerError(c, err)
		return
	}

	a.renderListing(c, "categoria.html", gin.H{"title": category.Name, "category": category},
		func(page int) (*service.Page[db.Article], error) {
			_, result, err := a.articles.ListByCategory(category.Slug, page)
			return result, err
		})
}

// ShowAuthor lists the published articles written by one account.
func (a *API) ShowAuthor(c *gin.Context) {
	author, err := a.accounts.GetByUsername(c.Param("username"))
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			a.renderNotFound(c)
			return
		}
		a.renderServerError(c, err)
		return
	}

	a.renderListing(c, "autor.html", gin.H{"title": author.Username, "author": author},
		func(page int) (*service.Page[db.Article], error) {
			_, result, err := a.articles.ListByAuthor(author.Username, page)
			return result, err
		})
}

// ShowArchiveMonth lists the published articles of one calendar month.
func (a *API) ShowArchiveMonth(c *gin.Context) {
	year, errYear := strconv.Atoi(c.Param("year"))
	month, errMonth := strconv.Atoi(c.Param("month"))
	if errYear != nil || errMonth != nil || month < 1 || month > 12 || year < 1 {
		a.renderNotFound(c)
		return
	}

	a.renderListing(c, "archivo.html", gin.H{
		"title":        service.SpanishMonth(time.Month(month)) + " " + strconv.Itoa(year),
		"archiveYear":  year,
		"archiveMonth": service.SpanishMonth(time.Month(month)),
	}, func(page int) (*service.Page[db.Article], error) {
		return a.articles.ListByMonth(year, month, page)
	})
}

// ShowArchiveYear lists the published articles of one year.
func (a *API) ShowArchiveYear(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1 {
		a.renderNotFound(c)
		return
	}

	a.renderListing(c, "archivo.html", gin.H{
		"title":       strconv.Itoa(year),
		"archiveYear": year,
	}, func(page int) (*service.Page[db.Article], error) {
		return a.articles.ListByYear(year, page)
	})
}
