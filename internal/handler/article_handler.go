package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/bitacora/internal/db"
	"github.com/bitacora/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type articleForm struct {
	Title      string   `form:"titulo" binding:"required,max=250"`
	Summary    string   `form:"bajada" binding:"required,max=150"`
	Body       string   `form:"contenido" binding:"required"`
	Category   string   `form:"categoria"`
	Tags       []string `form:"etiquetas"`
	ClearImage string   `form:"imagen-clear"`
}

// articleFormView is what the article templates read back into the inputs.
type articleFormView struct {
	Title      string
	Summary    string
	Body       string
	CategoryID uint
	TagIDs     []uint
	ImagePath  string
}

func viewFromArticle(article *db.Article) articleFormView {
	view := articleFormView{
		Title:     article.Title,
		Summary:   article.Summary,
		Body:      article.Body,
		ImagePath: article.ImagePath,
	}
	if article.CategoryID != nil {
		view.CategoryID = *article.CategoryID
	}
	for _, tag := range article.Tags {
		view.TagIDs = append(view.TagIDs, tag.ID)
	}
	return view
}

func viewFromForm(form articleForm, imagePath string) articleFormView {
	view := articleFormView{
		Title:     form.Title,
		Summary:   form.Summary,
		Body:      form.Body,
		TagIDs:    parseUintSlice(form.Tags),
		ImagePath: imagePath,
	}
	if id := parseOptionalUint(form.Category); id != nil {
		view.CategoryID = *id
	}
	return view
}

// ShowCreateArticle renders the empty article form for collaborators.
func (a *API) ShowCreateArticle(c *gin.Context) {
	if !service.CanCreateArticle(currentAccount(c)) {
		redirectToLogin(c)
		return
	}
	a.renderArticleForm(c, http.StatusOK, "crear_articulo.html", articleFormView{}, nil, gin.H{"title": "Crear artículo"})
}

// CreateArticle stores a new article written by the current account.
func (a *API) CreateArticle(c *gin.Context) {
	account := currentAccount(c)
	if !service.CanCreateArticle(account) {
		redirectToLogin(c)
		return
	}

	var form articleForm
	if err := c.ShouldBind(&form); err != nil {
		a.renderArticleFormError(c, "crear_articulo.html", viewFromForm(form, ""), err, gin.H{"title": "Crear artículo"})
		return
	}

	image, closeImage, err := uploadedImage(c)
	if err != nil {
		a.renderArticleFormError(c, "crear_articulo.html", viewFromForm(form, ""), err, gin.H{"title": "Crear artículo"})
		return
	}
	defer closeImage()

	input := articleInputFromForm(form, image)
	input.AuthorID = &account.ID

	article, err := a.articles.Create(input)
	if err != nil {
		a.renderArticleFormError(c, "crear_articulo.html", viewFromForm(form, ""), err, gin.H{"title": "Crear artículo"})
		return
	}

	a.log.Info("article submitted", zap.Uint("article_id", article.ID), zap.Uint("author_id", account.ID))
	c.Redirect(http.StatusFound, "/")
}

// ShowUpdateArticle renders the edit form for the author or a superuser.
func (a *API) ShowUpdateArticle(c *gin.Context) {
	article, ok := a.managedArticle(c)
	if !ok {
		return
	}
	a.renderArticleForm(c, http.StatusOK, "actualizar_articulo.html", viewFromArticle(article), nil, gin.H{
		"title":   "Actualizar artículo",
		"article": article,
	})
}

// UpdateArticle applies the edit form and redirects to the article.
func (a *API) UpdateArticle(c *gin.Context) {
	article, ok := a.managedArticle(c)
	if !ok {
		return
	}

	data := gin.H{"title": "Actualizar artículo", "article": article}

	var form articleForm
	if err := c.ShouldBind(&form); err != nil {
		a.renderArticleFormError(c, "actualizar_articulo.html", viewFromForm(form, article.ImagePath), err, data)
		return
	}

	image, closeImage, err := uploadedImage(c)
	if err != nil {
		a.renderArticleFormError(c, "actualizar_articulo.html", viewFromForm(form, article.ImagePath), err, data)
		return
	}
	defer closeImage()

	updated, err := a.articles.Update(article.ID, articleInputFromForm(form, image))
	if err != nil {
		a.renderArticleFormError(c, "actualizar_articulo.html", viewFromForm(form, article.ImagePath), err, data)
		return
	}

	c.Redirect(http.StatusFound, "/articulo/"+updated.Slug+"/")
}

// ShowDeleteArticle asks for confirmation before deleting.
func (a *API) ShowDeleteArticle(c *gin.Context) {
	article, ok := a.managedArticle(c)
	if !ok {
		return
	}
	a.renderHTML(c, http.StatusOK, "eliminar_articulo.html", gin.H{
		"title":   "Eliminar artículo",
		"article": article,
	})
}

// DeleteArticle removes the article and its image.
func (a *API) DeleteArticle(c *gin.Context) {
	article, ok := a.managedArticle(c)
	if !ok {
		return
	}

	if err := a.articles.Delete(article.ID); err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			a.renderNotFound(c)
			return
		}
		a.renderServerError(c, err)
		return
	}

	addFlash(c, FlashSuccess, "El artículo fue eliminado.")
	flashRedirect(c, "/")
}

// managedArticle loads the article named in the URL and checks that the
// current account may change it. It writes the response when it returns false.
func (a *API) managedArticle(c *gin.Context) (*db.Article, bool) {
	article, err := a.articles.GetBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			a.renderNotFound(c)
			return nil, false
		}
		a.renderServerError(c, err)
		return nil, false
	}

	if !service.CanManageArticle(currentAccount(c), article) {
		redirectToLogin(c)
		return nil, false
	}
	return article, true
}

func (a *API) renderArticleForm(c *gin.Context, status int, template string, form articleFormView, errs service.ValidationErrors, data gin.H) {
	categories, err := a.categories.ListActive()
	if err != nil {
		a.renderServerError(c, err)
		return
	}
	tags, err := a.tags.ListActive()
	if err != nil {
		a.renderServerError(c, err)
		return
	}

	if errs == nil {
		errs = service.ValidationErrors{}
	}
	payload := gin.H{
		"form":       form,
		"errors":     errs,
		"categories": categories,
		"tags":       tags,
	}
	for key, value := range data {
		payload[key] = value
	}
	a.renderHTML(c, status, template, payload)
}

func (a *API) renderArticleFormError(c *gin.Context, template string, form articleFormView, err error, data gin.H) {
	errs, ok := formErrors(err)
	if !ok {
		a.renderServerError(c, err)
		return
	}
	a.renderArticleForm(c, http.StatusOK, template, form, errs, data)
}

func articleInputFromForm(form articleForm, image io.Reader) service.ArticleInput {
	return service.ArticleInput{
		Title:      strings.TrimSpace(form.Title),
		Summary:    strings.TrimSpace(form.Summary),
		Body:       form.Body,
		CategoryID: parseOptionalUint(form.Category),
		TagIDs:     parseUintSlice(form.Tags),
		Image:      image,
		ClearImage: form.ClearImage != "",
	}
}

const imageTooLargeMessage = "La imagen no puede superar los 8 MB."

// uploadedImage opens the optional "imagen" file. The returned closer is
// always safe to call.
func uploadedImage(c *gin.Context) (io.Reader, func(), error) {
	header, err := c.FormFile("imagen")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}
	if header.Size == 0 {
		return nil, func() {}, nil
	}
	if header.Size > service.MaxImageBytes {
		return nil, func() {}, service.ValidationErrors{"imagen": imageTooLargeMessage}
	}

	file, err := header.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return file, func() { closeQuietly(file) }, nil
}

func closeQuietly(f multipart.File) {
	_ = f.Close()
}
