package handler

import (
	"errors"
	"net/http"

	"github.com/bitacora/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type taxonomyRequest struct {
	Name   string `json:"name" binding:"required,max=200"`
	Active *bool  `json:"active"`
}

// respondServiceError maps service errors onto JSON responses.
func (a *API) respondServiceError(c *gin.Context, err error, notFound error, message string) {
	switch {
	case notFound != nil && errors.Is(err, notFound):
		respondError(c, http.StatusNotFound, "no encontrado")
	case respondValidation(c, err):
	default:
		a.log.Error(message, zap.String("path", c.Request.URL.Path), zap.Error(err))
		respondError(c, http.StatusInternalServerError, message)
	}
}

// GetTags 获取标签列表
func (a *API) GetTags(c *gin.Context) {
	tags, err := a.tags.List()
	if err != nil {
		a.respondServiceError(c, err, nil, "no se pudieron listar las etiquetas")
		return
	}

	response := make([]gin.H, 0, len(tags))
	for _, tag := range tags {
		response = append(response, gin.H{
			"id":     tag.ID,
			"name":   tag.Name,
			"active": tag.Active,
		})
	}

	c.JSON(http.StatusOK, gin.H{"tags": response})
}

// CreateTag 创建新标签
func (a *API) CreateTag(c *gin.Context) {
	var req taxonomyRequest
	if !bindJSON(c, &req) {
		return
	}

	tag, err := a.tags.Create(service.TagInput{Name: req.Name, Active: req.Active})
	if err != nil {
		a.respondServiceError(c, err, nil, "no se pudo crear la etiqueta")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "etiqueta creada", "tag": tag})
}

// UpdateTag 更新标签
func (a *API) UpdateTag(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "id inválido")
		return
	}

	var req taxonomyRequest
	if !bindJSON(c, &req) {
		return
	}

	tag, err := a.tags.Update(id, service.TagInput{Name: req.Name, Active: req.Active})
	if err != nil {
		a.respondServiceError(c, err, service.ErrTagNotFound, "no se pudo actualizar la etiqueta")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "etiqueta actualizada", "tag": tag})
}

// DeleteTag 删除标签，同时解除与文章的关联
func (a *API) DeleteTag(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "id inválido")
		return
	}

	if err := a.tags.Delete(id); err != nil {
		a.respondServiceError(c, err, service.ErrTagNotFound, "no se pudo eliminar la etiqueta")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "etiqueta eliminada"})
}

// GetCategories lists every category, active or not.
func (a *API) GetCategories(c *gin.Context) {
	categories, err := a.categories.List()
	if err != nil {
		a.respondServiceError(c, err, nil, "no se pudieron listar las categorías")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CreateCategory 创建分类
func (a *API) CreateCategory(c *gin.Context) {
	var req taxonomyRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := a.categories.Create(service.CategoryInput{Name: req.Name, Active: req.Active})
	if err != nil {
		a.respondServiceError(c, err, nil, "no se pudo crear la categoría")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "categoría creada", "category": category})
}

// UpdateCategory 更新分类
func (a *API) UpdateCategory(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "id inválido")
		return
	}

	var req taxonomyRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := a.categories.Update(id, service.CategoryInput{Name: req.Name, Active: req.Active})
	if err != nil {
		a.respondServiceError(c, err, service.ErrCategoryNotFound, "no se pudo actualizar la categoría")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "categoría actualizada", "category": category})
}

// DeleteCategory 删除分类，文章保留但不再属于该分类
func (a *API) DeleteCategory(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "id inválido")
		return
	}

	if err := a.categories.Delete(id); err != nil {
		a.respondServiceError(c, err, service.ErrCategoryNotFound, "no se pudo eliminar la categoría")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "categoría eliminada"})
}
