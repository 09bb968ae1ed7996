package handler

import (
	"errors"
	"net/http"

	"github.com/bitacora/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UploadContentImage stores an image pasted into an article body and returns
// its public URL in the shape the markdown editor expects.
func (a *API) UploadContentImage(c *gin.Context) {
	account := currentAccount(c)
	if !service.CanCreateArticle(account) {
		c.JSON(http.StatusForbidden, gin.H{"error": "acceso denegado", "success": 0})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no se encontró la imagen", "success": 0})
		return
	}
	if file.Size > service.MaxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "la imagen es demasiado grande", "success": 0})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no se pudo leer la imagen", "success": 0})
		return
	}
	defer src.Close()

	rel, err := a.images.Save(src, service.ContentImageDir)
	if err != nil {
		if errors.Is(err, service.ErrImageInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "solo se permiten imágenes", "success": 0})
			return
		}
		a.log.Error("store content image", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo guardar la imagen", "success": 0})
		return
	}

	fileURL := a.images.URL(rel)
	c.JSON(http.StatusOK, gin.H{
		"success": 1,
		"message": "imagen subida",
		"data": gin.H{
			"filePath": fileURL,
			"url":      fileURL,
		},
	})
}
