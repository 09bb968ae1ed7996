package handler

import (
	"net/http"

	"github.com/bitacora/internal/service"
	"github.com/bitacora/internal/view"
	"github.com/gin-gonic/gin"
)

type socialLinkRequest struct {
	Name string `json:"name" binding:"required,max=150"`
	URL  string `json:"url" binding:"omitempty,max=300,url"`
	Icon string `json:"icon" binding:"max=150"`
}

type aboutRequest struct {
	Description string `json:"description" binding:"required,max=450"`
}

func (r socialLinkRequest) input() service.SocialLinkInput {
	return service.SocialLinkInput{Name: r.Name, URL: r.URL, Icon: r.Icon}
}

// GetSocialLinks lists the footer links.
func (a *API) GetSocialLinks(c *gin.Context) {
	links, err := a.socials.List()
	if err != nil {
		a.respondServiceError(c, err, nil, "no se pudieron listar las redes sociales")
		return
	}
	c.JSON(http.StatusOK, gin.H{"socialLinks": links})
}

// GetSocialIcons lists the icon keys rendered with a built-in SVG.
func (a *API) GetSocialIcons(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"icons": view.SocialIconOptions()})
}

func (a *API) CreateSocialLink(c *gin.Context) {
	var req socialLinkRequest
	if !bindJSON(c, &req) {
		return
	}

	link, err := a.socials.Create(req.input())
	if err != nil {
		a.respondServiceError(c, err, nil, "no se pudo crear la red social")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "red social creada", "socialLink": link})
}

func (a *API) UpdateSocialLink(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "id inválido")
		return
	}

	var req socialLinkRequest
	if !bindJSON(c, &req) {
		return
	}

	link, err := a.socials.Update(id, req.input())
	if err != nil {
		a.respondServiceError(c, err, service.ErrSocialLinkNotFound, "no se pudo actualizar la red social")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "red social actualizada", "socialLink": link})
}

func (a *API) DeleteSocialLink(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "id inválido")
		return
	}

	if err := a.socials.Delete(id); err != nil {
		a.respondServiceError(c, err, service.ErrSocialLinkNotFound, "no se pudo eliminar la red social")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "red social eliminada"})
}

// GetAboutBlurbs lists every "acerca de" text, newest first; the first one is shown on the site.
func (a *API) GetAboutBlurbs(c *gin.Context) {
	items, err := a.about.List()
	if err != nil {
		a.respondServiceError(c, err, nil, "no se pudieron listar los textos")
		return
	}
	c.JSON(http.StatusOK, gin.H{"about": items})
}

func (a *API) CreateAboutBlurb(c *gin.Context) {
	var req aboutRequest
	if !bindJSON(c, &req) {
		return
	}

	about, err := a.about.Create(req.Description)
	if err != nil {
		a.respondServiceError(c, err, nil, "no se pudo guardar el texto")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "texto creado", "about": about})
}

func (a *API) UpdateAboutBlurb(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "id inválido")
		return
	}

	var req aboutRequest
	if !bindJSON(c, &req) {
		return
	}

	about, err := a.about.Update(id, req.Description)
	if err != nil {
		a.respondServiceError(c, err, service.ErrAboutNotFound, "no se pudo actualizar el texto")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "texto actualizado", "about": about})
}

func (a *API) DeleteAboutBlurb(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "id inválido")
		return
	}

	if err := a.about.Delete(id); err != nil {
		a.respondServiceError(c, err, service.ErrAboutNotFound, "no se pudo eliminar el texto")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "texto eliminado"})
}
