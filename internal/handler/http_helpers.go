package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/bitacora/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func respondValidation(c *gin.Context, err error) bool {
	fields, ok := formErrors(err)
	if !ok {
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "datos inválidos", "fields": fields})
	return true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if respondValidation(c, err) {
			return false
		}
		respondError(c, http.StatusBadRequest, "JSON inválido")
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

func parseUintSlice(values []string) []uint {
	ids := make([]uint, 0, len(values))
	for _, raw := range values {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		parsed, err := strconv.ParseUint(trimmed, 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, uint(parsed))
	}
	return ids
}

func parseOptionalUint(raw string) *uint {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	parsed, err := strconv.ParseUint(trimmed, 10, 32)
	if err != nil || parsed == 0 {
		return nil
	}
	id := uint(parsed)
	return &id
}

// pageNumber reads ?page=N. A missing value is page 1; anything that is not a
// positive integer reports false.
func pageNumber(c *gin.Context) (int, bool) {
	raw, present := c.GetQuery("page")
	if !present {
		return 1, true
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// safeNext keeps only same-site absolute paths.
func safeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	parsed, err := url.Parse(next)
	if err != nil || parsed.Host != "" || parsed.Scheme != "" {
		return ""
	}
	return next
}

func redirectToLogin(c *gin.Context) {
	target := "/accounts/login/?next=" + url.QueryEscape(c.Request.URL.RequestURI())
	c.Redirect(http.StatusFound, target)
	c.Abort()
}

var registerOnce sync.Once

// registerFormFieldNames makes validator report form/json keys instead of Go
// field names.
func registerFormFieldNames() {
	registerOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		engine.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"form", "json"} {
				name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return field.Name
		})
	})
}

// formErrors turns binding and service validation failures into field messages.
func formErrors(err error) (service.ValidationErrors, bool) {
	if verrs, ok := service.AsValidationErrors(err); ok {
		return verrs, true
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, false
	}

	out := service.ValidationErrors{}
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), validationMessage(fe))
	}
	return out, true
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return service.RequiredMessage
	case "max":
		if n, err := strconv.Atoi(fe.Param()); err == nil {
			return service.MaxLengthMessage(n)
		}
	case "min":
		return fmt.Sprintf("Asegúrese de que este valor tenga al menos %s caracteres.", fe.Param())
	case "email":
		return "Introduzca una dirección de correo electrónico válida."
	case "url", "http_url":
		return "Introduzca una URL válida."
	case "eqfield":
		return "Los dos campos de contraseña no coinciden."
	}
	return "Introduzca un valor válido."
}
