package handler

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bitacora/internal/db"
	"github.com/gin-gonic/gin"
)

func contentImageRequest(t *testing.T, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "pegada.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write(data)
	writer.Close()

	request := httptest.NewRequest(http.MethodPost, "/subir_imagen/", &body)
	request.Header.Set("Content-Type", writer.FormDataContentType())
	return request
}

func TestUploadContentImage(t *testing.T) {
	api, gdb := newTestAPI(t)
	author := db.Account{Username: "autora", Email: "autora@example.cl", IsActive: true}
	_ = author.SetPassword("clave-segura")
	gdb.Create(&author)
	if _, err := api.Accounts().SetRole(author.ID, db.RoleCollaborator, true); err != nil {
		t.Fatalf("grant: %v", err)
	}

	router, _ := newTestRouter(api)
	router.GET("/login", func(c *gin.Context) {
		_ = logIn(c, &author)
		c.Status(http.StatusNoContent)
	})
	router.POST("/subir_imagen/", api.UploadContentImage)

	var img bytes.Buffer
	if err := png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode: %v", err)
	}

	anonymous := httptest.NewRecorder()
	router.ServeHTTP(anonymous, contentImageRequest(t, img.Bytes()))
	if anonymous.Code != http.StatusForbidden {
		t.Fatalf("anonymous upload should be forbidden, got %d", anonymous.Code)
	}

	login := httptest.NewRecorder()
	router.ServeHTTP(login, httptest.NewRequest(http.MethodGet, "/login", nil))
	cookies := login.Result().Cookies()

	upload := func(data []byte) *httptest.ResponseRecorder {
		recorder := httptest.NewRecorder()
		request := contentImageRequest(t, data)
		for _, cookie := range cookies {
			request.AddCookie(cookie)
		}
		router.ServeHTTP(recorder, request)
		return recorder
	}

	recorder := upload(img.Bytes())
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var payload struct {
		Success int `json:"success"`
		Data    struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Success != 1 || !strings.HasPrefix(payload.Data.URL, "/media/blog/articulos/contenido/") {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if !api.Images().Exists(strings.TrimPrefix(payload.Data.URL, "/media/")) {
		t.Fatalf("image should be stored")
	}

	if rr := upload([]byte("no soy una imagen")); rr.Code != http.StatusBadRequest {
		t.Fatalf("non-image should be rejected, got %d", rr.Code)
	}
}
