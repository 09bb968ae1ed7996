package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bitacora/internal/db"
	"github.com/gin-gonic/gin"
)

func TestFlashesSurviveOneRedirect(t *testing.T) {
	api, _ := newTestAPI(t)
	router, _ := newTestRouter(api)
	router.GET("/set", func(c *gin.Context) {
		addFlash(c, FlashSuccess, "guardado")
		addFlash(c, FlashError, "falló | parcialmente")
		flashRedirect(c, "/read")
	})
	router.GET("/read", func(c *gin.Context) {
		c.JSON(http.StatusOK, popFlashes(c))
	})

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/set", nil))
	if first.Code != http.StatusFound || first.Header().Get("Location") != "/read" {
		t.Fatalf("expected redirect to /read, got %d %q", first.Code, first.Header().Get("Location"))
	}
	if n := len(first.Header().Values("Set-Cookie")); n != 1 {
		t.Fatalf("expected one session cookie, got %d", n)
	}
	cookies := first.Result().Cookies()

	read := func() *httptest.ResponseRecorder {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/read", nil)
		for _, cookie := range cookies {
			request.AddCookie(cookie)
		}
		router.ServeHTTP(recorder, request)
		if fresh := recorder.Result().Cookies(); len(fresh) > 0 {
			cookies = fresh
		}
		return recorder
	}

	body := read().Body.String()
	if !strings.Contains(body, `"Level":"success","Message":"guardado"`) {
		t.Fatalf("missing success flash: %s", body)
	}
	if !strings.Contains(body, `"Level":"error","Message":"falló | parcialmente"`) {
		t.Fatalf("message after the first separator must be kept: %s", body)
	}

	if again := read().Body.String(); again != "null" {
		t.Fatalf("flashes should be consumed, got %s", again)
	}
}

func TestLoadAccountDropsInactiveSessions(t *testing.T) {
	api, gdb := newTestAPI(t)
	account := db.Account{Username: "inactiva", Email: "inactiva@example.cl", IsActive: true}
	_ = account.SetPassword("clave-segura")
	gdb.Create(&account)

	router, _ := newTestRouter(api)
	router.GET("/login", func(c *gin.Context) {
		_ = logIn(c, &account)
		c.Status(http.StatusNoContent)
	})
	router.GET("/whoami", func(c *gin.Context) {
		if current := currentAccount(c); current != nil {
			c.String(http.StatusOK, current.Username)
			return
		}
		c.String(http.StatusOK, "anonimo")
	})

	login := httptest.NewRecorder()
	router.ServeHTTP(login, httptest.NewRequest(http.MethodGet, "/login", nil))
	cookies := login.Result().Cookies()

	whoami := func() string {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		for _, cookie := range cookies {
			request.AddCookie(cookie)
		}
		router.ServeHTTP(recorder, request)
		return recorder.Body.String()
	}

	if got := whoami(); got != "inactiva" {
		t.Fatalf("expected logged in account, got %q", got)
	}

	gdb.Model(&account).Update("is_active", false)
	if got := whoami(); got != "anonimo" {
		t.Fatalf("inactive account must not stay logged in, got %q", got)
	}
}
