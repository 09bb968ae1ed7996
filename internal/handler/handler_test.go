package handler

import (
	"fmt"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/bitacora/internal/config"
	"github.com/bitacora/internal/db"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// stubHTMLRender records the last template rendered instead of executing it.
type stubHTMLRender struct {
	mu   sync.Mutex
	name string
	data gin.H
}

type stubHTMLInstance struct{}

func (r *stubHTMLRender) Instance(name string, data interface{}) render.Render {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.name = name
	r.data, _ = data.(gin.H)
	return stubHTMLInstance{}
}

func (r *stubHTMLRender) last() (string, gin.H) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.name, r.data
}

func (stubHTMLInstance) Render(http.ResponseWriter) error {
	return nil
}

func (stubHTMLInstance) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

func setupHandlerTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	gdb, err := db.Open(db.Options{
		Driver: "sqlite",
		Path:   fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", time.Now().UnixNano()),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	return gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func newTestAPI(t *testing.T) (*API, *gorm.DB) {
	t.Helper()

	gdb, cleanup := setupHandlerTestDB(t)
	t.Cleanup(cleanup)

	api := NewAPI(gdb, Options{
		UploadDir:   t.TempDir(),
		UploadURL:   "/media",
		SiteBaseURL: "http://blog.test",
		Admin:       config.AdminSite{Header: "Cabecera", IndexTitle: "Inicio admin", SiteTitle: "Sitio"},
	})
	return api, gdb
}

// newTestRouter wires sessions and a stub renderer around the handlers under test.
func newTestRouter(api *API) (*gin.Engine, *stubHTMLRender) {
	stub := &stubHTMLRender{}
	router := gin.New()
	router.HTMLRender = stub
	router.Use(sessions.Sessions("bitacora_session", cookie.NewStore([]byte("test-secret"))))
	router.Use(api.LoadAccount())
	return router, stub
}
