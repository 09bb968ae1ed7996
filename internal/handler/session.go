package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bitacora/internal/db"
	"github.com/bitacora/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	sessionAccountKey = "account_id"
	currentAccountKey = "__current_account"
)

// Flash levels rendered by the templates.
const (
	FlashInfo    = "info"
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot message carried across a redirect.
type Flash struct {
	Level   string
	Message string
}

// LoadAccount 从会话中读取当前账户并放入上下文；失效的会话会被清除。
func (a *API) LoadAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		id, ok := session.Get(sessionAccountKey).(uint)
		if !ok || id == 0 {
			c.Next()
			return
		}

		account, err := a.accounts.GetByID(id)
		switch {
		case err == nil && account.IsActive:
			c.Set(currentAccountKey, account)
		case err == nil || errors.Is(err, service.ErrAccountNotFound):
			session.Delete(sessionAccountKey)
			_ = session.Save()
		default:
			a.log.Warn("load session account", zap.Uint("account_id", id), zap.Error(err))
		}
		c.Next()
	}
}

func currentAccount(c *gin.Context) *db.Account {
	if value, exists := c.Get(currentAccountKey); exists {
		if account, ok := value.(*db.Account); ok {
			return account
		}
	}
	return nil
}

// RequireSuperuser 限制只有激活的超级用户才能访问后台。
func (a *API) RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !service.CanAdminister(currentAccount(c)) {
			if isJSONRequest(c) {
				respondError(c, http.StatusForbidden, "acceso denegado")
				c.Abort()
				return
			}
			redirectToLogin(c)
			return
		}
		c.Next()
	}
}

func isJSONRequest(c *gin.Context) bool {
	return c.ContentType() == gin.MIMEJSON || c.GetHeader("Accept") == gin.MIMEJSON
}

// addFlash queues a message for the next page; flashRedirect persists it.
func addFlash(c *gin.Context, level, message string) {
	sessions.Default(c).AddFlash(level + "|" + message)
}

// flashRedirect saves the session once, so the response carries a single
// cookie with every queued flash, and redirects to location.
func flashRedirect(c *gin.Context, location string) {
	_ = sessions.Default(c).Save()
	c.Redirect(http.StatusFound, location)
}

func popFlashes(c *gin.Context) []Flash {
	session := sessions.Default(c)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = session.Save()

	flashes := make([]Flash, 0, len(raw))
	for _, item := range raw {
		text, ok := item.(string)
		if !ok {
			continue
		}
		level, message, found := strings.Cut(text, "|")
		if !found {
			level, message = FlashInfo, text
		}
		flashes = append(flashes, Flash{Level: level, Message: message})
	}
	return flashes
}

func logIn(c *gin.Context, account *db.Account) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(sessionAccountKey, account.ID)
	return session.Save()
}

func logOut(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	return session.Save()
}
