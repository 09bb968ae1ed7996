package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bitacora/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	invalidConfirmationMessage = "El enlace de confirmación es inválido."
	accountActivatedMessage    = "¡Tu cuenta ha sido activada! Ahora puedes iniciar sesión."
	signupSentMessage          = "Te enviamos un correo con el enlace para activar tu cuenta."
	signupMailFailedMessage    = "No pudimos enviar el correo de confirmación. Inténtalo de nuevo más tarde."
	invalidLoginMessage        = "Por favor, introduzca un nombre de usuario y clave correctos."
)

type signupForm struct {
	Username  string `form:"username" binding:"required,max=150"`
	Email     string `form:"email" binding:"required,email"`
	Password1 string `form:"password1" binding:"required"`
	Password2 string `form:"password2" binding:"required,eqfield=Password1"`
}

type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

// ShowSignup 渲染注册页面
func (a *API) ShowSignup(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "register.html", gin.H{"title": "Registro"})
}

// Signup registers an inactive account and emails its confirmation link.
func (a *API) Signup(c *gin.Context) {
	var form signupForm
	if err := c.ShouldBind(&form); err != nil {
		a.renderSignupError(c, form, err)
		return
	}

	_, err := a.accounts.Signup(c.Request.Context(), service.SignupInput{
		Username:  form.Username,
		Email:     form.Email,
		Password1: form.Password1,
		Password2: form.Password2,
	})
	if err != nil {
		if errors.Is(err, service.ErrMailDelivery) {
			a.renderHTML(c, http.StatusOK, "register.html", gin.H{
				"title":     "Registro",
				"form":      form,
				"formError": signupMailFailedMessage,
			})
			return
		}
		a.renderSignupError(c, form, err)
		return
	}

	addFlash(c, FlashInfo, signupSentMessage)
	flashRedirect(c, "/accounts/login/")
}

func (a *API) renderSignupError(c *gin.Context, form signupForm, err error) {
	errs, ok := formErrors(err)
	if !ok {
		a.renderServerError(c, err)
		return
	}
	form.Password1, form.Password2 = "", ""
	a.renderHTML(c, http.StatusOK, "register.html", gin.H{
		"title":  "Registro",
		"form":   form,
		"errors": errs,
	})
}

// Confirm activates the account named in a confirmation link.
func (a *API) Confirm(c *gin.Context) {
	account, err := a.accounts.Confirm(c.Request.Context(), c.Param("code"), c.Param("user"))
	if err != nil {
		if !errors.Is(err, service.ErrInvalidConfirmation) {
			a.log.Error("confirm account", zap.Error(err))
		}
		addFlash(c, FlashError, invalidConfirmationMessage)
		flashRedirect(c, "/accounts/login/")
		return
	}

	a.log.Info("account activated via link", zap.Uint("account_id", account.ID))
	addFlash(c, FlashSuccess, accountActivatedMessage)
	flashRedirect(c, "/accounts/login/")
}

// ShowLogin 渲染登录页面
func (a *API) ShowLogin(c *gin.Context) {
	if currentAccount(c) != nil {
		c.Redirect(http.StatusFound, nextOrHome(c.Query("next")))
		return
	}
	a.renderHTML(c, http.StatusOK, "login.html", gin.H{
		"title": "Iniciar sesión",
		"next":  safeNext(c.Query("next")),
	})
}

// Login 处理用户登录请求
func (a *API) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		a.renderLoginError(c, form)
		return
	}

	account, err := a.accounts.Authenticate(form.Username, form.Password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			a.renderServerError(c, err)
			return
		}
		a.renderLoginError(c, form)
		return
	}

	if err := logIn(c, account); err != nil {
		a.renderServerError(c, err)
		return
	}

	a.log.Info("account logged in", zap.Uint("account_id", account.ID))
	c.Redirect(http.StatusFound, nextOrHome(form.Next))
}

func (a *API) renderLoginError(c *gin.Context, form loginForm) {
	a.renderHTML(c, http.StatusOK, "login.html", gin.H{
		"title":     "Iniciar sesión",
		"username":  strings.TrimSpace(form.Username),
		"next":      safeNext(form.Next),
		"formError": invalidLoginMessage,
	})
}

// Logout 处理用户登出
func (a *API) Logout(c *gin.Context) {
	if err := logOut(c); err != nil {
		a.log.Warn("clear session", zap.Error(err))
	}
	c.Redirect(http.StatusFound, "/")
}

func nextOrHome(next string) string {
	if safe := safeNext(next); safe != "" {
		return safe
	}
	return "/"
}
