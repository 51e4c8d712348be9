package http

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"authportal/internal/repository"
	"authportal/internal/service"
	"authportal/internal/validation"
)

// SessionCookieName is the name of the session cookie issued to browsers.
const SessionCookieName = "ap_session"

const (
	sessionKeyUserID = "userId"
	contextKeyUserID = "auth.userId"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users  service.UserService
	logger *logrus.Logger
}

func NewHandler(users service.UserService, logger *logrus.Logger) *Handler {
	return &Handler{
		users:  users,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.SetHTMLTemplate(loadTemplates())

	router.GET("/register", h.showRegisterForm)
	router.POST("/register", h.register)
	router.GET("/login", h.showLoginForm)
	router.POST("/login", h.login)
	router.GET("/logout", h.logout)
	router.GET("/applications", h.requireUser(), h.applications)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})
}

func (h *Handler) showRegisterForm(c *gin.Context) {
	h.renderRegister(c, http.StatusOK, registerValues{}, nil)
}

func (h *Handler) register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		_ = c.Error(err)
		h.renderRegister(c, http.StatusBadRequest, registerValues{}, nil)
		return
	}

	values := registerValues{
		Login:    form.Login,
		FullName: form.FullName,
		Phone:    form.Phone,
		Email:    form.Email,
	}

	if errs := validation.Check(form.normalized()); len(errs) > 0 {
		h.renderRegister(c, http.StatusBadRequest, values, validation.MapErrors(errs))
		return
	}

	_, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Login:    form.Login,
		Password: form.Password,
		FullName: form.FullName,
		Phone:    form.Phone,
		Email:    form.Email,
	})
	if errors.Is(err, service.ErrLoginTaken) {
		h.renderRegister(c, http.StatusBadRequest, values, map[string]string{
			"login": "This login is already taken",
		})
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}

	addFlash(c, flashSuccess, "Registration complete. You can sign in now.")
	if err := sessions.Default(c).Save(); err != nil {
		h.serverError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) showLoginForm(c *gin.Context) {
	h.renderLogin(c, http.StatusOK, loginValues{}, nil)
}

func (h *Handler) login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		_ = c.Error(err)
		h.renderLogin(c, http.StatusBadRequest, loginValues{}, nil)
		return
	}

	values := loginValues{Login: form.Login}

	if errs := validation.Check(form.normalized()); len(errs) > 0 {
		h.renderLogin(c, http.StatusBadRequest, values, validation.MapErrors(errs))
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), form.Login, form.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		// unknown login and wrong password answer identically
		addFlash(c, flashDanger, "Invalid login or password")
		h.renderLogin(c, http.StatusBadRequest, values, nil)
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(sessionKeyUserID, user.ID)
	addFlash(c, flashSuccess, "You are signed in")
	if err := session.Save(); err != nil {
		h.serverError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/applications")
}

// logout destroys the session before redirecting so the old cookie cannot
// remain valid.
func (h *Handler) logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		h.serverError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) applications(c *gin.Context) {
	userID := c.GetInt64(contextKeyUserID)

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// stale session for an account that no longer exists
			session := sessions.Default(c)
			session.Clear()
			session.Options(sessions.Options{Path: "/", MaxAge: -1})
			_ = session.Save()
			c.Redirect(http.StatusFound, "/login")
			return
		}
		h.serverError(c, err)
		return
	}

	flashes, err := takeFlashes(c)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.HTML(http.StatusOK, "applications.html", gin.H{
		"User":    user,
		"Flashes": flashes,
	})
}

func (h *Handler) renderRegister(c *gin.Context, status int, values registerValues, errs map[string]string) {
	h.renderForm(c, status, "register.html", values, errs)
}

func (h *Handler) renderLogin(c *gin.Context, status int, values loginValues, errs map[string]string) {
	h.renderForm(c, status, "login.html", values, errs)
}

func (h *Handler) renderForm(c *gin.Context, status int, name string, values any, errs map[string]string) {
	flashes, err := takeFlashes(c)
	if err != nil {
		h.serverError(c, err)
		return
	}
	if errs == nil {
		errs = map[string]string{}
	}
	c.HTML(status, name, gin.H{
		"Values":  values,
		"Errors":  errs,
		"Flashes": flashes,
	})
}

// serverError records the failure for the request logger and renders the
// generic error page. Details never reach the client.
func (h *Handler) serverError(c *gin.Context, err error) {
	h.logger.WithError(err).Errorf("%s %s failed", c.Request.Method, c.Request.URL.Path)
	_ = c.Error(err)
	c.HTML(http.StatusInternalServerError, "error.html", gin.H{})
	c.Abort()
}
