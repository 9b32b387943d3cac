package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sccsite/internal/auth"
)

const (
	sessionTokenKey   = "admin_token"
	adminContextKey   = "__admin_session"
	loginPath         = "/admin/login"
	dashboardPath     = "/admin"
	loginTemplate     = "login.html"
	dashboardTemplate = "dashboard.html"
)

type loginPayload struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Next     string `json:"next" form:"next"`
}

// restoreSession 从 cookie 会话中恢复登录状态，失效令牌会被清除
func (a *API) restoreSession(c *gin.Context) *auth.Session {
	if cached, ok := c.Get(adminContextKey); ok {
		if session, ok := cached.(*auth.Session); ok {
			return session
		}
	}

	store := sessions.Default(c)
	token, _ := store.Get(sessionTokenKey).(string)

	session := a.gate.NewSession()
	if session.Restore(token) != auth.StateAuthenticated && token != "" {
		store.Delete(sessionTokenKey)
		_ = store.Save()
	}
	c.Set(adminContextKey, session)
	return session
}

// ShowLoginPage 渲染登录页面
func (a *API) ShowLoginPage(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, loginTemplate, gin.H{
		"title": "管理员登录",
		"next":  safeNext(c.Query("next")),
	})
}

// Login 处理登录请求，表单请求重定向，JSON 请求返回会话信息
func (a *API) Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBind(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "请求参数不合法")
		return
	}

	session := a.gate.NewSession()
	if err := session.Login(c.Request.Context(), payload.Email, payload.Password); err != nil {
		message := "登录失败，请稍后再试"
		if errors.Is(err, auth.ErrInvalidCredentials) {
			message = "邮箱或密码错误"
		}
		if wantsJSON(c) {
			respondError(c, http.StatusUnauthorized, message)
			return
		}
		a.renderHTML(c, http.StatusUnauthorized, loginTemplate, gin.H{
			"title": "管理员登录",
			"error": message,
			"email": payload.Email,
			"next":  safeNext(payload.Next),
		})
		return
	}

	store := sessions.Default(c)
	store.Set(sessionTokenKey, session.Token())
	if err := store.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, sessionPayload(session))
		return
	}
	c.Redirect(http.StatusFound, safeNext(payload.Next))
}

// Logout 清除会话并回到登录页
func (a *API) Logout(c *gin.Context) {
	store := sessions.Default(c)
	store.Delete(sessionTokenKey)
	store.Clear()
	_ = store.Save()

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"state": auth.StateUnauthenticated})
		return
	}
	c.Redirect(http.StatusFound, loginPath)
}

// SessionStatus 返回当前会话状态，与路由中间件使用同一套校验
func (a *API) SessionStatus(c *gin.Context) {
	c.JSON(http.StatusOK, sessionPayload(a.restoreSession(c)))
}

// ShowDashboard 渲染后台主面板
func (a *API) ShowDashboard(c *gin.Context) {
	session := a.restoreSession(c)
	counts := a.services.Counts(c.Request.Context())
	pending := len(a.services.AboutSync.Pending()) + len(a.services.MessageSync.Pending())

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"counts": counts, "pending": pending})
		return
	}
	a.renderHTML(c, http.StatusOK, dashboardTemplate, gin.H{
		"title":   "管理面板",
		"email":   session.Claims().Email,
		"counts":  counts,
		"pending": pending,
	})
}

// RequireAdmin 拦截未登录请求：页面请求重定向到登录页，接口请求返回 401
func (a *API) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.restoreSession(c).Authenticated() {
			c.Next()
			return
		}

		if wantsJSON(c) {
			respondError(c, http.StatusUnauthorized, "请先登录")
			c.Abort()
			return
		}
		target := loginPath
		if next := c.Request.URL.RequestURI(); next != dashboardPath {
			target += "?next=" + url.QueryEscape(next)
		}
		c.Redirect(http.StatusFound, target)
		c.Abort()
	}
}

// RedirectIfAuthenticated 已登录时访问登录页直接进入后台
func (a *API) RedirectIfAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.restoreSession(c).Authenticated() {
			c.Redirect(http.StatusFound, dashboardPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

func sessionPayload(session *auth.Session) gin.H {
	payload := gin.H{"state": session.State()}
	if session.Authenticated() {
		payload["email"] = session.Claims().Email
		payload["expires_at"] = session.ExpiresAt()
	}
	return payload
}

// safeNext 只允许跳转到站内后台地址
func safeNext(next string) string {
	next = strings.TrimSpace(next)
	if !strings.HasPrefix(next, "/admin") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, loginPath) {
		return dashboardPath
	}
	return next
}
