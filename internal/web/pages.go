package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/authgate/internal/audit"
	"github.com/yourusername/authgate/internal/auth"
	"github.com/yourusername/authgate/internal/credential"
	"github.com/yourusername/authgate/internal/guard"
)

// MsgTooManyAttempts はログインがロックされている間に表示します。
const MsgTooManyAttempts = "Too many failed attempts. Please try again later."

type authPage struct {
	SignUp      bool
	Email       string
	FieldErrors credential.Errors
	Message     string
	Success     bool
}

type homePage struct {
	Email     string
	CSRFToken string
	Events    []audit.Event
}

// entryPage は GET / のハンドラーです。
func (s *Server) entryPage(c *gin.Context) {
	nav := &pathNavigator{}
	d := s.guard.Run(c.Request.Context(), guard.PageNeutral, s.stores(c), nav)
	if nav.follow(c) || !d.Render {
		return
	}
	c.HTML(http.StatusOK, "auth.html", authPage{SignUp: c.Query("mode") == string(auth.OperationSignup)})
}

// submitForm は POST / のハンドラーです。
func (s *Server) submitForm(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")
	op, err := auth.ParseOperation(c.PostForm("mode"))
	if err != nil {
		c.HTML(http.StatusBadRequest, "auth.html", authPage{Email: email, Message: auth.MsgUnsupportedOperation})
		return
	}
	page := authPage{SignUp: op == auth.OperationSignup, Email: email}

	ip := c.ClientIP()
	if op == auth.OperationLogin {
		if retryAfter := s.attempts.checkLock(ip); retryAfter > 0 {
			c.Header("Retry-After", strconv.FormatInt(int64(retryAfter.Seconds()), 10))
			page.Message = MsgTooManyAttempts
			c.HTML(http.StatusTooManyRequests, "auth.html", page)
			return
		}
	}

	nav := &pathNavigator{}
	res := s.form.Submit(c.Request.Context(), op, email, password, s.stores(c), nav)
	s.recordOutcome(c, op, email, res.Outcome)
	s.trackAttempt(ip, op, res.Outcome)

	if nav.path != "" {
		if _, err := rotateCSRF(c); err != nil {
			s.logger.Warn("failed to rotate csrf token", "error", err)
		}
		nav.follow(c)
		return
	}

	page.FieldErrors = res.FieldErrors
	page.Message = res.Message
	page.Success = res.Success
	if res.ClearFields() {
		page.Email = ""
	}
	c.HTML(formStatus(res.Outcome, res.FieldErrors), "auth.html", page)
}

// homePage は GET /home のハンドラーです。
func (s *Server) homePage(c *gin.Context) {
	nav := &pathNavigator{}
	d := s.guard.Run(c.Request.Context(), guard.PageProtected, s.stores(c), nav)
	if nav.follow(c) || !d.Render {
		return
	}

	token, err := ensureCSRF(c)
	if err != nil {
		s.logger.Error("failed to issue csrf token", "error", err)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.Header(csrfHeader, token)
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, "home.html", homePage{
		Email:     d.Session.Email,
		CSRFToken: token,
		Events:    s.recentActivity(c.Request.Context(), d.Session.Email),
	})
}

// logoutPage は POST /logout のハンドラーです。
func (s *Server) logoutPage(c *gin.Context) {
	store := s.stores(c)
	var email string
	if sess, ok := store.Read(c.Request.Context()); ok {
		email = sess.Email
	}

	nav := &pathNavigator{}
	if err := s.guard.Logout(c.Request.Context(), store, s.signOuter, nav); err != nil {
		s.logger.Error("logout failed", "error", err)
		c.String(http.StatusInternalServerError, "logout failed")
		return
	}
	s.record(c, audit.KindLogout, email, http.StatusOK)
	nav.follow(c)
}

// notFound は未定義パスのハンドラーです。常にリダイレクトします。
func (s *Server) notFound(c *gin.Context) {
	nav := &pathNavigator{}
	s.guard.Run(c.Request.Context(), guard.PageNotFound, s.stores(c), nav)
	nav.follow(c)
}

// trackAttempt はログイン結果を試行回数に反映します。
// 失敗を記録した場合はロックまでの残り回数と true を返します。
func (s *Server) trackAttempt(ip string, op auth.Operation, out *auth.Outcome) (int, bool) {
	if op != auth.OperationLogin || out == nil {
		return 0, false
	}
	switch {
	case out.OK():
		s.attempts.reset(ip)
	case out.Kind == auth.KindInvalidCredentials:
		return s.attempts.recordFailure(ip), true
	}
	return 0, false
}

func formStatus(out *auth.Outcome, fieldErrors credential.Errors) int {
	if !fieldErrors.Empty() {
		return http.StatusBadRequest
	}
	if out == nil {
		return http.StatusOK
	}
	return out.StatusCode
}
