package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/authgate/internal/audit"
	"github.com/yourusername/authgate/internal/auth"
	"github.com/yourusername/authgate/internal/session"
)

// ContextSessionKey は requireSession が検証済みの Session を置くキーです。
const ContextSessionKey = "auth.session"

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// apiSession は GET /api/auth/session のハンドラーです。
func (s *Server) apiSession(c *gin.Context) {
	sess, ok := s.stores(c).Read(c.Request.Context())
	if !ok || !sess.Valid() {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	if token, err := ensureCSRF(c); err == nil {
		c.Header(csrfHeader, token)
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"email":         sess.Email,
	})
}

// apiLogin は POST /api/auth/login のハンドラーです。
func (s *Server) apiLogin(c *gin.Context) {
	s.apiSubmit(c, auth.OperationLogin)
}

// apiSignup は POST /api/auth/signup のハンドラーです。
func (s *Server) apiSignup(c *gin.Context) {
	s.apiSubmit(c, auth.OperationSignup)
}

func (s *Server) apiSubmit(c *gin.Context, op auth.Operation) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_INPUT",
			"message": "Send email and password as JSON",
		})
		return
	}

	ip := c.ClientIP()
	if op == auth.OperationLogin {
		if retryAfter := s.attempts.checkLock(ip); retryAfter > 0 {
			// Retry-After は秒数で返す
			c.Header("Retry-After", strconv.FormatInt(int64(retryAfter.Seconds()), 10))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    "TOO_MANY_ATTEMPTS",
				"message": MsgTooManyAttempts,
			})
			return
		}
	}

	nav := &pathNavigator{}
	res := s.form.Submit(c.Request.Context(), op, req.Email, req.Password, s.stores(c), nav)
	s.recordOutcome(c, op, req.Email, res.Outcome)
	remaining, failed := s.trackAttempt(ip, op, res.Outcome)

	if !res.FieldErrors.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":        "INVALID_INPUT",
			"message":     "Please correct the highlighted fields",
			"fieldErrors": res.FieldErrors,
		})
		return
	}

	if nav.path != "" {
		if token, err := rotateCSRF(c); err != nil {
			s.logger.Warn("failed to rotate csrf token", "error", err)
		} else {
			c.Header(csrfHeader, token)
		}
	}

	if res.Outcome == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": auth.MsgLoginFailed,
		})
		return
	}
	out := *res.Outcome
	// セッション保存に失敗した場合など、表示メッセージが差し替えられている
	if !res.Success && out.OK() {
		out = auth.ProviderFailure(res.Message, auth.MsgLoginFailed, nil)
	}
	if failed {
		c.JSON(out.StatusCode, gin.H{
			"statusCode":        out.StatusCode,
			"message":           out.Message,
			"remainingAttempts": remaining,
		})
		return
	}
	c.JSON(out.StatusCode, out)
}

// apiLogout は POST /api/auth/logout のハンドラーです。
func (s *Server) apiLogout(c *gin.Context) {
	sess := c.MustGet(ContextSessionKey).(*session.Session)
	nav := &pathNavigator{}
	if err := s.guard.Logout(c.Request.Context(), s.stores(c), s.signOuter, nav); err != nil {
		s.logger.Error("logout failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "SESSION_SAVE_FAILED",
			"message": "Failed to clear the session",
		})
		return
	}
	s.record(c, audit.KindLogout, sess.Email, http.StatusOK)
	c.Status(http.StatusNoContent)
}

// apiActivity は GET /api/auth/activity のハンドラーです。
func (s *Server) apiActivity(c *gin.Context) {
	sess := c.MustGet(ContextSessionKey).(*session.Session)
	events := s.recentActivity(c.Request.Context(), sess.Email)
	if events == nil {
		events = []audit.Event{}
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// requireSession は認証済みセッションを要求するミドルウェアです。
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := s.stores(c).Read(c.Request.Context())
		if !ok || !sess.Valid() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Login required",
			})
			return
		}
		c.Set(ContextSessionKey, sess)
		c.Next()
	}
}
