package web

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	sessionKeyCSRF = "csrf_token"
	csrfHeader     = "X-CSRF-Token"
	csrfFormField  = "csrf_token"
)

// ensureCSRF はセッションの CSRF トークンを返します。なければ生成して保存します。
func ensureCSRF(c *gin.Context) (string, error) {
	session := sessions.Default(c)
	if token, ok := session.Get(sessionKeyCSRF).(string); ok && token != "" {
		return token, nil
	}
	return rotateCSRF(c)
}

// rotateCSRF はログイン成功時などにトークンを作り直します。
func rotateCSRF(c *gin.Context) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	session := sessions.Default(c)
	session.Set(sessionKeyCSRF, token)
	if err := session.Save(); err != nil {
		return "", err
	}
	return token, nil
}

// verifyCSRF は X-CSRF-Token ヘッダー、またはフォームの csrf_token を検証するミドルウェアです。
func verifyCSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		session := sessions.Default(c)
		expected, ok := session.Get(sessionKeyCSRF).(string)
		if !ok || expected == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    "CSRF_MISSING",
				"message": "CSRF token is not set",
			})
			return
		}

		received := c.GetHeader(csrfHeader)
		if received == "" {
			received = c.PostForm(csrfFormField)
		}
		if subtle.ConstantTimeCompare([]byte(expected), []byte(received)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    "CSRF_INVALID",
				"message": "CSRF token mismatch",
			})
			return
		}

		c.Next()
	}
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}
