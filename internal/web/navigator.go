package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// pathNavigator は遷移先を記録するだけの guard.Navigator です。
// クッキーの書き込みが終わってから follow でリダイレクトを書き出します。
type pathNavigator struct {
	path string
}

func (n *pathNavigator) NavigateTo(path string) {
	if n.path == "" {
		n.path = path
	}
}

// follow は遷移先があれば 303 See Other でリダイレクトし、true を返します。
func (n *pathNavigator) follow(c *gin.Context) bool {
	if n.path == "" {
		return false
	}
	c.Redirect(http.StatusSeeOther, n.path)
	return true
}
