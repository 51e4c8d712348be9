package http

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	flashSuccess = "success"
	flashDanger  = "danger"
)

// Flash is a one-time notification shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

func addFlash(c *gin.Context, category, message string) {
	session := sessions.Default(c)
	session.AddFlash(message, category)
}

// takeFlashes drains pending flashes and persists their removal. It must run
// before the response body is written so the session cookie can still be set.
func takeFlashes(c *gin.Context) ([]Flash, error) {
	session := sessions.Default(c)

	var out []Flash
	for _, category := range []string{flashSuccess, flashDanger} {
		for _, v := range session.Flashes(category) {
			if msg, ok := v.(string); ok {
				out = append(out, Flash{Category: category, Message: msg})
			}
		}
	}

	if err := session.Save(); err != nil {
		return nil, err
	}
	return out, nil
}
