package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/dollet000/dollet-stats/api"
	config "github.com/dollet000/dollet-stats/configs"
)

var ErrUnauthorized = errors.New("invalid username or password")

// Authorization checks basic auth credentials against cfg.
// An empty username disables the check.
func Authorization(cfg config.BasicAuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Username == "" {
			c.Next()
			return
		}
		username, password, ok := c.Request.BasicAuth()
		if !ok || !validateCredentials(cfg, username, password) {
			log.Debug().Str("ip", c.ClientIP()).Msg(ErrUnauthorized.Error())
			api.UnauthorizedErrorHandler(c, ErrUnauthorized)
			c.Abort()
			return
		}
		c.Next()
	}
}

func validateCredentials(cfg config.BasicAuthConfig, username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(cfg.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(cfg.Password)) == 1
	return userOK && passOK
}
