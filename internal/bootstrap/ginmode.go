package bootstrap

import "github.com/gin-gonic/gin"

// SetGinMode maps the app environment onto gin's mode. Anything that is
// not production or test runs in debug mode.
func SetGinMode(env string) {
	switch env {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}
}
