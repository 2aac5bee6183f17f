package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORS returns a middleware admitting the signage display, phone form, and
// admin dashboard, which are all served from origins other than this API.
// allowedOrigins is "*" or a comma-separated list.
func CORS(allowedOrigins string) gin.HandlerFunc {
	allowAll, origins := splitOrigins(allowedOrigins)
	return func(c *gin.Context) {
		allow := ""
		switch {
		case allowAll:
			allow = "*"
		default:
			if origin := c.GetHeader("Origin"); origin != "" && origins[origin] {
				allow = origin
			}
		}
		if allow != "" {
			c.Header("Access-Control-Allow-Origin", allow)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Header("Access-Control-Max-Age", "86400")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func splitOrigins(s string) (allowAll bool, origins map[string]bool) {
	origins = make(map[string]bool)
	for _, o := range strings.Split(s, ",") {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAll = true
			continue
		}
		if o != "" {
			origins[o] = true
		}
	}
	if len(origins) == 0 && !allowAll {
		allowAll = true
	}
	return allowAll, origins
}
