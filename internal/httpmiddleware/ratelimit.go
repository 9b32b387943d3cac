// Package httpmiddleware 将 net/http 中间件适配为 gin 中间件。
package httpmiddleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/httprate"
)

const rateLimitedBody = `{"error":"提交过于频繁，请稍后再试"}`

// RateLimit 按客户端 IP 与路由限制请求频率，超限返回 429 JSON
func RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	if requests <= 0 {
		requests = 5
	}
	if window <= 0 {
		window = time.Minute
	}

	limit := httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(rateLimitedBody))
		}),
	)

	return Wrap(limit)
}

// Wrap 将标准中间件接入 gin。下游只有在标准中间件放行时才会执行。
func Wrap(middleware func(http.Handler) http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		passed := false
		middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
		})).ServeHTTP(c.Writer, c.Request)

		if !passed {
			c.Abort()
			return
		}
		c.Next()
	}
}
