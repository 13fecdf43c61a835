package middleware

import (
	"github.com/gin-gonic/gin"
)

// apiSecurityHeaders 所有响应都带的安全头；本服务只返回 JSON 与文件下载
var apiSecurityHeaders = map[string]string{
	"X-Frame-Options":         "DENY",
	"X-Content-Type-Options":  "nosniff",
	"Referrer-Policy":         "no-referrer",
	"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
}

// SecurityHeaders 安全 HTTP 头中间件
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		for k, v := range apiSecurityHeaders {
			c.Header(k, v)
		}
		c.Next()
	}
}

// NoStore 禁止中间代理与浏览器缓存响应
// 用于同步报告、审计日志与 Excel 导出：内容随每次同步变化，且仅限已登录用户
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Header("Pragma", "no-cache")
		c.Next()
	}
}
