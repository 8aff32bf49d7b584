package handler

import (
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const agencyIDKey = "agency_id"

// AgencyMiddleware 从 X-Agency-ID 头解析旅行社范围。
// 所有业务接口都在某个旅行社范围内执行，缺失即拒绝
func AgencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.GetHeader("X-Agency-ID"), 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(200, gin.H{
				"code":    400,
				"message": "缺少有效的 X-Agency-ID 请求头",
			})
			return
		}
		c.Set(agencyIDKey, id)
		c.Next()
	}
}

// agencyID 取出中间件解析好的旅行社ID
func agencyID(c *gin.Context) int64 {
	return c.GetInt64(agencyIDKey)
}

// LoggerMiddleware 日志中间件
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		// 处理请求
		c.Next()

		// 记录日志
		latency := time.Since(start)
		status := c.Writer.Status()

		if query != "" {
			path = path + "?" + query
		}

		log.Printf("[HTTP] %d | %13v | %15s | %-7s %s",
			status,
			latency,
			c.ClientIP(),
			c.Request.Method,
			path,
		)
	}
}

// RecoveryMiddleware 恢复中间件，防止 panic 导致服务崩溃
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[PANIC] %v", err)
				c.AbortWithStatusJSON(500, gin.H{
					"code":    500,
					"message": "服务器内部错误",
				})
			}
		}()
		c.Next()
	}
}

// CORSMiddleware 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Agency-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
