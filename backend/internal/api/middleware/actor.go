package middleware

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"depot-records/backend/internal/model"
)

const (
	// ActorHeader 操作人请求头
	// 认证由上游网关完成，本服务直接信任该请求头
	ActorHeader = "X-Actor-ID"

	actorKey     = "actor"
	DefaultActor = "anonymous"
)

// Actor 操作人中间件，解析审计用的操作人并写入上下文 "actor"
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(ActorHeader))
		if actor == "" || utf8.RuneCountInString(actor) > model.ActorMaxLen || strings.IndexFunc(actor, unicode.IsControl) >= 0 {
			actor = DefaultActor
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// ActorFrom 返回 Actor 写入的操作人，缺失时为 DefaultActor
func ActorFrom(c *gin.Context) string {
	if v, ok := c.Get(actorKey); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return DefaultActor
}
