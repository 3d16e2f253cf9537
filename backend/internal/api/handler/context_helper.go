package handler

import (
	"github.com/gin-gonic/gin"

	"depot-records/backend/internal/api/middleware"
	"depot-records/backend/internal/model"
	"depot-records/backend/pkg/response"
)

const kindKey = "entity_kind"

// kindSlugs 各实体类型的 URL 片段
var kindSlugs = map[model.EntityType]string{
	model.EntityJobCard:   "job-cards",
	model.EntityNCRReport: "ncr-reports",
	model.EntityLetter:    "letters",
	model.EntityVendor:    "vendors",
}

// KindSlug 返回类型的 URL 片段
func KindSlug(kind model.EntityType) string {
	return kindSlugs[kind]
}

// KindFromSlug 解析 URL 片段，如 "ncr-reports"
func KindFromSlug(slug string) (model.EntityType, bool) {
	for kind, s := range kindSlugs {
		if s == slug {
			return kind, true
		}
	}
	return "", false
}

// WithKind 将路由分组绑定到一种实体类型
func WithKind(kind model.EntityType) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(kindKey, kind)
		c.Next()
	}
}

// MustGetKind 取出 WithKind 设置的实体类型
// 路由未绑定类型时写入 404 并返回 false
func MustGetKind(c *gin.Context) (model.EntityType, bool) {
	v, exists := c.Get(kindKey)
	if !exists {
		response.NotFound(c, codeUnknownEntity, "unknown record type")
		return "", false
	}
	kind, ok := v.(model.EntityType)
	if !ok || !kind.Valid() {
		response.NotFound(c, codeUnknownEntity, "unknown record type")
		return "", false
	}
	return kind, true
}

// Actor 由 middleware.Actor 解析出的操作人
func Actor(c *gin.Context) string {
	return middleware.ActorFrom(c)
}
