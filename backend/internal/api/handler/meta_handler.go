package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"depot-records/backend/internal/dto"
	"depot-records/backend/pkg/response"
)

// Pinger 检查单个依赖
type Pinger func(ctx context.Context) error

// MetaHandler 选项集与健康检查
type MetaHandler struct {
	checks map[string]Pinger
}

// NewMetaHandler 按名称传入 /health 需要检查的依赖
func NewMetaHandler(checks map[string]Pinger) *MetaHandler {
	return &MetaHandler{checks: checks}
}

// GetOptions 列出全部枚举选项，供表单下拉使用
// GET /api/v1/options
func (h *MetaHandler) GetOptions(c *gin.Context) {
	response.OK(c, dto.NewOptionsResponse())
}

// Health 健康检查
// GET /health
func (h *MetaHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "ok"
	deps := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			deps[name] = err.Error()
			status = "degraded"
			continue
		}
		deps[name] = "ok"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status, "dependencies": deps})
}
