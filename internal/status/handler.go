package status

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListStatuses 处理 GET /api/statuses
// 返回状态枚举表和分组元数据，供前端渲染筛选器。
func ListStatuses(c *gin.Context) {
	registry := Get()
	c.JSON(http.StatusOK, gin.H{
		"default":  registry.Default(),
		"statuses": registry.Definitions(),
		"buckets":  registry.Buckets(),
	})
}
