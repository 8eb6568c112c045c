package handler

import (
	"errors"

	"github.com/Junheng-Zheng/Junbot/internal/domain"
	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
)

// respondError 按错误类型映射状态码，响应体统一为 {"error": message}
func respondError(c *gin.Context, err error) {
	status := domain.StatusOf(err)
	if status >= 500 {
		klog.Errorf("[%s %s] 请求失败: status=%d, error=%v", c.Request.Method, c.FullPath(), status, err)
	}
	c.JSON(status, gin.H{"error": errorMessage(err)})
}

// errorMessage 上游错误只透出上游给的信息
func errorMessage(err error) string {
	var upErr *domain.UpstreamError
	if errors.As(err, &upErr) && upErr.Message != "" {
		return upErr.Message
	}
	return err.Error()
}
