package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrTurnInProgress 上一轮对话尚未结束
var ErrTurnInProgress = errors.New("a turn is already in progress")

// ConfigurationError 凭据缺失或无效，致命错误，不重试
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// ValidationError 输入非法，在调用模型之前拒绝
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// UpstreamError 推理服务失败，保留上游状态码，不在本地重试
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("upstream error (status %d): %s", e.StatusCode, e.Message)
}

// HTTPStatus 返回可以透传给客户端的状态码，非法值退化为 500
func (e *UpstreamError) HTTPStatus() int {
	if e.StatusCode >= 400 && e.StatusCode <= 599 {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

// StatusOf 将错误映射为 HTTP 状态码
func StatusOf(err error) int {
	var cfgErr *ConfigurationError
	var valErr *ValidationError
	var upErr *UpstreamError
	switch {
	case errors.As(err, &valErr):
		return http.StatusBadRequest
	case errors.As(err, &cfgErr):
		return http.StatusInternalServerError
	case errors.As(err, &upErr):
		return upErr.HTTPStatus()
	case errors.Is(err, ErrTurnInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
