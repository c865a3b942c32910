package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一API响应结构
type Response struct {
	Code      int         `json:"code"`                 // 状态码
	Message   string      `json:"message"`              // 消息
	Data      interface{} `json:"data"`                 // 数据
	Success   bool        `json:"success"`              // 是否成功
	RequestID string      `json:"request_id,omitempty"` // 请求 ID，由日志中间件写入
}

func newResponse(c *gin.Context, code int, message string, data interface{}) Response {
	return Response{
		Code:      code,
		Message:   message,
		Data:      data,
		Success:   code < http.StatusBadRequest,
		RequestID: c.GetString("request_id"),
	}
}

// Success 返回成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, newResponse(c, http.StatusOK, "success", data))
}

// Created 返回 201 响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, newResponse(c, http.StatusCreated, "created", data))
}

// Error 返回错误响应并终止后续处理
func Error(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, newResponse(c, code, message, nil))
}

// BadRequest 返回400错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized 返回401错误
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "unauthorized"
	}
	Error(c, http.StatusUnauthorized, message)
}

// Forbidden 返回403错误
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "forbidden"
	}
	Error(c, http.StatusForbidden, message)
}

// BadGateway 上游（向量服务）失败
func BadGateway(c *gin.Context, message string) {
	if message == "" {
		message = "upstream service failed"
	}
	Error(c, http.StatusBadGateway, message)
}

// InternalServerError 返回500错误
func InternalServerError(c *gin.Context, message string) {
	if message == "" {
		message = "internal server error"
	}
	Error(c, http.StatusInternalServerError, message)
}
