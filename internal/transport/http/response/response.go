package response

import "github.com/gin-gonic/gin"

// ErrorBody 所有错误响应的统一结构；成功响应直接输出业务对象
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error 构造错误体（可以传自定义 msg 覆盖默认）
func Error(code int, customMsg string) ErrorBody {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return ErrorBody{Code: code, Message: msg}
}

// Abort 以 code 作为 HTTP 状态码终止请求
func Abort(c *gin.Context, code int, customMsg string) {
	c.AbortWithStatusJSON(code, Error(code, customMsg))
}
