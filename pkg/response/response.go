package response

import (
	"net/http"

	"travelbill/pkg/errs"

	"github.com/gin-gonic/gin"
)

const (
	CodeSuccess     = 0
	CodeParamError  = 400
	CodeNotFound    = 404
	CodeServerError = 500
)

// 业务错误码（1000 起）
const (
	CodeBusinessError      = 1000
	CodeCreditLimitExceed  = 1001
	CodeExceedInvoiceDue   = 1002
	CodeExceedReceiptRest  = 1003
	CodePartialFailure     = 1004
	CodeVoucherIssueFailed = 1005
)

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

func ParamError(c *gin.Context, message string) {
	Error(c, CodeParamError, message)
}

func ServerError(c *gin.Context, message string) {
	Error(c, CodeServerError, message)
}

// FromError 按错误分类映射业务码，handler 层统一走这里
func FromError(c *gin.Context, err error) {
	switch errs.KindOf(err) {
	case errs.KindValidation:
		Error(c, CodeParamError, err.Error())
	case errs.KindNotFound:
		Error(c, CodeNotFound, err.Error())
	case errs.KindBusinessRule:
		Error(c, CodeBusinessError, err.Error())
	case errs.KindPartialFailure:
		// 降级模式中途失败，返回独立错误码提示运营侧对账
		Error(c, CodePartialFailure, err.Error())
	default:
		Error(c, CodeServerError, err.Error())
	}
}
