package errs

import (
	"errors"
	"fmt"
)

// ============================================================================
// 业务错误分类
// ============================================================================
//
// 财务操作的失败必须能被调用方机器判别：
//   - validation     参数校验失败，未产生任何副作用
//   - not_found      实体不存在或不属于当前旅行社（越权按不存在处理）
//   - business_rule  业务规则拦截（信用额度、核销超限等），未产生任何副作用
//   - infrastructure 存储/事务等基础设施故障，事务模式下已整体回滚
//   - partial_failure 非事务降级模式下中途失败，可能残留部分状态，需要人工对账
//
// ============================================================================

type Kind string

const (
	KindValidation     Kind = "validation"
	KindNotFound       Kind = "not_found"
	KindBusinessRule   Kind = "business_rule"
	KindInfrastructure Kind = "infrastructure"
	KindPartialFailure Kind = "partial_failure"
)

// Error 携带分类的业务错误
type Error struct {
	Kind    Kind
	Message string
	Err     error // 底层原因，可为 nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) *Error {
	return New(KindValidation, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, format, args...)
}

func BusinessRule(format string, args ...interface{}) *Error {
	return New(KindBusinessRule, format, args...)
}

func Infrastructure(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindInfrastructure, Message: fmt.Sprintf(format, args...), Err: err}
}

// PartialFailure 非事务降级路径专用：中途失败后部分写入可能已经落库
func PartialFailure(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindPartialFailure, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf 提取错误分类；未分类的错误一律按基础设施故障处理
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInfrastructure
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
