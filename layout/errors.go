package layout

import (
	"errors"
	"fmt"
)

// 错误种类。调用方通过 errors.Is 区分。
var (
	// ErrInvalidConfig 表示边距、纸张或字号等配置不合法，只在配置阶段返回。
	ErrInvalidConfig = errors.New("layout: 配置不合法")
	// ErrSinkFailure 包装绘制后端（ContentSink）返回的任何错误，不做重试。
	ErrSinkFailure = errors.New("layout: 绘制后端失败")
	// ErrAlreadyClosed 表示文档已经定稿，拒绝继续写入。
	ErrAlreadyClosed = errors.New("layout: 文档已关闭")
	// ErrUnitTooLarge 表示单个内容单元比空白页的可写高度还高，无法通过换页放下。
	ErrUnitTooLarge = errors.New("layout: 内容单元超过页面可写高度")
)

// ConfigError 记录具体是哪个字段不合法。
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("layout: 配置项 %s 不合法: %s", e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }

// SinkError 记录失败的后端操作名称与原始错误。
type SinkError struct {
	Op  string
	Err error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("layout: 后端操作 %s 失败: %v", e.Op, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }

func (e *SinkError) Is(target error) bool { return target == ErrSinkFailure }

func invalid(field, reason string) error {
	return &ConfigError{Field: field, Reason: reason}
}

func sinkErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &SinkError{Op: op, Err: err}
}
