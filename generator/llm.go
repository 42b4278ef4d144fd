package generator

import (
	"context"
	"fmt"
)

const (
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.9
)

// LLMClient 抽象大模型客户端，便于替换/Mock。
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// LLMSettings 提供给具体实现的基础配置。
type LLMSettings struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	// Temperature nil 表示使用 DefaultTemperature；0 是合法值。
	Temperature *float64
}

// LanguageModelError wraps any failure of the completion call.
type LanguageModelError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *LanguageModelError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("llm %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("llm %s: %v", e.Op, e.Err)
}

func (e *LanguageModelError) Unwrap() error { return e.Err }
