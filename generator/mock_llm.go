package generator

import (
	"context"
	"strings"
)

// MockLLM 一个简单的占位实现，便于本地调试，不调用外部模型。
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt string) (string, error) {
	if strings.HasPrefix(prompt, "Write a title") {
		topic := strings.TrimSpace(strings.TrimPrefix(prompt, "Write a title for a YouTube video about..."))
		return "Everything You Need To Know About " + topic, nil
	}
	var sb strings.Builder
	sb.WriteString("## Intro\n\n")
	sb.WriteString("Hey everyone, welcome back to the channel!\n\n")
	sb.WriteString("## Main\n\n")
	sb.WriteString("```\n")
	sb.WriteString(prompt)
	sb.WriteString("\n```\n\n")
	sb.WriteString("## Outro\n\nLike and subscribe for more.\n")
	return sb.String(), nil
}

// EchoLLM returns the prompt unchanged.
type EchoLLM struct{}

func (EchoLLM) Complete(_ context.Context, prompt string) (string, error) {
	return prompt, nil
}
