package generator

import (
	"context"
	"sync"
	"time"
)

// Session 持有一个用户的标题/脚本历史，避免进程级共享。
type Session struct {
	ID           string
	CreatedAt    time.Time
	TitleMemory  *Memory
	ScriptMemory *Memory

	mu   sync.Mutex
	last *Result
}

// NewSession 创建 session，尚未生成任何内容。
func NewSession(id string) *Session {
	return &Session{
		ID:           id,
		CreatedAt:    time.Now(),
		TitleMemory:  NewTitleMemory(),
		ScriptMemory: NewScriptMemory(),
	}
}

// Run generates with the given pipeline and records into this session's memories.
// Pipelines are per request because the API keys may come from the form.
func (s *Session) Run(ctx context.Context, p *Pipeline, topic string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := p.Generate(ctx, topic, s.TitleMemory, s.ScriptMemory)
	if err != nil {
		return Result{}, err
	}
	s.last = &res
	return res, nil
}

// Last returns the most recent successful result.
func (s *Session) Last() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return Result{}, false
	}
	return *s.last, true
}
