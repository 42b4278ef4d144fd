package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"youtube_gpt_creator/search"
)

// ErrEmptyTopic is returned when there is nothing to generate for.
var ErrEmptyTopic = errors.New("topic is required")

// Pipeline 负责 标题 -> 搜索 -> 脚本 的顺序生成。
type Pipeline struct {
	llm      LLMClient
	searcher search.Searcher
	title    PromptTemplate
	script   PromptTemplate
	verbose  bool
	logger   *log.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger; verbose enables step logs.
func WithLogger(logger *log.Logger, verbose bool) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
		p.verbose = verbose
	}
}

// WithTemplates overrides the title and script prompts.
func WithTemplates(title, script PromptTemplate) Option {
	return func(p *Pipeline) {
		p.title = title
		p.script = script
	}
}

func NewPipeline(llm LLMClient, searcher search.Searcher, opts ...Option) (*Pipeline, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	if searcher == nil {
		return nil, errors.New("searcher is required")
	}
	p := &Pipeline{
		llm:      llm,
		searcher: searcher,
		title:    TitleTemplate,
		script:   ScriptTemplate,
		logger:   log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Pipeline) infof(format string, args ...interface{}) {
	if !p.verbose {
		return
	}
	p.logger.Printf("[pipeline] "+format, args...)
}

// Generate runs the three steps in order. Each memory is written as soon as its step succeeds,
// so a failed script step still leaves the title in titleMem.
func (p *Pipeline) Generate(ctx context.Context, topic string, titleMem, scriptMem *Memory) (Result, error) {
	if strings.TrimSpace(topic) == "" {
		return Result{}, ErrEmptyTopic
	}

	titlePrompt, err := p.title.Render(map[string]string{"topic": topic})
	if err != nil {
		return Result{}, err
	}
	title, err := p.complete(ctx, titlePrompt, PostProcessTitle)
	if err != nil {
		return Result{}, fmt.Errorf("generate title: %w", err)
	}
	if titleMem != nil {
		titleMem.Record(topic, title)
	}
	p.infof("title done topic=%q title=%q", topic, title)

	research := p.searcher.Run(ctx, topic)
	p.infof("search done topic=%q bytes=%d", topic, len(research))

	scriptPrompt, err := p.script.Render(map[string]string{
		"title":           title,
		"google_research": research,
	})
	if err != nil {
		return Result{}, err
	}
	script, err := p.complete(ctx, scriptPrompt, PostProcess)
	if err != nil {
		return Result{}, fmt.Errorf("generate script: %w", err)
	}
	if scriptMem != nil {
		scriptMem.Record(title, script)
	}
	p.infof("script done title=%q bytes=%d", title, len(script))

	return Result{Topic: topic, Title: title, Script: script, Research: research}, nil
}

func (p *Pipeline) complete(ctx context.Context, prompt string, post func(string) (string, error)) (string, error) {
	raw, err := p.llm.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return post(raw)
}
