package generator

import (
	"context"
	"errors"
	"fmt"
	"log"

	"youtube_gpt_creator/search"
)

// ErrMissingKey is returned when neither the request nor the config carries an OpenAI key.
var ErrMissingKey = errors.New("api key missing")

// Factory 按请求组装 Pipeline：表单里的 key 优先，其次是配置里的默认值。
type Factory struct {
	Settings     LLMSettings
	SerperAPIKey string
	// Mock 使用 MockLLM，不调用外部模型。
	Mock    bool
	Logger  *log.Logger
	Verbose bool
}

// Build returns a pipeline bound to the keys of req.
func (f Factory) Build(req Request) (*Pipeline, error) {
	serperKey := firstNonEmpty(req.SerperAPIKey, f.SerperAPIKey)
	// no serper key is a soft failure: research degrades to NoResults, generation continues
	var searcher search.Searcher = search.NewSerper(serperKey).WithLogger(f.Logger)
	if serperKey == "" {
		searcher = search.SearcherFunc(func(context.Context, string) string { return search.NoResults })
	}

	var llm LLMClient
	if f.Mock {
		llm = MockLLM{}
	} else {
		settings := f.Settings
		settings.APIKey = firstNonEmpty(req.OpenAIAPIKey, f.Settings.APIKey)
		if settings.APIKey == "" {
			return nil, fmt.Errorf("openai: %w", ErrMissingKey)
		}
		var err error
		llm, err = NewOpenAILLMFromConfig(&settings)
		if err != nil {
			return nil, err
		}
	}
	return NewPipeline(llm, searcher, WithLogger(f.Logger, f.Verbose))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
