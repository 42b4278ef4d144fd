package generator

import (
	"context"
	"errors"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAILLM implements LLMClient using the official openai-go SDK (chat completions).
type OpenAILLM struct {
	Model       string
	Temperature float64
	Opts        []option.RequestOption
}

func NewOpenAILLMFromConfig(cfg *LLMSettings) (*OpenAILLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing; provide llm.api_key or OPENAI_API_KEY")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	temperature := DefaultTemperature
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// 不做重试：失败直接返回给本次请求。
		option.WithMaxRetries(0),
		option.WithRequestTimeout(90 * time.Second),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAILLM{Model: model, Temperature: temperature, Opts: opts}, nil
}

func (o *OpenAILLM) Complete(ctx context.Context, prompt string) (string, error) {
	client := openai.NewClient(o.Opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.Model),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		Temperature: openai.Float(o.Temperature),
	})
	if err != nil {
		lmErr := &LanguageModelError{Op: "chat.completions", Err: err}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			lmErr.StatusCode = apiErr.StatusCode
		}
		return "", lmErr
	}
	if len(resp.Choices) == 0 {
		return "", &LanguageModelError{Op: "chat.completions", Err: errors.New("openai: empty choices")}
	}
	return resp.Choices[0].Message.Content, nil
}
