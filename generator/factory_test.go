package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"youtube_gpt_creator/search"
)

func TestFactoryRequiresOpenAIKey(t *testing.T) {
	f := Factory{}
	_, err := f.Build(Request{Topic: "cats"})
	assert.ErrorIs(t, err, ErrMissingKey)

	_, err = f.Build(Request{Topic: "cats", SerperAPIKey: "serper"})
	assert.ErrorIs(t, err, ErrMissingKey)

	p, err := f.Build(Request{Topic: "cats", SerperAPIKey: "serper", OpenAIAPIKey: "sk"})
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestFactoryWithoutSerperKeyStillGenerates(t *testing.T) {
	f := Factory{Settings: LLMSettings{APIKey: "sk"}}
	p, err := f.Build(Request{Topic: "cats", OpenAIAPIKey: "sk"})
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, search.NoResults, p.searcher.Run(context.Background(), "cats"))

	// swap in a local model to run the whole pipeline without network
	p.llm = EchoLLM{}
	res, err := p.Generate(context.Background(), "cats", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, search.NoResults, res.Research)
	assert.Contains(t, res.Script, search.NoResults)
}

func TestFactoryConfigKeysAreFallback(t *testing.T) {
	f := Factory{Settings: LLMSettings{APIKey: "cfg-openai"}, SerperAPIKey: "cfg-serper"}
	p, err := f.Build(Request{Topic: "cats"})
	require.NoError(t, err)

	llm, ok := p.llm.(*OpenAILLM)
	require.True(t, ok)
	assert.Equal(t, DefaultModel, llm.Model)
}

func TestFactoryMock(t *testing.T) {
	p, err := Factory{Mock: true}.Build(Request{Topic: "cats"})
	require.NoError(t, err)
	_, ok := p.llm.(MockLLM)
	assert.True(t, ok)

	// no serper key in mock mode: research falls back to NoResults without a network call
	res, err := p.Generate(context.Background(), "cats", nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Title)
	assert.Equal(t, search.NoResults, res.Research)
}
