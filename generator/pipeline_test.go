package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// callLog records the order in which collaborators are hit.
type callLog struct {
	calls []string
}

type echoRecorder struct {
	log *callLog
}

func (e echoRecorder) Complete(_ context.Context, prompt string) (string, error) {
	e.log.calls = append(e.log.calls, "llm:"+prompt)
	return prompt, nil
}

type fakeSearch struct {
	log      *callLog
	snippets []string
}

func (f fakeSearch) Run(_ context.Context, query string) string {
	f.log.calls = append(f.log.calls, "search:"+query)
	return strings.Join(f.snippets, "\n")
}

type failingLLM struct {
	failOn int
	n      int
}

func (f *failingLLM) Complete(_ context.Context, prompt string) (string, error) {
	f.n++
	if f.n == f.failOn {
		return "", &LanguageModelError{Op: "chat.completions", StatusCode: 401, Err: errors.New("invalid api key")}
	}
	return "ok " + prompt, nil
}

func TestPipelineSpaceTravelScenario(t *testing.T) {
	log := &callLog{}
	p, err := NewPipeline(echoRecorder{log: log}, fakeSearch{
		log:      log,
		snippets: []string{"NASA plans Mars mission", "SpaceX launches rocket"},
	})
	require.NoError(t, err)

	titleMem, scriptMem := NewTitleMemory(), NewScriptMemory()
	res, err := p.Generate(context.Background(), "space travel", titleMem, scriptMem)
	require.NoError(t, err)

	wantTitle := "Write a title for a YouTube video about... space travel"
	wantResearch := "NASA plans Mars mission\nSpaceX launches rocket"
	wantScript := "Write a YouTube video script based on this title: " + wantTitle +
		" while leveraging this Google research: " + wantResearch

	require.Len(t, log.calls, 3)
	assert.Equal(t, "llm:"+wantTitle, log.calls[0])
	assert.Equal(t, "search:space travel", log.calls[1])
	assert.Equal(t, "llm:"+wantScript, log.calls[2])
	assert.Contains(t, log.calls[2], wantTitle)
	assert.Contains(t, log.calls[2], wantResearch)

	assert.Equal(t, Result{Topic: "space travel", Title: wantTitle, Script: wantScript, Research: wantResearch}, res)
	assert.Equal(t, 1, titleMem.Len())
	assert.Equal(t, 1, scriptMem.Len())
	assert.Equal(t, []GenerationRecord{{Input: "space travel", Output: wantTitle}}, titleMem.Records())
	assert.Equal(t, []GenerationRecord{{Input: wantTitle, Output: wantScript}}, scriptMem.Records())
}

func TestPipelineNonEmptyOutputs(t *testing.T) {
	p, err := NewPipeline(MockLLM{}, fakeSearch{log: &callLog{}, snippets: []string{"snippet"}})
	require.NoError(t, err)

	for _, topic := range []string{"cats", "go generics", "日本の料理"} {
		res, err := p.Generate(context.Background(), topic, nil, nil)
		require.NoError(t, err)
		assert.NotEmpty(t, res.Title)
		assert.NotEmpty(t, res.Script)
		assert.NotEmpty(t, res.Research)
	}
}

type quotingLLM struct{}

func (quotingLLM) Complete(_ context.Context, prompt string) (string, error) {
	if strings.HasPrefix(prompt, "Write a title") {
		return `"Cats In Space"`, nil
	}
	return `"Narrator: welcome aboard."`, nil
}

func TestPipelineUnquotesTitleOnly(t *testing.T) {
	p, err := NewPipeline(quotingLLM{}, fakeSearch{log: &callLog{}, snippets: []string{"s"}})
	require.NoError(t, err)

	res, err := p.Generate(context.Background(), "cats", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Cats In Space", res.Title)
	assert.Equal(t, `"Narrator: welcome aboard."`, res.Script)
}

func TestPipelineEmptyTopic(t *testing.T) {
	log := &callLog{}
	p, err := NewPipeline(echoRecorder{log: log}, fakeSearch{log: log})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), "   ", nil, nil)
	assert.ErrorIs(t, err, ErrEmptyTopic)
	assert.Empty(t, log.calls)
}

func TestPipelineTitleFailureStopsEverything(t *testing.T) {
	log := &callLog{}
	p, err := NewPipeline(&failingLLM{failOn: 1}, fakeSearch{log: log})
	require.NoError(t, err)

	titleMem, scriptMem := NewTitleMemory(), NewScriptMemory()
	_, err = p.Generate(context.Background(), "cats", titleMem, scriptMem)

	var lmErr *LanguageModelError
	require.True(t, errors.As(err, &lmErr))
	assert.Equal(t, 401, lmErr.StatusCode)
	assert.Empty(t, log.calls, "search must not run after a failed title")
	assert.Equal(t, 0, titleMem.Len())
	assert.Equal(t, 0, scriptMem.Len())
}

func TestPipelineScriptFailureKeepsTitleRecord(t *testing.T) {
	log := &callLog{}
	p, err := NewPipeline(&failingLLM{failOn: 2}, fakeSearch{log: log})
	require.NoError(t, err)

	titleMem, scriptMem := NewTitleMemory(), NewScriptMemory()
	_, err = p.Generate(context.Background(), "cats", titleMem, scriptMem)

	require.Error(t, err)
	assert.Equal(t, []string{"search:cats"}, log.calls)
	assert.Equal(t, 1, titleMem.Len())
	assert.Equal(t, 0, scriptMem.Len())
}

func TestPipelineTemplateError(t *testing.T) {
	broken := MustPromptTemplate("Script for {title}", "title")
	custom := MustPromptTemplate("Title for {subject}", "subject")
	log := &callLog{}
	p, err := NewPipeline(echoRecorder{log: log}, fakeSearch{log: log}, WithTemplates(custom, broken))
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), "cats", nil, nil)
	var tmplErr *TemplateError
	require.True(t, errors.As(err, &tmplErr))
	assert.Equal(t, []string{"subject"}, tmplErr.Missing)
	assert.Empty(t, log.calls)
}

func TestNewPipelineRequiresCollaborators(t *testing.T) {
	_, err := NewPipeline(nil, fakeSearch{})
	assert.Error(t, err)
	_, err = NewPipeline(EchoLLM{}, nil)
	assert.Error(t, err)
}

func TestSessionRunKeepsLastResult(t *testing.T) {
	p, err := NewPipeline(EchoLLM{}, fakeSearch{log: &callLog{}, snippets: []string{"s"}})
	require.NoError(t, err)

	sess := NewSession("abc")
	_, ok := sess.Last()
	assert.False(t, ok)

	_, err = sess.Run(context.Background(), p, "first")
	require.NoError(t, err)
	res, err := sess.Run(context.Background(), p, "second")
	require.NoError(t, err)

	last, ok := sess.Last()
	require.True(t, ok)
	assert.Equal(t, res, last)
	assert.Equal(t, 2, sess.TitleMemory.Len())
	assert.Equal(t, 2, sess.ScriptMemory.Len())

	_, err = sess.Run(context.Background(), p, "")
	assert.ErrorIs(t, err, ErrEmptyTopic)
	last, _ = sess.Last()
	assert.Equal(t, "second", last.Topic)
}
