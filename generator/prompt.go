package generator

import (
	"fmt"
	"strings"
)

// PromptTemplate 是带 {name} 占位符的提示词模板，构造后不可变。
type PromptTemplate struct {
	text      string
	variables []string
}

// TemplateError is returned when a template cannot be built or rendered.
type TemplateError struct {
	Template string
	Missing  []string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("prompt template %q: missing variables %s", e.Template, strings.Join(e.Missing, ", "))
}

var (
	// TitleTemplate asks for a video title.
	TitleTemplate = MustPromptTemplate("Write a title for a YouTube video about... {topic}", "topic")

	// ScriptTemplate asks for a script grounded on the title and the search snippets.
	ScriptTemplate = MustPromptTemplate(
		"Write a YouTube video script based on this title: {title} while leveraging this Google research: {google_research}",
		"title", "google_research",
	)
)

// NewPromptTemplate checks that every declared variable has a placeholder in text.
func NewPromptTemplate(text string, variables ...string) (PromptTemplate, error) {
	var missing []string
	for _, v := range variables {
		if !strings.Contains(text, placeholder(v)) {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		return PromptTemplate{}, &TemplateError{Template: text, Missing: missing}
	}
	vars := make([]string, len(variables))
	copy(vars, variables)
	return PromptTemplate{text: text, variables: vars}, nil
}

// MustPromptTemplate is NewPromptTemplate for package-level templates.
func MustPromptTemplate(text string, variables ...string) PromptTemplate {
	t, err := NewPromptTemplate(text, variables...)
	if err != nil {
		panic(err)
	}
	return t
}

// Text returns the raw template.
func (t PromptTemplate) Text() string { return t.text }

// Variables returns a copy of the declared variable names.
func (t PromptTemplate) Variables() []string {
	out := make([]string, len(t.variables))
	copy(out, t.variables)
	return out
}

// Render 按变量名替换占位符；缺少任何声明的变量都会失败。
func (t PromptTemplate) Render(values map[string]string) (string, error) {
	var missing []string
	pairs := make([]string, 0, 2*len(t.variables))
	for _, v := range t.variables {
		val, ok := values[v]
		if !ok {
			missing = append(missing, v)
			continue
		}
		pairs = append(pairs, placeholder(v), val)
	}
	if len(missing) > 0 {
		return "", &TemplateError{Template: t.text, Missing: missing}
	}
	// single pass, so values containing "{x}" are never substituted again
	return strings.NewReplacer(pairs...).Replace(t.text), nil
}

func placeholder(name string) string {
	return "{" + name + "}"
}
