package generator

import (
	"errors"
	"strings"
)

// ErrEmptyOutput means the model answered with nothing usable.
var ErrEmptyOutput = errors.New("model returned empty output")

// PostProcess 去掉首尾空白，空输出视为失败。
func PostProcess(raw string) (string, error) {
	out := strings.TrimSpace(raw)
	if out == "" {
		return "", ErrEmptyOutput
	}
	return out, nil
}

// PostProcessTitle is PostProcess plus removal of one pair of quotes wrapping the whole title.
func PostProcessTitle(raw string) (string, error) {
	return PostProcess(unquote(strings.TrimSpace(raw)))
}

// Titles often come back as "\"My Title\"".
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' && strings.Count(s, "\"") == 2 {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}
