package generator

import (
	"strings"
	"sync"
)

// Memory 是只追加的生成记录，用于在页面上展示历史。
type Memory struct {
	inputKey  string
	outputKey string

	mu      sync.RWMutex
	records []GenerationRecord
}

// NewMemory creates an empty log whose lines are labelled with the given keys.
func NewMemory(inputKey, outputKey string) *Memory {
	return &Memory{inputKey: inputKey, outputKey: outputKey}
}

// NewTitleMemory records topic -> title.
func NewTitleMemory() *Memory { return NewMemory("topic", "title") }

// NewScriptMemory records title -> script.
func NewScriptMemory() *Memory { return NewMemory("title", "script") }

// Record appends one input/output pair.
func (m *Memory) Record(input, output string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, GenerationRecord{Input: input, Output: output})
}

// Records returns a copy of the log in insertion order.
func (m *Memory) Records() []GenerationRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]GenerationRecord, len(m.records))
	copy(out, m.records)
	return out
}

// Len returns the number of recorded pairs.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Buffer renders the transcript: "<inputKey>: <input>\n<outputKey>: <output>" per record.
func (m *Memory) Buffer() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lines := make([]string, 0, len(m.records))
	for _, r := range m.records {
		lines = append(lines, m.inputKey+": "+r.Input+"\n"+m.outputKey+": "+r.Output)
	}
	return strings.Join(lines, "\n")
}
