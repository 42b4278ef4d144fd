package generator

// Request 是一次表单提交；API key 只随请求存在，不写入全局环境。
type Request struct {
	Topic        string `json:"topic"`
	OpenAIAPIKey string `json:"openai_api_key"`
	SerperAPIKey string `json:"serper_api_key"`
}

// Result 是一次生成的完整产出。
type Result struct {
	Topic    string `json:"topic"`
	Title    string `json:"title"`
	Script   string `json:"script"`
	Research string `json:"research"`
}

// GenerationRecord is one input/output pair kept by a Memory.
type GenerationRecord struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}
