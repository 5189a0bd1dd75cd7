// Структуры данных - описывает формат YAML файла промпта.
package prompt

// PromptFile описывает структуру YAML-файла с промптом.
type PromptFile struct {
	Config   PromptConfig `yaml:"config"`
	Messages []Message    `yaml:"messages"`
}

// PromptConfig - настройки модели для конкретного промпта.
// Нулевые значения означают "как в config.yaml".
type PromptConfig struct {
	Model       string   `yaml:"model"`
	Temperature *float64 `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`
	Format      string   `yaml:"format"` // "json_object" или пусто
}

// Message - одно сообщение в чате.
type Message struct {
	Role    string `yaml:"role"`    // system, user, assistant
	Content string `yaml:"content"` // Шаблон с {{.Variables}}
}

// ReportData - переменные шаблона промпта отчёта.
type ReportData struct {
	Topic       string
	Recipient   string
	ReportFile  string
	ReportTitle string
}
