package llm

// GenerateOptions - параметры генерации.
//
// Значения по умолчанию берутся из config.yaml (ModelDef),
// GenerateOption переопределяет их на время одного вызова.
type GenerateOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int

	// Format - формат ответа ("json_object" или пусто).
	Format string
}

// GenerateOption - функциональная опция для GenerateOptions.
type GenerateOption func(*GenerateOptions)

// WithModel переопределяет модель.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithTemperature переопределяет температуру.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// WithMaxTokens ограничивает длину ответа.
func WithMaxTokens(tokens int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxTokens = tokens
	}
}

// WithFormat задаёт формат ответа. Используйте "json_object" для JSON.
func WithFormat(format string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Format = format
	}
}

// Apply применяет опции поверх base и возвращает результат.
func Apply(base GenerateOptions, opts ...GenerateOption) GenerateOptions {
	for _, opt := range opts {
		if opt != nil {
			opt(&base)
		}
	}
	return base
}
