// Загрузка и Рендер - чтение файла и text/template.

package prompt

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/ilkoid/poncho-trends/pkg/llm"
)

// DefaultFile - имя встроенного промпта отчёта о трендах.
const DefaultFile = "market_trends.yaml"

//go:embed prompts/*.yaml
var builtin embed.FS

// Load загружает и парсит YAML файл промпта.
func Load(path string) (*PromptFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("prompt file not found: %s", path)
		}
		return nil, fmt.Errorf("read error: %w", err)
	}
	return Parse(data)
}

// Parse разбирает YAML промпта.
func Parse(data []byte) (*PromptFile, error) {
	var pf PromptFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("yaml parse error: %w", err)
	}
	if len(pf.Messages) == 0 {
		return nil, fmt.Errorf("prompt has no messages")
	}
	return &pf, nil
}

// Resolve ищет промпт name в dir, а если его там нет - среди встроенных.
//
// Пустой name означает DefaultFile.
func Resolve(dir, name string) (*PromptFile, error) {
	if name == "" {
		name = DefaultFile
	}
	if dir != "" {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	data, err := builtin.ReadFile("prompts/" + name)
	if err != nil {
		return nil, fmt.Errorf("prompt %q not found in %q or built-in prompts", name, dir)
	}
	return Parse(data)
}

// RenderMessages подставляет data во все {{.Field}} и возвращает сообщения.
func (pf *PromptFile) RenderMessages(data any) ([]Message, error) {
	rendered := make([]Message, len(pf.Messages))

	for i, msg := range pf.Messages {
		tmpl, err := template.New("msg").Option("missingkey=error").Parse(msg.Content)
		if err != nil {
			return nil, fmt.Errorf("template parse error in message #%d (%s): %w", i, msg.Role, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("template execute error in message #%d: %w", i, err)
		}

		rendered[i] = Message{Role: msg.Role, Content: buf.String()}
	}

	return rendered, nil
}

// Split рендерит промпт и возвращает системный промпт и запрос пользователя.
//
// Несколько сообщений одной роли склеиваются через пустую строку.
func (pf *PromptFile) Split(data any) (system, user string, err error) {
	msgs, err := pf.RenderMessages(data)
	if err != nil {
		return "", "", err
	}
	for _, m := range msgs {
		switch llm.Role(m.Role) {
		case llm.RoleSystem:
			system = join(system, m.Content)
		case llm.RoleUser:
			user = join(user, m.Content)
		}
	}
	if user == "" {
		return "", "", fmt.Errorf("prompt has no user message")
	}
	return system, user, nil
}

// Options переводит config промпта в опции генерации.
func (pf *PromptFile) Options() []llm.GenerateOption {
	var opts []llm.GenerateOption
	if pf.Config.Model != "" {
		opts = append(opts, llm.WithModel(pf.Config.Model))
	}
	if pf.Config.Temperature != nil {
		opts = append(opts, llm.WithTemperature(*pf.Config.Temperature))
	}
	if pf.Config.MaxTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(pf.Config.MaxTokens))
	}
	if pf.Config.Format != "" {
		opts = append(opts, llm.WithFormat(pf.Config.Format))
	}
	return opts
}

func join(a, b string) string {
	if a == "" {
		return b
	}
	return a + "\n\n" + b
}
