package std

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ilkoid/poncho-trends/pkg/mailer"
	"github.com/ilkoid/poncho-trends/pkg/tools"
	"github.com/ilkoid/poncho-trends/pkg/utils"
)

// Sender - отправка письма (mailer.Dispatcher).
type Sender interface {
	Send(ctx context.Context, req mailer.Request) error
}

// --- Tool: email_sender ---

// EmailTool отправляет письмо и всегда отвечает модели текстом исхода.
//
// Отказы отправки не считаются ошибкой инструмента: модель должна увидеть
// формулировку из mailer.Outcome и передать её пользователю.
type EmailTool struct {
	sender  Sender
	resolve func(string) string
}

// NewEmailTool создаёт инструмент. resolve превращает имена вложений
// в пути на диске (обычно report.Renderer.Path), nil - пути как есть.
func NewEmailTool(s Sender, resolve func(string) string) *EmailTool {
	if resolve == nil {
		resolve = func(p string) string { return p }
	}
	return &EmailTool{sender: s, resolve: resolve}
}

func (t *EmailTool) Definition() tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:        "email_sender",
		Description: "Send an email with file attachments to a recipient. Returns a status message.",
		Parameters: tools.JSONSchema{
			"type": "object",
			"properties": map[string]any{
				"recipient_email": map[string]any{
					"type":        "string",
					"description": "Email address of the recipient.",
				},
				"subject": map[string]any{
					"type":        "string",
					"description": "Subject line.",
				},
				"body": map[string]any{
					"type":        "string",
					"description": "Plain text body.",
				},
				"attachment_paths": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Files to attach, e.g. [\"report.pdf\"].",
				},
			},
			"required": []string{"recipient_email", "subject", "body", "attachment_paths"},
		},
	}
}

// pathList принимает и массив строк, и одиночную строку:
// модели иногда присылают "report.pdf" вместо ["report.pdf"].
type pathList []string

func (p *pathList) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*p = many
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return fmt.Errorf("attachment_paths must be an array of strings")
	}
	if one != "" {
		*p = []string{one}
	}
	return nil
}

func (t *EmailTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	var args struct {
		Recipient   string   `json:"recipient_email"`
		Subject     string   `json:"subject"`
		Body        string   `json:"body"`
		Attachments pathList `json:"attachment_paths"`
	}
	if err := json.Unmarshal([]byte(utils.CleanJsonBlock(argsJSON)), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	paths := make([]string, len(args.Attachments))
	for i, p := range args.Attachments {
		paths[i] = t.resolve(p)
	}

	err := t.sender.Send(ctx, mailer.Request{
		Recipient:   args.Recipient,
		Subject:     args.Subject,
		Body:        args.Body,
		Attachments: paths,
	})
	return mailer.Outcome(err, args.Recipient), nil
}
