package agent

import (
	"errors"
	"strings"
)

// Ошибки валидации запроса. Тексты показываются пользователю как есть.
var (
	ErrEmptyTopic     = errors.New("Please enter a topic to generate the report.")
	ErrEmptyRecipient = errors.New("Please enter a recipient email address.")
	ErrInvalidEmail   = errors.New("Please enter a valid email address.")
)

// Request - один запуск: тема отчёта и получатель.
type Request struct {
	Topic     string
	Recipient string
}

// Validate проверяет поля в том же порядке, в каком их видит пользователь.
//
// Проверка адреса намеренно грубая: '@' и '.' где угодно.
func (r Request) Validate() error {
	switch {
	case strings.TrimSpace(r.Topic) == "":
		return ErrEmptyTopic
	case strings.TrimSpace(r.Recipient) == "":
		return ErrEmptyRecipient
	case !strings.Contains(r.Recipient, "@") || !strings.Contains(r.Recipient, "."):
		return ErrInvalidEmail
	}
	return nil
}
