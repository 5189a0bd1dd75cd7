package mailer

import (
	"errors"
	"fmt"
)

// Kind - закрытый набор причин, по которым письмо не ушло.
//
// Каждый этап отправки сам решает, какой Kind вернуть:
// разбор текста ошибок не используется.
type Kind int

const (
	KindUnknown Kind = iota
	KindCredentialsMissing
	KindAttachmentMissing
	KindAttachmentUnreadable
	KindAuth
	KindTransport
)

// String возвращает строковое представление типа ошибки.
func (k Kind) String() string {
	switch k {
	case KindCredentialsMissing:
		return "credentials_missing"
	case KindAttachmentMissing:
		return "attachment_missing"
	case KindAttachmentUnreadable:
		return "attachment_unreadable"
	case KindAuth:
		return "auth_failed"
	case KindTransport:
		return "transport_failed"
	default:
		return "unknown"
	}
}

// HumanMessage возвращает человекочитаемое описание для UI.
func (k Kind) HumanMessage() string {
	switch k {
	case KindCredentialsMissing:
		return "Не заданы EMAIL_ADDRESS, EMAIL_PASSWORD или SMTP_SERVER."
	case KindAttachmentMissing:
		return "Файл вложения не найден."
	case KindAttachmentUnreadable:
		return "Файл вложения не удалось прочитать."
	case KindAuth:
		return "SMTP сервер отклонил логин. Проверьте адрес и пароль приложения."
	case KindTransport:
		return "Не удалось связаться с SMTP сервером. Проверьте хост и порт."
	default:
		return "Неизвестная ошибка отправки письма."
	}
}

// Error - ошибка отправки с классификацией.
//
// Path заполнен для ошибок вложений.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf извлекает Kind из цепочки ошибок. Ошибки не из этого пакета - KindUnknown.
func KindOf(err error) Kind {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind
	}
	return KindUnknown
}

// Outcome превращает результат Send в текст, который увидит модель.
//
// nil означает успех. Формулировки стабильны: их повторяет финальное
// сообщение агента.
func Outcome(err error, recipient string) string {
	if err == nil {
		return fmt.Sprintf("Email sent successfully to %s", recipient)
	}

	var me *Error
	if !errors.As(err, &me) {
		return fmt.Sprintf("Email sending failed: %v", err)
	}

	switch me.Kind {
	case KindCredentialsMissing:
		return "Error: Email credentials missing."
	case KindAttachmentMissing:
		return fmt.Sprintf("Error: Attachment not found at %s", me.Path)
	case KindAttachmentUnreadable:
		return fmt.Sprintf("Error attaching file %s: %v", me.Path, me.Err)
	case KindAuth:
		return "Email sending failed (Authentication error). Check credentials and App Password."
	case KindTransport:
		return "Email sending failed (Connection error). Check SMTP server and port."
	default:
		if me.Err != nil {
			return fmt.Sprintf("Email sending failed: %v", me.Err)
		}
		return fmt.Sprintf("Email sending failed: %v", me)
	}
}
