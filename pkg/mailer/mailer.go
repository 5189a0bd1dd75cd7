// Package mailer отправляет письма с вложениями через SMTP релей.
//
// Dispatcher собирает multipart/mixed сообщение целиком в памяти
// и передаёт его Transport за один вызов, без повторов.
// Все отказы классифицируются в Kind (см. errors.go).
package mailer

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ilkoid/poncho-trends/pkg/config"
	"github.com/ilkoid/poncho-trends/pkg/utils"
)

// Config - отправитель и координаты релея.
//
// Передаётся явно при создании Dispatcher: пакет не читает окружение сам.
type Config struct {
	From     string // адрес отправителя, он же логин
	Password string
	Host     string
	Port     int           // 587 если 0
	Timeout  time.Duration // таймаут соединения, 30s если 0
}

// ConfigFrom переносит секцию mail из config.yaml.
func ConfigFrom(mc config.MailConfig) Config {
	mc = mc.GetDefaults()
	return Config{
		From:     mc.Address,
		Password: mc.Password,
		Host:     mc.Server,
		Port:     mc.Port,
		Timeout:  mc.Timeout,
	}
}

// Request - одно письмо.
type Request struct {
	Recipient   string
	Subject     string
	Body        string
	Attachments []string // пути к файлам, все должны существовать
}

// Dispatcher отправляет письма. Безопасен для конкурентного использования.
type Dispatcher struct {
	cfg       Config
	transport Transport
	now       func() time.Time
}

// Option настраивает Dispatcher.
type Option func(*Dispatcher)

// WithTransport подменяет транспорт (тесты, альтернативные релеи).
func WithTransport(t Transport) Option {
	return func(d *Dispatcher) {
		d.transport = t
	}
}

// WithClock задаёт источник времени для заголовка Date.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// New создаёт Dispatcher. По умолчанию используется SMTPTransport
// с таймаутом из cfg.
func New(cfg Config, opts ...Option) *Dispatcher {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	d := &Dispatcher{
		cfg:       cfg,
		transport: &SMTPTransport{DialTimeout: cfg.Timeout},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Send проверяет креденшалы, читает вложения, собирает письмо и отдаёт его транспорту.
//
// Порядок важен:
//  1. Нет From/Password/Host - KindCredentialsMissing, письмо не собирается.
//  2. Любое вложение не найдено или не читается - ошибка, транспорт не вызывается.
//  3. Ошибки транспорта уже классифицированы им самим.
func (d *Dispatcher) Send(ctx context.Context, req Request) error {
	if d.cfg.From == "" || d.cfg.Password == "" || d.cfg.Host == "" {
		utils.Error("Email credentials missing", "host_set", d.cfg.Host != "", "from_set", d.cfg.From != "")
		return &Error{Kind: KindCredentialsMissing}
	}
	if req.Recipient == "" {
		return &Error{Kind: KindUnknown, Err: errors.New("recipient is required")}
	}

	atts := make([]attachment, 0, len(req.Attachments))
	for _, path := range req.Attachments {
		att, err := readAttachment(path)
		if err != nil {
			utils.Error("Attachment failed", "path", path, "error", err)
			return err
		}
		utils.Debug("Attachment added", "path", path, "bytes", len(att.data))
		atts = append(atts, att)
	}

	msg, err := compose(d.cfg.From, req, atts, d.now())
	if err != nil {
		return &Error{Kind: KindUnknown, Err: err}
	}

	env := Envelope{
		Host:     d.cfg.Host,
		Port:     d.cfg.Port,
		Username: d.cfg.From,
		Password: d.cfg.Password,
		From:     d.cfg.From,
		To:       []string{req.Recipient},
		Data:     msg,
	}

	start := time.Now()
	if err := d.transport.Deliver(ctx, env); err != nil {
		var me *Error
		if !errors.As(err, &me) {
			err = &Error{Kind: KindUnknown, Err: err}
		}
		utils.Error("Email sending failed",
			"recipient", req.Recipient,
			"kind", KindOf(err).String(),
			"error", err)
		return err
	}

	utils.Info("Email sent",
		"recipient", req.Recipient,
		"attachments", len(atts),
		"bytes", len(msg),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// attachment - содержимое файла, прочитанное целиком.
type attachment struct {
	name string
	data []byte
}

func readAttachment(path string) (attachment, error) {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		return attachment{name: filepath.Base(path), data: data}, nil
	case errors.Is(err, fs.ErrNotExist):
		return attachment{}, &Error{Kind: KindAttachmentMissing, Path: path, Err: err}
	default:
		return attachment{}, &Error{Kind: KindAttachmentUnreadable, Path: path, Err: err}
	}
}
