package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"
)

// Envelope - всё, что нужно транспорту для одной SMTP сессии.
type Envelope struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
	Data     []byte // готовое RFC 5322 сообщение
}

// Transport доставляет собранное письмо.
//
// Реализация обязана возвращать *Error с осмысленным Kind.
type Transport interface {
	Deliver(ctx context.Context, env Envelope) error
}

// SMTPTransport - сессия dial -> EHLO -> STARTTLS -> AUTH PLAIN -> MAIL/RCPT/DATA -> QUIT.
//
// STARTTLS обязателен: без него пароль не отправляется.
type SMTPTransport struct {
	DialTimeout time.Duration
	// TLSConfig для STARTTLS. nil означает проверку сертификата по имени хоста.
	TLSConfig *tls.Config
}

// Deliver выполняет одну SMTP сессию. Отмена ctx закрывает соединение.
func (t *SMTPTransport) Deliver(ctx context.Context, env Envelope) (err error) {
	addr := net.JoinHostPort(env.Host, strconv.Itoa(env.Port))

	// 1. Соединение
	dialer := net.Dialer{Timeout: t.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return &Error{Kind: KindTransport, Err: fmt.Errorf("dial %s: %w", addr, err)}
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	// Если сессию оборвала отмена, сообщаем причину, а не ошибку сокета
	defer func() {
		if err != nil && ctx.Err() != nil {
			err = &Error{Kind: KindTransport, Err: ctx.Err()}
		}
	}()

	client, err := smtp.NewClient(conn, env.Host)
	if err != nil {
		conn.Close()
		return &Error{Kind: KindTransport, Err: fmt.Errorf("greeting: %w", err)}
	}
	defer client.Close()

	// 2. EHLO + STARTTLS
	if ok, _ := client.Extension("STARTTLS"); !ok {
		return &Error{Kind: KindTransport, Err: fmt.Errorf("server %s does not support STARTTLS", addr)}
	}
	tlsCfg := t.TLSConfig
	if tlsCfg == nil {
		tlsCfg = &tls.Config{ServerName: env.Host}
	}
	if err := client.StartTLS(tlsCfg); err != nil {
		return &Error{Kind: KindTransport, Err: fmt.Errorf("starttls: %w", err)}
	}

	// 3. AUTH
	auth := smtp.PlainAuth("", env.Username, env.Password, env.Host)
	if err := client.Auth(auth); err != nil {
		return classify("auth", err, KindAuth)
	}

	// 4. Конверт и данные
	if err := client.Mail(env.From); err != nil {
		return classify("mail from", err, KindUnknown)
	}
	for _, rcpt := range env.To {
		if err := client.Rcpt(rcpt); err != nil {
			return classify("rcpt to", err, KindUnknown)
		}
	}
	w, err := client.Data()
	if err != nil {
		return classify("data", err, KindUnknown)
	}
	if _, err := w.Write(env.Data); err != nil {
		return classify("data", err, KindUnknown)
	}
	if err := w.Close(); err != nil {
		return classify("data", err, KindUnknown)
	}

	// 5. QUIT. Письмо уже принято, ошибку QUIT не считаем провалом.
	_ = client.Quit()
	return nil
}

// classify определяет Kind для ошибки этапа сессии.
//
//   - 530/534/535 на любом этапе - отказ аутентификации;
//   - сетевые ошибки и обрыв соединения - транспорт;
//   - остальные SMTP ответы - fallback этапа.
func classify(stage string, err error, fallback Kind) *Error {
	wrapped := fmt.Errorf("%s: %w", stage, err)

	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		switch tpErr.Code {
		case 530, 534, 535:
			return &Error{Kind: KindAuth, Err: wrapped}
		}
		return &Error{Kind: fallback, Err: wrapped}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return &Error{Kind: KindTransport, Err: wrapped}
	}

	return &Error{Kind: fallback, Err: wrapped}
}
