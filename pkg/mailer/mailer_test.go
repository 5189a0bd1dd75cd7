package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/poncho-trends/pkg/config"
	"github.com/ilkoid/poncho-trends/pkg/report"
)

// fakeTransport запоминает конверты и возвращает заданную ошибку.
type fakeTransport struct {
	mu    sync.Mutex
	calls []Envelope
	err   error
}

func (f *fakeTransport) Deliver(ctx context.Context, env Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, env)
	return f.err
}

func validConfig() Config {
	return Config{From: "bot@example.com", Password: "app-pass", Host: "smtp.example.com"}
}

func TestSend_MissingCredentials(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no from", Config{Password: "p", Host: "h"}},
		{"no password", Config{From: "f@x.io", Host: "h"}},
		{"no host", Config{From: "f@x.io", Password: "p"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := &fakeTransport{}
			// несуществующее вложение: креденшалы проверяются раньше вложений
			err := New(tt.cfg, WithTransport(ft)).Send(context.Background(), Request{
				Recipient:   "a@b.co",
				Attachments: []string{"/definitely/missing.pdf"},
			})

			assert.Equal(t, KindCredentialsMissing, KindOf(err))
			assert.Equal(t, "Error: Email credentials missing.", Outcome(err, "a@b.co"))
			assert.Empty(t, ft.calls)
		})
	}
}

func TestSend_MissingAttachmentSkipsTransport(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present.pdf")
	require.NoError(t, os.WriteFile(present, []byte("%PDF-1.3"), 0o644))
	missing := filepath.Join(dir, "missing.pdf")

	ft := &fakeTransport{}
	err := New(validConfig(), WithTransport(ft)).Send(context.Background(), Request{
		Recipient:   "a@b.co",
		Subject:     "s",
		Attachments: []string{present, missing},
	})

	require.Error(t, err)
	assert.Equal(t, KindAttachmentMissing, KindOf(err))
	assert.Equal(t, "Error: Attachment not found at "+missing, Outcome(err, "a@b.co"))
	assert.Empty(t, ft.calls, "nothing must be sent")
}

func TestSend_UnreadableAttachment(t *testing.T) {
	dir := t.TempDir()

	ft := &fakeTransport{}
	// директория существует, но читать её как файл нельзя
	err := New(validConfig(), WithTransport(ft)).Send(context.Background(), Request{
		Recipient:   "a@b.co",
		Attachments: []string{dir},
	})

	require.Error(t, err)
	assert.Equal(t, KindAttachmentUnreadable, KindOf(err))
	assert.True(t, strings.HasPrefix(Outcome(err, "a@b.co"), "Error attaching file "+dir+": "))
	assert.Empty(t, ft.calls)
}

func TestOutcome_Kinds(t *testing.T) {
	raw := errors.New("421 service not available")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"success", nil, "Email sent successfully to a@b.co"},
		{"auth", &Error{Kind: KindAuth, Err: raw}, "Email sending failed (Authentication error). Check credentials and App Password."},
		{"transport", &Error{Kind: KindTransport, Err: raw}, "Email sending failed (Connection error). Check SMTP server and port."},
		{"unknown", &Error{Kind: KindUnknown, Err: raw}, "Email sending failed: 421 service not available"},
		{"foreign error", raw, "Email sending failed: 421 service not available"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.err, "a@b.co"))
		})
	}
}

func TestKindStrings(t *testing.T) {
	kinds := []Kind{KindUnknown, KindCredentialsMissing, KindAttachmentMissing, KindAttachmentUnreadable, KindAuth, KindTransport}
	seen := map[string]bool{}
	for _, k := range kinds {
		assert.NotEmpty(t, k.HumanMessage())
		assert.False(t, seen[k.String()], "duplicate %s", k)
		seen[k.String()] = true
	}
}

func TestSend_TransportErrorIsClassified(t *testing.T) {
	ft := &fakeTransport{err: errors.New("boom")}
	err := New(validConfig(), WithTransport(ft)).Send(context.Background(), Request{Recipient: "a@b.co"})

	assert.Equal(t, KindUnknown, KindOf(err))
	assert.Equal(t, "Email sending failed: boom", Outcome(err, "a@b.co"))

	ft.err = &Error{Kind: KindAuth, Err: errors.New("535")}
	err = New(validConfig(), WithTransport(ft)).Send(context.Background(), Request{Recipient: "a@b.co"})
	assert.Equal(t, KindAuth, KindOf(err))
}

// TestRenderAndDispatch - сквозной сценарий: PDF рендерится и уходит вложением.
func TestRenderAndDispatch(t *testing.T) {
	dir := t.TempDir()
	r := report.NewRenderer(config.ReportConfig{OutputDir: dir})
	_, err := r.Render(report.Request{Content: "Trend 1\n\nTrend 2", Filename: "t.pdf", Title: "T"})
	require.NoError(t, err)

	pdfPath := r.Path("t.pdf")
	pdfBytes, err := os.ReadFile(pdfPath)
	require.NoError(t, err)

	ft := &fakeTransport{}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	d := New(validConfig(), WithTransport(ft), WithClock(func() time.Time { return now }))

	err = d.Send(context.Background(), Request{
		Recipient:   "x@y.z",
		Subject:     "Market Trends Report for: AI",
		Body:        "Please find the attached market trends report.",
		Attachments: []string{pdfPath},
	})
	require.NoError(t, err)
	assert.Equal(t, "Email sent successfully to x@y.z", Outcome(err, "x@y.z"))

	require.Len(t, ft.calls, 1)
	env := ft.calls[0]
	assert.Equal(t, "smtp.example.com", env.Host)
	assert.Equal(t, 587, env.Port)
	assert.Equal(t, []string{"x@y.z"}, env.To)

	msg, err := mail.ReadMessage(bytes.NewReader(env.Data))
	require.NoError(t, err)
	assert.Equal(t, "bot@example.com", msg.Header.Get("From"))
	assert.Equal(t, "x@y.z", msg.Header.Get("To"))
	assert.Equal(t, "Market Trends Report for: AI", msg.Header.Get("Subject"))

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	mr := multipart.NewReader(msg.Body, params["boundary"])

	// multipart.Reader сам декодирует quoted-printable
	text, err := mr.NextPart()
	require.NoError(t, err)
	body, _ := io.ReadAll(text)
	assert.Equal(t, "Please find the attached market trends report.", string(body))

	att, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "t.pdf", att.FileName())
	assert.Equal(t, "base64", att.Header.Get("Content-Transfer-Encoding"))
	encoded, _ := io.ReadAll(att)
	for _, line := range strings.Split(strings.TrimSpace(string(encoded)), "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(encoded), "\r\n", ""))
	require.NoError(t, err)
	assert.Equal(t, pdfBytes, decoded)

	_, err = mr.NextPart()
	assert.Equal(t, io.EOF, err)
}

// TestDispatchAfterFileDeleted - файл удалён между рендером и отправкой.
func TestDispatchAfterFileDeleted(t *testing.T) {
	dir := t.TempDir()
	r := report.NewRenderer(config.ReportConfig{OutputDir: dir})
	_, err := r.Render(report.Request{Content: "x", Filename: "t.pdf"})
	require.NoError(t, err)
	require.NoError(t, os.Remove(r.Path("t.pdf")))

	ft := &fakeTransport{}
	err = New(validConfig(), WithTransport(ft)).Send(context.Background(), Request{
		Recipient:   "x@y.z",
		Attachments: []string{r.Path("t.pdf")},
	})

	assert.Equal(t, "Error: Attachment not found at "+r.Path("t.pdf"), Outcome(err, "x@y.z"))
	assert.Empty(t, ft.calls)
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.MailConfig{Address: "a@b.co", Password: "p", Server: "smtp.b.co"})
	assert.Equal(t, Config{From: "a@b.co", Password: "p", Host: "smtp.b.co", Port: 587, Timeout: 30 * time.Second}, cfg)
}
