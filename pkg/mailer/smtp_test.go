package mailer

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSMTP - минимальный SMTP сервер для одной сессии на каждое соединение.
type fakeSMTP struct {
	ln         net.Listener
	tlsCfg     *tls.Config
	noStartTLS bool
	rejectAuth bool

	mu    sync.Mutex
	auth  string
	rcpts []string
	data  string
}

func selfSignedCert(t *testing.T) tls.Certificate {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "fake.local"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}
}

func startFakeSMTP(t *testing.T, configure func(*fakeSMTP)) *fakeSMTP {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &fakeSMTP{
		ln:     ln,
		tlsCfg: &tls.Config{Certificates: []tls.Certificate{selfSignedCert(t)}},
	}
	if configure != nil {
		configure(s)
	}

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go s.serve(conn)
		}
	}()
	t.Cleanup(func() { ln.Close() })
	return s
}

func (s *fakeSMTP) port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

func (s *fakeSMTP) serve(conn net.Conn) {
	defer func() { conn.Close() }()

	tp := textproto.NewConn(conn)
	_ = tp.PrintfLine("220 fake.local ESMTP")
	tlsOn := false

	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			_ = tp.PrintfLine("500 empty command")
			continue
		}

		switch strings.ToUpper(fields[0]) {
		case "EHLO", "HELO":
			exts := []string{"fake.local"}
			if !s.noStartTLS && !tlsOn {
				exts = append(exts, "STARTTLS")
			}
			exts = append(exts, "AUTH PLAIN")
			for i, ext := range exts {
				sep := "-"
				if i == len(exts)-1 {
					sep = " "
				}
				_ = tp.PrintfLine("250%s%s", sep, ext)
			}
		case "STARTTLS":
			_ = tp.PrintfLine("220 ready to start TLS")
			tlsConn := tls.Server(conn, s.tlsCfg)
			if err := tlsConn.Handshake(); err != nil {
				return
			}
			conn = tlsConn
			tp = textproto.NewConn(conn)
			tlsOn = true
		case "AUTH":
			if s.rejectAuth {
				_ = tp.PrintfLine("535 5.7.8 Username and Password not accepted")
				continue
			}
			s.mu.Lock()
			s.auth = line
			s.mu.Unlock()
			_ = tp.PrintfLine("235 2.7.0 Accepted")
		case "MAIL":
			_ = tp.PrintfLine("250 OK")
		case "RCPT":
			s.mu.Lock()
			s.rcpts = append(s.rcpts, line)
			s.mu.Unlock()
			_ = tp.PrintfLine("250 OK")
		case "DATA":
			_ = tp.PrintfLine("354 go ahead")
			data, err := tp.ReadDotBytes()
			if err != nil {
				return
			}
			s.mu.Lock()
			s.data = string(data)
			s.mu.Unlock()
			_ = tp.PrintfLine("250 queued")
		case "QUIT":
			_ = tp.PrintfLine("221 bye")
			return
		default:
			_ = tp.PrintfLine("501 unrecognized command")
		}
	}
}

func testTransport() *SMTPTransport {
	return &SMTPTransport{
		DialTimeout: 2 * time.Second,
		TLSConfig:   &tls.Config{InsecureSkipVerify: true},
	}
}

func envelopeFor(port int) Envelope {
	return Envelope{
		Host:     "127.0.0.1",
		Port:     port,
		Username: "bot@example.com",
		Password: "secret",
		From:     "bot@example.com",
		To:       []string{"x@y.z"},
		Data:     []byte("Subject: hi\r\n\r\nhello\r\n"),
	}
}

func TestSMTPTransport_Delivers(t *testing.T) {
	srv := startFakeSMTP(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := testTransport().Deliver(ctx, envelopeFor(srv.port()))
	require.NoError(t, err)

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.True(t, strings.HasPrefix(srv.auth, "AUTH PLAIN "))
	assert.Equal(t, []string{"RCPT TO:<x@y.z>"}, srv.rcpts)
	assert.Contains(t, srv.data, "hello")
}

func TestSMTPTransport_AuthRejected(t *testing.T) {
	srv := startFakeSMTP(t, func(s *fakeSMTP) { s.rejectAuth = true })

	err := testTransport().Deliver(context.Background(), envelopeFor(srv.port()))

	require.Error(t, err)
	assert.Equal(t, KindAuth, KindOf(err))
	assert.Equal(t, "Email sending failed (Authentication error). Check credentials and App Password.", Outcome(err, "x@y.z"))
}

func TestSMTPTransport_NoStartTLS(t *testing.T) {
	srv := startFakeSMTP(t, func(s *fakeSMTP) { s.noStartTLS = true })

	err := testTransport().Deliver(context.Background(), envelopeFor(srv.port()))

	assert.Equal(t, KindTransport, KindOf(err))
}

func TestSMTPTransport_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	err = testTransport().Deliver(context.Background(), envelopeFor(port))

	assert.Equal(t, KindTransport, KindOf(err))
	assert.Equal(t, "Email sending failed (Connection error). Check SMTP server and port.", Outcome(err, "x@y.z"))
}

func TestSMTPTransport_ViaDispatcher(t *testing.T) {
	srv := startFakeSMTP(t, nil)

	d := New(Config{From: "bot@example.com", Password: "secret", Host: "127.0.0.1", Port: srv.port()},
		WithTransport(testTransport()))
	err := d.Send(context.Background(), Request{Recipient: "x@y.z", Subject: "s", Body: "b"})
	require.NoError(t, err)

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Contains(t, srv.data, "Content-Type: multipart/mixed")
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindAuth, classify("mail from", &textproto.Error{Code: 530, Msg: "auth required"}, KindUnknown).Kind)
	assert.Equal(t, KindUnknown, classify("rcpt to", &textproto.Error{Code: 550, Msg: "no such user"}, KindUnknown).Kind)
	assert.Equal(t, KindTransport, classify("data", net.ErrClosed, KindUnknown).Kind)
}
