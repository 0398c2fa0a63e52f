package notifier

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"appointment_monitor/internal/config"
	apperrors "appointment_monitor/pkg/errors"
)

// SendMailFunc отправляет готовое письмо; как smtp.SendMail, но с контекстом
type SendMailFunc func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error

// DefaultSMTPTimeout ограничивает подключение и весь SMTP-диалог
const DefaultSMTPTimeout = 30 * time.Second

// EmailSender отправляет уведомления по SMTP с STARTTLS
type EmailSender struct {
	host     string
	port     int
	creds    config.Credentials
	timeout  time.Duration
	rootCAs  *x509.CertPool
	sendMail SendMailFunc
	now      func() time.Time
}

// NewEmailSender создает отправителя почты
func NewEmailSender(host string, port int, creds config.Credentials) *EmailSender {
	e := &EmailSender{
		host:    host,
		port:    port,
		creds:   creds,
		timeout: DefaultSMTPTimeout,
		now:     time.Now,
	}
	e.sendMail = e.sendSTARTTLS
	return e
}

// WithSendMail подменяет функцию отправки
func (e *EmailSender) WithSendMail(fn SendMailFunc) *EmailSender {
	e.sendMail = fn
	return e
}

// WithTimeout задает предел на подключение и SMTP-диалог; d <= 0 оставляет
// значение по умолчанию
func (e *EmailSender) WithTimeout(d time.Duration) *EmailSender {
	if d > 0 {
		e.timeout = d
	}
	return e
}

// Channel реализует Sender
func (e *EmailSender) Channel() string {
	return ChannelEmail
}

// Send реализует Sender
func (e *EmailSender) Send(ctx context.Context, subject, body string) error {
	if !e.creds.EmailReady() {
		return apperrors.ErrCredentialsMissing.WithContext(ChannelEmail)
	}
	if err := ctx.Err(); err != nil {
		return apperrors.ErrNotifyEmail.WithError(err)
	}

	msg, err := e.BuildMessage(subject, body)
	if err != nil {
		return apperrors.ErrNotifyEmail.WithError(err)
	}

	addr := net.JoinHostPort(e.host, strconv.Itoa(e.port))
	auth := smtp.PlainAuth("", e.creds.EmailAddress, e.creds.EmailPassword, e.host)

	if err := e.sendMail(ctx, addr, auth, e.creds.EmailAddress, []string{e.creds.ToEmail}, msg); err != nil {
		return apperrors.ErrNotifyEmail.WithError(err).WithContext(e.creds.ToEmail)
	}

	return nil
}

// BuildMessage собирает MIME multipart письмо с одной text/plain частью
func (e *EmailSender) BuildMessage(subject, body string) ([]byte, error) {
	var parts bytes.Buffer
	mw := multipart.NewWriter(&parts)

	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Type", `text/plain; charset="utf-8"`)
	partHeader.Set("Content-Transfer-Encoding", "quoted-printable")

	pw, err := mw.CreatePart(partHeader)
	if err != nil {
		return nil, err
	}
	qp := quotedprintable.NewWriter(pw)
	if _, err := qp.Write([]byte(body)); err != nil {
		return nil, err
	}
	if err := qp.Close(); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", e.creds.EmailAddress)
	fmt.Fprintf(&msg, "To: %s\r\n", e.creds.ToEmail)
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&msg, "Date: %s\r\n", e.now().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/mixed; boundary=%q\r\n", mw.Boundary())
	msg.WriteString("\r\n")
	msg.Write(parts.Bytes())

	return msg.Bytes(), nil
}

// sendSTARTTLS отправляет письмо, требуя STARTTLS до аутентификации.
// Соединение ограничено e.timeout и закрывается при отмене ctx.
func (e *EmailSender) sendSTARTTLS(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}

	dialer := &net.Dialer{Timeout: e.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(e.timeout)); err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if err := e.converse(conn, host, a, from, to, msg); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("smtp session aborted: %w (%v)", ctxErr, err)
		}
		return err
	}
	return nil
}

func (e *EmailSender) converse(conn net.Conn, host string, a smtp.Auth, from string, to []string, msg []byte) error {
	c, err := smtp.NewClient(conn, host)
	if err != nil {
		return fmt.Errorf("smtp greeting from %s failed: %w", host, err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); !ok {
		return fmt.Errorf("server %s does not support STARTTLS", host)
	}
	if err := c.StartTLS(&tls.Config{ServerName: host, MinVersion: tls.VersionTLS12, RootCAs: e.rootCAs}); err != nil {
		return fmt.Errorf("starttls failed: %w", err)
	}
	if err := c.Auth(a); err != nil {
		return fmt.Errorf("smtp auth failed: %w", err)
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return c.Quit()
}
