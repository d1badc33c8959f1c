package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Sender delivers one rendered message.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
	FromName string
}

type SMTPSender struct {
	cfg SMTPConfig
	log *zap.Logger
}

func NewSMTPSender(cfg SMTPConfig, log *zap.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, log: log}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	fromHeader := fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.From)

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		htmlBody,
	}, "\r\n")

	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)
	s.log.Debug("smtp sending", zap.String("to", to), zap.String("via", addr))

	if err := s.sendWithTimeout(ctx, addr, to, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	s.log.Info("mail sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

func (s *SMTPSender) sendWithTimeout(ctx context.Context, addr, to string, msg []byte) error {
	// timeout ระดับ TCP
	d := net.Dialer{Timeout: 8 * time.Second}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	// กันค้างทั้ง connection
	_ = conn.SetDeadline(time.Now().Add(15 * time.Second))

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer func() { _ = c.Quit() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return err
		}
	}
	if s.cfg.User != "" {
		if err := c.Auth(smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)); err != nil {
			return err
		}
	}

	if err := c.Mail(s.cfg.From); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

type mailData struct {
	Name   string
	Reason string
	Link   string
}

// MailService turns EO decisions into applicant mail.
type MailService struct {
	sender  Sender
	baseURL string
}

func NewMailService(sender Sender, baseURL string) *MailService {
	return &MailService{sender: sender, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *MailService) SendApproved(ctx context.Context, to, name string) error {
	body, err := render("eo-approved.html", mailData{Name: name, Link: s.baseURL + "/eo/dashboard"})
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, to, "Your EO application is approved", body)
}

func (s *MailService) SendRejected(ctx context.Context, to, name, reason string) error {
	body, err := render("eo-rejected.html", mailData{Name: name, Reason: reason, Link: s.baseURL + "/eo/apply"})
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, to, "Your EO application needs changes", body)
}

func render(name string, data mailData) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
