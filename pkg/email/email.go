package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
)

// Config is the SMTP relay configuration.
type Config struct {
	Host      string
	Port      string
	Username  string
	Password  string
	FromEmail string
}

// EmailService handles sending emails via SMTP
type EmailService struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
	send      func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// Message is a rendered e-mail ready to send.
type Message struct {
	To      string
	Subject string
	Body    string
}

func NewEmailService(cfg Config) *EmailService {
	from := cfg.FromEmail
	if from == "" {
		from = cfg.Username
	}
	return &EmailService{
		host:      cfg.Host,
		port:      cfg.Port,
		username:  cfg.Username,
		password:  cfg.Password,
		fromEmail: from,
		send:      sendMail,
	}
}

const layoutTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #1d6f42; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .line { margin-bottom: 10px; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h1>{{.Title}}</h1></div>
        <div class="content">
            {{range .Lines}}<div class="line">{{.}}</div>{{end}}
        </div>
        <div class="footer"><p>Plataforma PCD - mensagem automática, não responda.</p></div>
    </div>
</body>
</html>`

var layout = template.Must(template.New("layout").Parse(layoutTemplate))

// Render builds an HTML message from a title and body lines. Values are
// HTML-escaped by html/template.
func Render(to, title string, lines []string) (Message, error) {
	var body bytes.Buffer
	if err := layout.Execute(&body, struct {
		Title string
		Lines []string
	}{title, lines}); err != nil {
		return Message{}, fmt.Errorf("failed to execute email template: %w", err)
	}
	return Message{To: to, Subject: title, Body: body.String()}, nil
}

// Send delivers msg through the configured SMTP relay. The connection is
// abandoned when ctx is done.
func (s *EmailService) Send(ctx context.Context, msg Message) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email service is not configured")
	}

	raw := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		s.fromEmail,
		msg.To,
		msg.Subject,
		msg.Body,
	))

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := s.send(ctx, addr, auth, s.fromEmail, []string{msg.To}, raw); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// IsConfigured checks if the email service has valid SMTP configuration
func (s *EmailService) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}

// sendMail follows smtp.SendMail but dials with ctx and applies its deadline
// to the whole SMTP exchange.
func sendMail(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return err
		}
	}

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if a != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(a); err != nil {
				return err
			}
		}
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
