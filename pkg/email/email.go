package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/foodmap/internal/models"
)

// ErrNotConfigured 未配置 SMTP 或管理员邮箱
var ErrNotConfigured = errors.New("email notifications not configured")

const defaultDialTimeout = 10 * time.Second

// SMTPConfig holds the SMTP server configuration
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	Sender      string
	DialTimeout time.Duration
}

// LoadSMTPConfigFromEnv loads SMTP configuration from environment variables.
// SMTP_USER / SMTP_PASS are accepted as aliases of SMTP_USERNAME / SMTP_PASSWORD.
func LoadSMTPConfigFromEnv() (*SMTPConfig, error) {
	host := os.Getenv("SMTP_HOST")
	portStr := os.Getenv("SMTP_PORT")
	username := firstNonEmpty(os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_USER"))
	password := firstNonEmpty(os.Getenv("SMTP_PASSWORD"), os.Getenv("SMTP_PASS"))
	sender := firstNonEmpty(os.Getenv("SMTP_SENDER_EMAIL"), username)

	if host == "" || sender == "" {
		return nil, fmt.Errorf("SMTP_HOST and SMTP_SENDER_EMAIL (or SMTP_USERNAME) must be set")
	}

	port := 587
	if portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT: %v", err)
		}
		port = p
	}

	return &SMTPConfig{
		Host:        host,
		Port:        port,
		Username:    username, // Username can be empty for some SMTP servers
		Password:    password, // Password can be empty for some SMTP servers
		Sender:      sender,
		DialTimeout: defaultDialTimeout,
	}, nil
}

// Notifier 在有新的用户提交时通知管理员
type Notifier struct {
	cfg        *SMTPConfig
	adminEmail string
	appURL     string
	send       func(ctx context.Context, cfg *SMTPConfig, to string, msg []byte) error
}

// NewNotifier cfg 为 nil 或 adminEmail 为空时 IsConfigured 返回 false
func NewNotifier(cfg *SMTPConfig, adminEmail, appURL string) *Notifier {
	return &Notifier{
		cfg:        cfg,
		adminEmail: strings.TrimSpace(adminEmail),
		appURL:     strings.TrimRight(appURL, "/"),
		send:       sendMail,
	}
}

// IsConfigured 是否具备发送条件
func (n *Notifier) IsConfigured() bool {
	return n != nil && n.cfg != nil && n.cfg.Host != "" && n.cfg.Sender != "" && n.adminEmail != ""
}

// SendSubmissionNotification 发送新提交通知（HTML + 纯文本）
func (n *Notifier) SendSubmissionNotification(ctx context.Context, s models.Submission) error {
	if !n.IsConfigured() {
		return ErrNotConfigured
	}
	msg, err := BuildSubmissionMessage(n.cfg.Sender, n.adminEmail, n.appURL, s)
	if err != nil {
		return err
	}
	if err := n.send(ctx, n.cfg, n.adminEmail, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

var submissionHTML = template.Must(template.New("submission").Parse(`<h2>New Food Resource Submission</h2>
<p>A new food resource has been submitted to your map:</p>
<table style="border-collapse: collapse; width: 100%; max-width: 600px;">
<tr><td style="padding: 8px; border: 1px solid #ddd; font-weight: bold;">Name:</td><td style="padding: 8px; border: 1px solid #ddd;">{{.S.Name}}</td></tr>
<tr><td style="padding: 8px; border: 1px solid #ddd; font-weight: bold;">Type:</td><td style="padding: 8px; border: 1px solid #ddd;">{{.S.Type}}</td></tr>
<tr><td style="padding: 8px; border: 1px solid #ddd; font-weight: bold;">Address:</td><td style="padding: 8px; border: 1px solid #ddd;">{{.S.Address}}</td></tr>
{{- if .S.Hours}}
<tr><td style="padding: 8px; border: 1px solid #ddd; font-weight: bold;">Hours:</td><td style="padding: 8px; border: 1px solid #ddd;">{{.S.Hours}}</td></tr>
{{- end}}
{{- if .S.Phone}}
<tr><td style="padding: 8px; border: 1px solid #ddd; font-weight: bold;">Phone:</td><td style="padding: 8px; border: 1px solid #ddd;">{{.S.Phone}}</td></tr>
{{- end}}
<tr><td style="padding: 8px; border: 1px solid #ddd; font-weight: bold;">Appointment Required:</td><td style="padding: 8px; border: 1px solid #ddd;">{{.Appointment}}</td></tr>
<tr><td style="padding: 8px; border: 1px solid #ddd; font-weight: bold;">Submitted:</td><td style="padding: 8px; border: 1px solid #ddd;">{{.Submitted}}</td></tr>
</table>
<p style="margin-top: 20px;"><a href="{{.Link}}">View All Submissions</a></p>
<p style="margin-top: 20px; color: #666; font-size: 12px;">This is an automated notification from your DFW Food Map application.</p>
`))

// BuildSubmissionMessage 构造 multipart/alternative 邮件，头部使用 CRLF 换行
func BuildSubmissionMessage(from, to, appURL string, s models.Submission) ([]byte, error) {
	appointment := "No"
	if s.AppointmentRequired {
		appointment = "Yes"
	}
	submitted := s.SubmittedAt.Format("Jan 2, 2006 3:04 PM MST")
	link := appURL + "/admin/submissions"

	var text strings.Builder
	text.WriteString("New Food Resource Submission\r\n\r\n")
	fmt.Fprintf(&text, "Name: %s\r\n", s.Name)
	fmt.Fprintf(&text, "Type: %s\r\n", s.Type)
	fmt.Fprintf(&text, "Address: %s\r\n", s.Address)
	if s.Hours != nil && *s.Hours != "" {
		fmt.Fprintf(&text, "Hours: %s\r\n", *s.Hours)
	}
	if s.Phone != nil && *s.Phone != "" {
		fmt.Fprintf(&text, "Phone: %s\r\n", *s.Phone)
	}
	fmt.Fprintf(&text, "Appointment Required: %s\r\n", appointment)
	fmt.Fprintf(&text, "Submitted: %s\r\n\r\n", submitted)
	fmt.Fprintf(&text, "View at: %s\r\n", link)

	var html bytes.Buffer
	err := submissionHTML.Execute(&html, map[string]interface{}{
		"S":           s,
		"Appointment": appointment,
		"Submitted":   submitted,
		"Link":        link,
	})
	if err != nil {
		return nil, fmt.Errorf("render notification: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, part := range []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=\"UTF-8\"", text.String()},
		{"text/html; charset=\"UTF-8\"", html.String()},
	} {
		w, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {part.contentType}})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(part.content)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	// Subject 中去掉换行，防止头部注入
	subject := "New Food Resource Submission: " + strings.NewReplacer("\r", " ", "\n", " ").Replace(s.Name)
	headers := strings.Join([]string{
		"To: " + to,
		"From: \"DFW Food Map\" <" + from + ">",
		"Subject: " + subject,
		"MIME-version: 1.0",
		"Content-Type: multipart/alternative; boundary=\"" + mw.Boundary() + "\"",
		"",
		"",
	}, "\r\n")
	return append([]byte(headers), body.Bytes()...), nil
}

// sendMail 与 smtp.SendMail 流程相同，但带有连接超时并遵循 ctx 截止时间
func sendMail(ctx context.Context, cfg *SMTPConfig, to string, msg []byte) error {
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	dialer := &net.Dialer{Timeout: timeout}

	var (
		conn net.Conn
		err  error
	)
	if cfg.Port == 465 {
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: cfg.Host})
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok && cfg.Port != 465 {
		if err := c.StartTLS(&tls.Config{ServerName: cfg.Host}); err != nil {
			return err
		}
	}
	if cfg.Username != "" {
		if err := c.Auth(smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)); err != nil {
			return err
		}
	}
	if err := c.Mail(cfg.Sender); err != nil {
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
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
