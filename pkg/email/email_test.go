package email

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/foodmap/internal/models"
)

func sampleSubmission() models.Submission {
	hours := "Tue 10-2"
	return models.Submission{
		ID:                  "sub-1",
		Name:                "Oak Cliff <Pantry>",
		Type:                models.CategoryFoodPantry,
		Address:             "400 S Zang Blvd, Dallas, TX 75208",
		Latitude:            "32.7468",
		Longitude:           "-96.8276",
		Hours:               &hours,
		AppointmentRequired: true,
		SubmittedAt:         time.Date(2025, 5, 6, 15, 4, 0, 0, time.UTC),
	}
}

func TestBuildSubmissionMessage(t *testing.T) {
	msg, err := BuildSubmissionMessage("noreply@example.org", "admin@example.org", "https://food.example.org", sampleSubmission())
	if err != nil {
		t.Fatalf("BuildSubmissionMessage: %v", err)
	}
	s := string(msg)
	for _, want := range []string{
		"To: admin@example.org\r\n",
		"Subject: New Food Resource Submission: Oak Cliff <Pantry>\r\n",
		"multipart/alternative",
		"Hours: Tue 10-2",
		"Appointment Required: Yes",
		"View at: https://food.example.org/admin/submissions",
		"Oak Cliff &lt;Pantry&gt;",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("message missing %q", want)
		}
	}
	if strings.Contains(s, "Phone:") {
		t.Error("phone row should be omitted when phone is empty")
	}
}

func TestBuildSubmissionMessageStripsHeaderNewlines(t *testing.T) {
	s := sampleSubmission()
	s.Name = "Evil\r\nBcc: victim@example.org"
	msg, err := BuildSubmissionMessage("noreply@example.org", "admin@example.org", "http://localhost:5000", s)
	if err != nil {
		t.Fatal(err)
	}
	headers, _, _ := strings.Cut(string(msg), "\r\n\r\n")
	if strings.Contains(headers, "\r\nBcc:") {
		t.Error("newline in name leaked into headers")
	}
}

func TestNotifierNotConfigured(t *testing.T) {
	n := NewNotifier(nil, "admin@example.org", "")
	if n.IsConfigured() {
		t.Fatal("notifier without SMTP config should not be configured")
	}
	if err := n.SendSubmissionNotification(context.Background(), sampleSubmission()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("got %v, want ErrNotConfigured", err)
	}
	n = NewNotifier(&SMTPConfig{Host: "smtp.example.org", Port: 587, Sender: "a@example.org"}, "", "")
	if n.IsConfigured() {
		t.Error("notifier without admin email should not be configured")
	}
}

func TestNotifierUsesSender(t *testing.T) {
	n := NewNotifier(&SMTPConfig{Host: "smtp.example.org", Port: 587, Sender: "a@example.org"}, "admin@example.org", "http://localhost:5000/")
	var gotTo string
	var gotMsg []byte
	n.send = func(ctx context.Context, cfg *SMTPConfig, to string, msg []byte) error {
		gotTo, gotMsg = to, msg
		return nil
	}
	if err := n.SendSubmissionNotification(context.Background(), sampleSubmission()); err != nil {
		t.Fatal(err)
	}
	if gotTo != "admin@example.org" {
		t.Errorf("to = %q", gotTo)
	}
	if !strings.Contains(string(gotMsg), "http://localhost:5000/admin/submissions") {
		t.Error("link should not contain a double slash")
	}

	n.send = func(ctx context.Context, cfg *SMTPConfig, to string, msg []byte) error {
		return errors.New("connection refused")
	}
	if err := n.SendSubmissionNotification(context.Background(), sampleSubmission()); err == nil {
		t.Error("send failure should be returned")
	}
}

func TestLoadSMTPConfigFromEnv(t *testing.T) {
	t.Setenv("SMTP_HOST", "smtp.example.org")
	t.Setenv("SMTP_PORT", "")
	t.Setenv("SMTP_USERNAME", "")
	t.Setenv("SMTP_USER", "mailer@example.org")
	t.Setenv("SMTP_PASSWORD", "")
	t.Setenv("SMTP_PASS", "pw")
	t.Setenv("SMTP_SENDER_EMAIL", "")

	cfg, err := LoadSMTPConfigFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 587 || cfg.Username != "mailer@example.org" || cfg.Password != "pw" || cfg.Sender != "mailer@example.org" {
		t.Errorf("unexpected config: %+v", cfg)
	}

	t.Setenv("SMTP_PORT", "abc")
	if _, err := LoadSMTPConfigFromEnv(); err == nil {
		t.Error("expected error for invalid port")
	}
}

func TestSendSubmissionNotificationLive(t *testing.T) {
	// 从环境变量读取测试配置
	recipientEmail := os.Getenv("TEST_RECIPIENT_EMAIL")
	if recipientEmail == "" {
		t.Skip("Skipping email sending test: TEST_RECIPIENT_EMAIL environment variable not set.")
	}

	cfg, err := LoadSMTPConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadSMTPConfigFromEnv: %v", err)
	}
	t.Logf("Attempting to send notification to %s using SMTP server %s:%d...", recipientEmail, cfg.Host, cfg.Port)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	n := NewNotifier(cfg, recipientEmail, "http://localhost:5000")
	if err := n.SendSubmissionNotification(ctx, sampleSubmission()); err != nil {
		t.Errorf("SendSubmissionNotification failed: %v", err)
		t.Log("Please ensure SMTP_HOST, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD and SMTP_SENDER_EMAIL are set and the server is reachable.")
	}
}
