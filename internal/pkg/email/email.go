package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/taskhive/taskhive-server/config"
)

// Service sends transactional mail over SMTP. Delivery is best-effort: the
// callers log failures and never retry.
type Service struct {
	cfg *config.EmailConfig
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg}
}

// SendNotification wraps a notification title and message in the standard
// template.
func (s *Service) SendNotification(to, title, message string) error {
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #16a34a;">%s</h2>
    <p>%s</p>
    <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
    <p style="color: #6b7280; font-size: 12px;">This is an automated message from TaskHive. Please do not reply.</p>
  </div>
</body>
</html>`, title, message)

	return s.sendHTML(to, title+" - TaskHive", body)
}

func (s *Service) sendHTML(to, subject, body string) error {
	if s.cfg.SMTPHost == "" {
		return fmt.Errorf("email not configured")
	}

	headers := []string{
		fmt.Sprintf("From: %s", s.cfg.From),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}
	msg := strings.Join(headers, "\r\n") + "\r\n\r\n" + body

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg))
}
