package email

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/whispr/internal/config"
	mail "github.com/xhit/go-simple-mail/v2"
)

// Service delivers the transactional emails: verification codes at signup and
// new-message notifications.
type Service struct {
	config *config.EmailConfig
}

// VerificationMail contains the data for a verification code email.
type VerificationMail struct {
	UserEmail string
	Username  string
	Code      string
	AppName   string
}

// NewMessageMail contains the data for a new-message notification email.
type NewMessageMail struct {
	UserEmail string
	Username  string
	AppName   string
	ServerURL string
}

// New creates a new email service.
func New(cfg *config.EmailConfig) *Service {
	return &Service{
		config: cfg,
	}
}

//go:embed templates/*.html
var templatesFS embed.FS

// SendVerificationCode mails the OTP to a freshly signed-up user.
func (s *Service) SendVerificationCode(m VerificationMail) error {
	if !s.config.Enabled {
		log.Debug("Email delivery is disabled, skipping verification mail", "user", m.Username, "code", m.Code)
		return nil
	}

	body, err := s.renderTemplate("verification.html", m)
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}

	return s.sendEmail(m.UserEmail, "Verify your mail", body)
}

// SendNewMessageNotification tells a user that a new message arrived.
func (s *Service) SendNewMessageNotification(m NewMessageMail) error {
	if !s.config.Enabled {
		log.Debug("Email delivery is disabled, skipping message notification", "user", m.Username)
		return nil
	}

	body, err := s.renderTemplate("new_message.html", m)
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}

	return s.sendEmail(m.UserEmail, "You have a message waiting", body)
}

// renderTemplate creates the HTML email body.
func (s *Service) renderTemplate(name string, data any) (string, error) {
	t, err := template.New("").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// sendEmail sends an email using the go-simple-mail library.
func (s *Service) sendEmail(to, subject, body string) error {
	server := mail.NewSMTPClient()
	server.Host = s.config.SMTPHost
	server.Port = s.config.SMTPPort
	server.Username = s.config.Username
	server.Password = s.config.Password

	// Configure encryption
	if s.config.UseSSL {
		server.Encryption = mail.EncryptionSSLTLS
	} else if s.config.UseTLS {
		server.Encryption = mail.EncryptionSTARTTLS
	} else {
		server.Encryption = mail.EncryptionNone
	}

	if s.config.InsecureSkipVerify {
		server.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	server.KeepAlive = false
	server.ConnectTimeout = 10 * time.Second
	server.SendTimeout = 10 * time.Second

	smtpClient, err := server.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() {
		if closeErr := smtpClient.Close(); closeErr != nil {
			log.Warn("Failed to close SMTP client", "error", closeErr)
		}
	}()

	fromName := s.config.FromName
	if fromName == "" {
		fromName = "Whispr"
	}

	msg := mail.NewMSG()
	msg.SetFrom(fmt.Sprintf("%s <%s>", fromName, s.config.FromEmail))
	msg.AddTo(to)
	msg.SetSubject(subject)
	msg.SetBody(mail.TextHTML, body)

	if err := msg.Send(smtpClient); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Info("Email sent successfully", "to", to, "subject", subject)
	return nil
}
