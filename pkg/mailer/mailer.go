// Package mailer sends the transactional account emails.
package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

// Sender delivers composed messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Config holds SMTP and app settings
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	AppHost  string
}

// NewDialer builds the SMTP dialer for cfg.
func NewDialer(cfg Config) *gomail.Dialer {
	return gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
}

type mail struct {
	template string
	subject  string
	action   string
	path     string
	text     string
}

var (
	confirmationMail = mail{
		template: "confirmation.html",
		subject:  "Confirm your WeaboTalk account",
		action:   "Confirm my account",
		path:     "/api/v1/auth/confirm",
		text:     "Welcome to WeaboTalk! Confirm your account here: %s",
	}
	resetPasswordMail = mail{
		template: "reset_password.html",
		subject:  "Reset your WeaboTalk password",
		action:   "Change my password",
		path:     "/password/edit",
		text:     "Reset your password here (valid for 6 hours): %s\n\nIf you didn't ask for this, ignore this email.",
	}
	unlockMail = mail{
		template: "unlock.html",
		subject:  "Unlock your WeaboTalk account",
		action:   "Unlock my account",
		path:     "/api/v1/auth/unlock",
		text:     "Your account was locked after too many failed sign-in attempts. Unlock it here: %s",
	}
)

// Mailer renders and sends account emails.
type Mailer struct {
	sender    Sender
	cfg       Config
	templates map[string]*template.Template
	log       *zap.Logger
}

// New parses the embedded templates and returns a Mailer.
func New(sender Sender, cfg Config, log *zap.Logger) (*Mailer, error) {
	templates := make(map[string]*template.Template)
	for _, m := range []mail{confirmationMail, resetPasswordMail, unlockMail} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+m.template)
		if err != nil {
			return nil, fmt.Errorf("parse mail template %s: %w", m.template, err)
		}
		templates[m.template] = t
	}
	return &Mailer{sender: sender, cfg: cfg, templates: templates, log: log}, nil
}

// SendConfirmation mails the email confirmation link.
func (m *Mailer) SendConfirmation(to, token string) error {
	return m.send(confirmationMail, to, token)
}

// SendResetPassword mails the password reset link.
func (m *Mailer) SendResetPassword(to, token string) error {
	return m.send(resetPasswordMail, to, token)
}

// SendUnlock mails the account unlock link.
func (m *Mailer) SendUnlock(to, token string) error {
	return m.send(unlockMail, to, token)
}

func (m *Mailer) link(path, token string) string {
	return fmt.Sprintf("%s%s?token=%s", m.cfg.AppHost, path, url.QueryEscape(token))
}

func (m *Mailer) send(kind mail, to, token string) error {
	link := m.link(kind.path, token)

	var html bytes.Buffer
	err := m.templates[kind.template].ExecuteTemplate(&html, "layout", map[string]any{
		"Subject": kind.subject,
		"Email":   to,
		"Link":    link,
		"Action":  kind.action,
		"Year":    time.Now().Year(),
	})
	if err != nil {
		return fmt.Errorf("render %s: %w", kind.template, err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", kind.subject)
	msg.SetBody("text/plain", fmt.Sprintf(kind.text, link))
	msg.AddAlternative("text/html", html.String())

	if err := m.sender.DialAndSend(msg); err != nil {
		m.log.Warn("Failed to send email", zap.String("subject", kind.subject), zap.String("email", to), zap.Error(err))
		return fmt.Errorf("send %q: %w", kind.subject, err)
	}
	m.log.Info("Email sent", zap.String("subject", kind.subject), zap.String("email", to))
	return nil
}
