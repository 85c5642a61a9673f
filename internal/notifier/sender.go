package notifier

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"os"
	"path/filepath"
	texttemplate "text/template"

	gopkgmail "gopkg.in/gomail.v2"
)

type Notification struct {
	To       string
	Subject  string
	Template string         // имя шаблона без расширения, например "order_created"
	Data     map[string]any // данные для шаблона
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	SSL      bool
}

// Sender отправляет готовое уведомление
type Sender interface {
	Send(n Notification) error
}

type EmailSender struct {
	smtp    SMTPConfig
	tmplDir string
}

func NewEmailSender(smtp SMTPConfig, tmplDir string) *EmailSender {
	return &EmailSender{smtp: smtp, tmplDir: tmplDir}
}

func (s *EmailSender) Send(n Notification) error {
	m, err := s.BuildMessage(n)
	if err != nil {
		return err
	}
	d := gopkgmail.NewDialer(s.smtp.Host, s.smtp.Port, s.smtp.User, s.smtp.Password)
	d.SSL = s.smtp.SSL
	return d.DialAndSend(m)
}

// BuildMessage рендерит оба варианта тела письма
func (s *EmailSender) BuildMessage(n Notification) (*gopkgmail.Message, error) {
	htmlBody, err := s.renderHTML(n.Template, n.Data)
	if err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	plainBody, err := s.renderPlain(n.Template, n.Data)
	if err != nil {
		return nil, fmt.Errorf("render plain: %w", err)
	}

	m := gopkgmail.NewMessage()
	m.SetHeader("From", s.smtp.From)
	m.SetHeader("To", n.To)
	m.SetHeader("Subject", n.Subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)
	return m, nil
}

func (s *EmailSender) renderHTML(name string, data map[string]any) (string, error) {
	content, err := os.ReadFile(filepath.Join(s.tmplDir, name+".html"))
	if err != nil {
		return "", err
	}
	tmpl, err := htmltemplate.New(name).Parse(string(content))
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *EmailSender) renderPlain(name string, data map[string]any) (string, error) {
	content, err := os.ReadFile(filepath.Join(s.tmplDir, name+".txt"))
	if err != nil {
		return "", err
	}
	tmpl, err := texttemplate.New(name).Parse(string(content))
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
