// Package email delivers templated transactional mail over SMTP using gomail.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/man7ober/natours/internal/core/domain"
	"github.com/man7ober/natours/internal/metrics"
)

const welcomeTmpl = `<h1>Welcome to the Natours family, {{.FirstName}}!</h1>
<p>We're glad to have you on board. Head over to <a href="{{.URL}}">your account</a> to upload a photo and plan your first adventure.</p>`

const passwordResetTmpl = `<h1>Hi {{.FirstName}},</h1>
<p>Forgot your password? Submit a new one here: <a href="{{.URL}}">{{.URL}}</a></p>
<p>The link is valid for 10 minutes. If you didn't ask for a reset, ignore this email.</p>`

var templates = map[string]*template.Template{
	"welcome":        template.Must(template.New("welcome").Parse(welcomeTmpl)),
	"password_reset": template.Must(template.New("password_reset").Parse(passwordResetTmpl)),
}

// Config captures the SMTP transport settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends templated email through an SMTP relay.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(cfg Config) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *Mailer) SendWelcome(ctx context.Context, to *domain.User, accountURL string) error {
	return m.send(ctx, "welcome", "Welcome to the Natours family!", to, accountURL)
}

func (m *Mailer) SendPasswordReset(ctx context.Context, to *domain.User, resetURL string) error {
	return m.send(ctx, "password_reset", "Your password reset token (valid for 10 minutes)", to, resetURL)
}

func (m *Mailer) send(ctx context.Context, tmplName, subject string, to *domain.User, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	err := templates[tmplName].Execute(&body, struct {
		FirstName string
		URL       string
	}{
		FirstName: firstName(to.Name),
		URL:       url,
	})
	if err != nil {
		return fmt.Errorf("render %s email: %w", tmplName, err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to.Email)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	if err := m.dialer.DialAndSend(msg); err != nil {
		metrics.EmailsSentTotal.WithLabelValues(tmplName, "error").Inc()
		return fmt.Errorf("send %s email: %w", tmplName, err)
	}
	metrics.EmailsSentTotal.WithLabelValues(tmplName, "ok").Inc()
	return nil
}

func firstName(full string) string {
	if i := strings.IndexByte(full, ' '); i > 0 {
		return full[:i]
	}
	return full
}
