package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/resend/resend-go/v2"

	"github.com/quickgeo/fullgeo-backend/environments"
)

//go:embed templates/*.html
var templatesFS embed.FS

// fallbackLang is used when no template exists for the requested language.
const fallbackLang = "es"

var supportedLangs = map[string]bool{
	"en": true, "es": true, "fr": true, "pt": true, "de": true,
}

// Credentials is the data rendered into the account email.
type Credentials struct {
	Name     string
	Email    string
	Password string
}

// Mailer sends transactional email through the Resend API.
type Mailer struct {
	client    *resend.Client
	from      string
	subject   string
	templates *template.Template
}

func NewMailer(cfg environments.MailConfig) (*Mailer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &Mailer{
		client:    resend.NewClient(cfg.APIKey),
		from:      fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail),
		subject:   cfg.Subject,
		templates: tmpl,
	}, nil
}

// SendCredentials emails a freshly generated password in the customer's
// language. The plaintext password exists only in this message; the store
// keeps the hash.
func (m *Mailer) SendCredentials(ctx context.Context, creds Credentials, lang string) error {
	html, err := m.render(creds, lang)
	if err != nil {
		return err
	}

	_, err = m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{creds.Email},
		Subject: m.subject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("failed to send credentials email: %w", err)
	}

	return nil
}

func (m *Mailer) render(creds Credentials, lang string) (string, error) {
	lang = strings.ToLower(lang)
	if !supportedLangs[lang] {
		lang = fallbackLang
	}

	var buf bytes.Buffer
	if err := m.templates.ExecuteTemplate(&buf, "credentials_"+lang+".html", creds); err != nil {
		return "", fmt.Errorf("failed to render email template: %w", err)
	}

	return buf.String(), nil
}
