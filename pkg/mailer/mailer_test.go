package mailer

import (
	"strings"
	"testing"

	"github.com/quickgeo/fullgeo-backend/environments"
)

func newTestMailer(t *testing.T) *Mailer {
	t.Helper()

	m, err := NewMailer(environments.MailConfig{
		APIKey:    "re_test",
		FromName:  "Fullgeo",
		FromEmail: "no-reply@fullgeo.test",
		Subject:   "Your account",
	})
	if err != nil {
		t.Fatalf("NewMailer returned error: %v", err)
	}
	return m
}

func TestRender_IncludesCredentials(t *testing.T) {
	m := newTestMailer(t)

	creds := Credentials{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Password: "s3cretPass12",
	}

	html, err := m.render(creds, "en")
	if err != nil {
		t.Fatalf("render returned error: %v", err)
	}

	if !strings.Contains(html, "jane@example.com") {
		t.Fatalf("expected rendered email to contain the address")
	}
	if !strings.Contains(html, "s3cretPass12") {
		t.Fatalf("expected rendered email to contain the password")
	}
}

func TestRender_EveryShippedLanguage(t *testing.T) {
	m := newTestMailer(t)

	creds := Credentials{Name: "Jane", Email: "jane@example.com", Password: "pw"}

	for lang := range supportedLangs {
		if _, err := m.render(creds, lang); err != nil {
			t.Fatalf("render failed for lang %q: %v", lang, err)
		}
	}
}

func TestRender_UnknownLanguageFallsBack(t *testing.T) {
	m := newTestMailer(t)

	creds := Credentials{Name: "Jane", Email: "jane@example.com", Password: "pw"}

	fallback, err := m.render(creds, "xx")
	if err != nil {
		t.Fatalf("render returned error for unknown lang: %v", err)
	}

	spanish, err := m.render(creds, fallbackLang)
	if err != nil {
		t.Fatalf("render returned error for fallback lang: %v", err)
	}

	if fallback != spanish {
		t.Fatalf("expected unknown language to render the %s template", fallbackLang)
	}
}
