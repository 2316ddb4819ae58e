package email

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeSender struct {
	messages []*gomail.Message
	err      error
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, m...)
	return nil
}

func siteData() TemplateData {
	return TemplateData{
		"Subject":     "Test",
		"SiteName":    "GreenJobs",
		"SiteURL":     "https://greenjobs.example",
		"AccentColor": "#2e7d32",
		"FooterText":  "Footer line",
		"HeaderImage": "",
	}
}

func TestTemplateManager_BundledTemplates(t *testing.T) {
	tm, err := NewTemplateManager()
	require.NoError(t, err)

	for _, name := range []string{"admin_new_application", "applicant_confirmation", "applicant_approved", "applicant_rejected", GenericTemplate} {
		assert.Equal(t, SourceBundled, tm.Resolve(name), name)
	}
	assert.Equal(t, SourceGeneric, tm.Resolve("no_such_template"))
	assert.NotContains(t, tm.TemplateNames(), "layout")
}

func TestTemplateManager_RenderWrapsLayout(t *testing.T) {
	tm, err := NewTemplateManager()
	require.NoError(t, err)

	data := siteData()
	data["FirstName"] = "Jane"
	data["ProfileURL"] = "https://greenjobs.example/directory/profiles/1"

	out, err := tm.Render("applicant_approved", data)
	require.NoError(t, err)

	assert.Contains(t, out, "Welcome to the directory, Jane!")
	assert.Contains(t, out, "<h1 style=\"margin:0;color:#ffffff;font-size:22px;\">GreenJobs</h1>")
	assert.Contains(t, out, "Footer line")
	assert.Contains(t, out, "View your profile")
}

func TestTemplateManager_RejectionReasonBlock(t *testing.T) {
	tm, err := NewTemplateManager()
	require.NoError(t, err)

	data := siteData()
	data["FirstName"] = "Jane"
	data["RejectionReason"] = "Duplicate\n\nPlease contact us"

	out, err := tm.Render("applicant_rejected", data)
	require.NoError(t, err)
	assert.Contains(t, out, "<strong>Reason:</strong>")
	assert.Contains(t, out, ">Duplicate</p>")
	assert.Contains(t, out, ">Please contact us</p>")

	data["RejectionReason"] = ""
	out, err = tm.Render("applicant_rejected", data)
	require.NoError(t, err)
	assert.NotContains(t, out, "Reason:")
}

func TestTemplateManager_EscapesUserInput(t *testing.T) {
	tm, err := NewTemplateManager()
	require.NoError(t, err)

	data := siteData()
	data["FirstName"] = "<script>alert(1)</script>"

	out, err := tm.Render("applicant_confirmation", data)
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestTemplateManager_UnknownFallsBackToGeneric(t *testing.T) {
	tm, err := NewTemplateManager()
	require.NoError(t, err)

	data := siteData()
	data["Message"] = "Hello there"

	out, err := tm.Render("custom_event", data)
	require.NoError(t, err)
	assert.Contains(t, out, "<p>Hello there</p>")
}

func TestTemplateManager_OverrideDirectory(t *testing.T) {
	dir := t.TempDir()
	override := `{{template "header" .}}<p>Custom approval for {{.FirstName}}</p>{{template "footer" .}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "applicant_approved.html"), []byte(override), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	tm, err := NewTemplateManager()
	require.NoError(t, err)
	require.NoError(t, tm.LoadTemplates(dir))

	assert.Equal(t, SourceOverride, tm.Resolve("applicant_approved"))
	assert.Equal(t, SourceBundled, tm.Resolve("applicant_rejected"))

	data := siteData()
	data["FirstName"] = "Jane"
	out, err := tm.Render("applicant_approved", data)
	require.NoError(t, err)
	assert.Contains(t, out, "Custom approval for Jane")
	assert.Contains(t, out, "Footer line")
}

func TestTemplateManager_MissingOverrideDirIsIgnored(t *testing.T) {
	tm, err := NewTemplateManager()
	require.NoError(t, err)
	assert.NoError(t, tm.LoadTemplates(filepath.Join(t.TempDir(), "missing")))
	assert.NoError(t, tm.LoadTemplates(""))
}

func TestTemplateManager_BrokenOverride(t *testing.T) {
	tm, err := NewTemplateManager()
	require.NoError(t, err)
	assert.Error(t, tm.AddTemplate("broken", "{{if}"))
	assert.Equal(t, SourceGeneric, tm.Resolve("broken"))
}

func TestSMTPProvider_Validate(t *testing.T) {
	_, err := NewSMTPProvider(&SMTPConfig{Port: 587, FromEmail: "no-reply@example.com"})
	assert.Error(t, err)

	_, err = NewSMTPProvider(&SMTPConfig{Host: "smtp.example.com", Port: 0, FromEmail: "no-reply@example.com"})
	assert.Error(t, err)

	_, err = NewSMTPProvider(&SMTPConfig{Host: "smtp.example.com", Port: 587})
	assert.Error(t, err)

	p, err := NewSMTPProvider(&SMTPConfig{Host: "smtp.example.com", Port: 587, FromEmail: "no-reply@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "smtp", p.Name())
}

func TestSMTPProvider_Send(t *testing.T) {
	fake := &fakeSender{}
	p := &SMTPProvider{
		config: &SMTPConfig{Host: "smtp.example.com", Port: 587, FromEmail: "no-reply@example.com", FromName: "GreenJobs"},
		dialer: fake,
	}

	err := p.Send(context.Background(), &Email{
		To:       []string{"jane@example.com"},
		Subject:  "Hello",
		Body:     "plain",
		HTMLBody: "<p>html</p>",
	})
	require.NoError(t, err)
	require.Len(t, fake.messages, 1)

	m := fake.messages[0]
	assert.Equal(t, []string{"jane@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Hello"}, m.GetHeader("Subject"))
	require.Len(t, m.GetHeader("From"), 1)
	assert.True(t, strings.Contains(m.GetHeader("From")[0], "no-reply@example.com"))
}

func TestSMTPProvider_SendErrors(t *testing.T) {
	fake := &fakeSender{err: errors.New("connection refused")}
	p := &SMTPProvider{
		config: &SMTPConfig{Host: "smtp.example.com", Port: 587, FromEmail: "no-reply@example.com"},
		dialer: fake,
	}

	err := p.Send(context.Background(), &Email{Subject: "no recipients"})
	assert.Error(t, err)

	err = p.Send(context.Background(), &Email{To: []string{"jane@example.com"}, Subject: "x", Body: "y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Send(ctx, &Email{To: []string{"jane@example.com"}}), context.Canceled)
}

func TestLogProvider(t *testing.T) {
	p := NewLogProvider()
	assert.Equal(t, "log", p.Name())
	assert.NoError(t, p.Send(context.Background(), &Email{To: []string{"jane@example.com"}, Subject: "x"}))
}
