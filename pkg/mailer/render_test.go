package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Login(t *testing.T) {
	subject, text, html, err := Render(TemplateLogin, map[string]any{
		"Name": "Alice", "AppName": "accounts", "Time": "01 January 2026, 10:00 UTC", "IP": "10.0.0.1",
	})
	require.NoError(t, err)
	assert.Equal(t, "New login to your account", subject)
	assert.Contains(t, text, "from 10.0.0.1")
	assert.Contains(t, html, "Hi Alice")
}

func TestRender_EscapesHTML(t *testing.T) {
	_, _, html, err := Render(TemplateWelcome, map[string]any{"Name": "<script>", "Handle": "alice", "AppName": "accounts"})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestRender_Unknown(t *testing.T) {
	_, _, _, err := Render("nope", nil)
	assert.Error(t, err)
}

func TestPrepare_Raw(t *testing.T) {
	s, txt, _, err := Prepare(EmailJob{To: "a@x.com", Subject: "hi", Text: "body"})
	require.NoError(t, err)
	assert.Equal(t, "hi", s)
	assert.Equal(t, "body", txt)

	_, _, _, err = Prepare(EmailJob{To: "a@x.com"})
	assert.Error(t, err)
}
