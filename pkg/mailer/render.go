package mailer

import (
	"bytes"
	"fmt"
	htmltpl "html/template"
	texttpl "text/template"
)

type emailTemplate struct {
	subject string
	text    *texttpl.Template
	html    *htmltpl.Template
}

const layoutHTML = `<!doctype html><html><body style="font-family:sans-serif">
<p>Hi {{.Name}},</p><p>{{template "body" .}}</p>
<p style="color:#888;font-size:12px">{{.AppName}}</p></body></html>`

func newTemplate(subject, text, htmlBody string) emailTemplate {
	h := htmltpl.Must(htmltpl.New("layout").Parse(layoutHTML))
	htmltpl.Must(h.New("body").Parse(htmlBody))
	return emailTemplate{
		subject: subject,
		text:    texttpl.Must(texttpl.New("text").Parse(text)),
		html:    h,
	}
}

var registry = map[string]emailTemplate{
	TemplateWelcome: newTemplate(
		"Welcome to {{.AppName}}",
		"Hi {{.Name}},\n\nYour account @{{.Handle}} is ready.\n",
		`Your account <b>@{{.Handle}}</b> is ready.`,
	),
	TemplateLogin: newTemplate(
		"New login to your account",
		"Hi {{.Name}},\n\nWe noticed a new login at {{.Time}}{{if .IP}} from {{.IP}}{{end}}.\nIf this wasn't you, change your password.\n",
		`We noticed a new login at {{.Time}}{{if .IP}} from {{.IP}}{{end}}. If this wasn't you, change your password.`,
	),
	TemplatePasswordChanged: newTemplate(
		"Your password was changed",
		"Hi {{.Name}},\n\nThe password for @{{.Handle}} was changed at {{.Time}}.\n",
		`The password for <b>@{{.Handle}}</b> was changed at {{.Time}}.`,
	),
}

// Render produces subject, text and html bodies for a named template.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	t, ok := registry[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}
	subj, err := texttpl.New("subject").Parse(t.subject)
	if err != nil {
		return "", "", "", err
	}
	var sb, tb, hb bytes.Buffer
	if err := subj.Execute(&sb, data); err != nil {
		return "", "", "", err
	}
	if err := t.text.Execute(&tb, data); err != nil {
		return "", "", "", err
	}
	if err := t.html.ExecuteTemplate(&hb, "layout", data); err != nil {
		return "", "", "", err
	}
	return sb.String(), tb.String(), hb.String(), nil
}

// Prepare resolves a job into the final subject and bodies.
func Prepare(job EmailJob) (subject, text, html string, err error) {
	if job.Template == "" {
		if job.Subject == "" || (job.Text == "" && job.HTML == "") {
			return "", "", "", fmt.Errorf("email job without template needs subject and body")
		}
		return job.Subject, job.Text, job.HTML, nil
	}
	return Render(job.Template, job.Data)
}
