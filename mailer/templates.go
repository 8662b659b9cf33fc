package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

const brand = "The Kind Travel"

// FieldChange describes one profile field in a "profile updated" notice.
type FieldChange struct {
	Field string
	Old   string
	New   string
}

var layout = template.Must(template.New("layout").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { background:#f5f7fb; font-family:Arial, Helvetica, sans-serif; color:#222; }
.container { max-width:640px; margin:20px auto; }
.card { background:#fff; border:1px solid #e6eef6; padding:24px; border-radius:8px; }
.btn { display:inline-block; padding:12px 20px; background:#0b74ff; color:#fff; text-decoration:none; border-radius:6px; margin-top:16px; }
table { border-collapse:collapse; width:100%; margin-top:12px; }
td, th { border:1px solid #e6eef6; padding:8px; text-align:left; }
</style>
</head>
<body>
<div class="container">
  <div class="card">
    <h2>{{.Title}}</h2>
    {{if .Name}}<p>Hi {{.Name}},</p>{{end}}
    {{range .Paragraphs}}<p>{{.}}</p>
    {{end}}
    {{if .Link}}<a class="btn" href="{{.Link}}" target="_blank">{{.LinkLabel}}</a>{{end}}
    {{if .Changes}}<table>
      <tr><th>Field</th><th>Previous</th><th>New</th></tr>
      {{range .Changes}}<tr><td>{{.Field}}</td><td>{{.Old}}</td><td>{{.New}}</td></tr>
      {{end}}
    </table>{{end}}
    <p>{{.Footer}}</p>
  </div>
</div>
</body>
</html>`))

type page struct {
	Title      string
	Name       string
	Paragraphs []string
	Link       string
	LinkLabel  string
	Changes    []FieldChange
	Footer     string
}

func render(to, subject string, p page) (Message, error) {
	var html bytes.Buffer
	if err := layout.Execute(&html, p); err != nil {
		return Message{}, fmt.Errorf("render %q: %w", subject, err)
	}

	var text strings.Builder
	if p.Name != "" {
		text.WriteString(fmt.Sprintf("Hi %s,\n\n", p.Name))
	}
	for _, para := range p.Paragraphs {
		text.WriteString(para + "\n")
	}
	if p.Link != "" {
		text.WriteString("\n" + p.Link + "\n")
	}
	for _, c := range p.Changes {
		text.WriteString(fmt.Sprintf("- %s: %s -> %s\n", c.Field, c.Old, c.New))
	}
	text.WriteString("\n" + p.Footer + "\n")

	return Message{To: to, Subject: subject, Text: text.String(), HTML: html.String()}, nil
}

func PasswordResetMessage(to, resetLink string) (Message, error) {
	return render(to, "Password Reset Request - "+brand, page{
		Title: "Reset your password",
		Paragraphs: []string{
			"We received a request to reset the password for your admin account.",
			"This link expires in 1 hour.",
		},
		Link:      resetLink,
		LinkLabel: "Reset password",
		Footer:    "If you did not request a password reset, you can ignore this email.",
	})
}

func PasswordChangedMessage(to, name string) (Message, error) {
	return render(to, "Password Changed Successfully - "+brand, page{
		Title:      "Your password was changed",
		Name:       name,
		Paragraphs: []string{"The password for your admin account has just been changed."},
		Footer:     "If you did not make this change, reset your password immediately and contact support.",
	})
}

// EmailChangedMessage notifies either side of an email change. The old
// address receives a security alert subject.
func EmailChangedMessage(to, name, oldEmail, newEmail string, alert bool) (Message, error) {
	subject := "Email Address Updated - " + brand
	if alert {
		subject = "Security Alert: Your Email Was Changed - " + brand
	}
	return render(to, subject, page{
		Title: "Your email address was changed",
		Name:  name,
		Paragraphs: []string{
			fmt.Sprintf("The login email for your admin account changed from %s to %s.", oldEmail, newEmail),
		},
		Footer: "If you did not make this change, contact support immediately.",
	})
}

func ProfileUpdatedMessage(to, name string, changes []FieldChange) (Message, error) {
	return render(to, "Profile Updated - "+brand, page{
		Title:      "Your profile was updated",
		Name:       name,
		Paragraphs: []string{"The following changes were made to your admin profile:"},
		Changes:    changes,
		Footer:     "If you did not make these changes, contact support immediately.",
	})
}
