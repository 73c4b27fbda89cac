// Package mailer delivers transactional email over SMTP. Bodies are
// rendered from inline html/template templates; transport failures are
// returned to the caller, which decides whether they abort the flow
// (OTP dispatch) or only get logged (welcome email worker).
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"strings"
)

type Mailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// New builds an SMTP mailer. With an empty host the mailer runs in
// log-only mode: every message is written to the process log instead
// of being sent, which keeps local development working without an
// SMTP account.
func New(host, port, username, password, from string) *Mailer {
	return &Mailer{host: host, port: port, username: username, password: password, from: from}
}

var otpSubjects = map[string]string{
	"verification": "Verify Your Email - OTP Code",
	"login":        "Login OTP Code",
	"reset":        "Password Reset - OTP Code",
	"two_factor":   "Two-Factor Authentication Code",
}

var otpIntros = map[string]string{
	"verification": "Please use the following code to verify your email address:",
	"login":        "Please use the following code to complete your login:",
	"reset":        "Please use the following code to reset your password:",
	"two_factor":   "Please use the following code for two-factor authentication:",
}

var otpTmpl = template.Must(template.New("otp").Parse(`<html><body>
<p>Hello,</p>
<p>{{.Intro}}</p>
<p style="font-size:24px;font-weight:bold;letter-spacing:5px">{{.Code}}</p>
<p><strong>Important:</strong> this code expires in 5 minutes. Do not share it with anyone.</p>
<p>If you didn't request this code, please ignore this email.</p>
</body></html>`))

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<html><body>
<p>Hello {{.Name}},</p>
<p>Welcome! Your account has been created and is ready to use.</p>
<p>If you have any questions, feel free to reach out to our support team.</p>
</body></html>`))

// SendOTPEmail emails a one-time code. The purpose selects the subject
// line and intro text; unknown purposes fall back to a generic one.
func (m *Mailer) SendOTPEmail(ctx context.Context, to, code, purpose string) error {
	subject, ok := otpSubjects[purpose]
	if !ok {
		subject = "Your OTP Code"
	}
	intro, ok := otpIntros[purpose]
	if !ok {
		intro = "Please use the following code:"
	}
	var body bytes.Buffer
	if err := otpTmpl.Execute(&body, struct{ Intro, Code string }{intro, code}); err != nil {
		return err
	}
	return m.send(ctx, to, subject, body.String())
}

// SendWelcomeEmail emails the post-registration greeting.
func (m *Mailer) SendWelcomeEmail(ctx context.Context, to, name string) error {
	var body bytes.Buffer
	if err := welcomeTmpl.Execute(&body, struct{ Name string }{name}); err != nil {
		return err
	}
	return m.send(ctx, to, "Welcome to Our Platform!", body.String())
}

func (m *Mailer) send(_ context.Context, to, subject, htmlBody string) error {
	if m.host == "" {
		log.Printf("mailer: SMTP disabled, would send %q to %s", subject, to)
		return nil
	}
	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", m.from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		htmlBody,
	}, "\r\n")

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	addr := m.host + ":" + m.port
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}
