package mailer

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// Mailer sends plain HTML mail over SMTP. A zero-config Mailer (empty host)
// is a no-op so local development works without an SMTP server.
type Mailer struct {
	host     string
	port     string
	from     string
	password string
}

func New(host, port, from, password string) *Mailer {
	return &Mailer{host: host, port: port, from: from, password: password}
}

func (m *Mailer) Enabled() bool {
	return m != nil && m.host != ""
}

func (m *Mailer) Send(to []string, subject, htmlBody string) error {
	if !m.Enabled() {
		log.Printf("mailer disabled, skipping email subject=%q to=%v", subject, to)
		return nil
	}

	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: CampusBook <%s>\r\n", m.from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", m.from, m.password, m.host)
	return smtp.SendMail(m.host+":"+m.port, auth, m.from, to, []byte(msg))
}

// Template wraps body content in the shared layout used by all lifecycle emails.
func Template(title, bodyContent string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<style>
	body { font-family: Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
	.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
	.header { background-color: #1A2B4C; padding: 24px; text-align: center; }
	.header h1 { color: #FFFFFF; margin: 0; font-size: 22px; }
	.content { padding: 32px 24px; color: #1A2B4C; line-height: 1.6; }
	.footer { background-color: #F6F6F6; padding: 16px; text-align: center; font-size: 12px; color: #666666; }
</style>
</head>
<body>
	<div class="container">
		<div class="header"><h1>CampusBook</h1></div>
		<div class="content"><h2>%s</h2>%s</div>
		<div class="footer">This is an automated message from the appointment system.</div>
	</div>
</body>
</html>`, title, bodyContent)
}
