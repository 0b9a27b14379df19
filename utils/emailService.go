package utils

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"devcourses/config"
)

// Mailer sends transactional email through SendGrid.
type Mailer struct {
	apiKey string
	host   string
	from   string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		apiKey: cfg.SendgridApiKey,
		host:   cfg.SendgridHost,
		from:   cfg.EmailFrom,
	}
}

func (m *Mailer) send(message *mail.SGMailV3) error {
	request := sendgrid.GetRequest(m.apiKey, "/v3/mail/send", m.host)
	request.Method = "POST"
	request.Body = mail.GetRequestBody(message)

	resp, err := sendgrid.API(request)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// SendPasswordResetEmail emails the short reset code to the user.
func (m *Mailer) SendPasswordResetEmail(email, code string) error {
	from := mail.NewEmail("devCourses", m.from)
	to := mail.NewEmail("", email)
	subject := "devCourses | Reset password"
	body := fmt.Sprintf(`
	<html>
		<h1>Reset password</h1>
		<p>Please use this code to reset your password.</p>
		<h2 style="color: red">%s</h2>
		<i>devcourses.com</i>
	</html>
	`, code)

	if err := m.send(mail.NewSingleEmail(from, subject, to, "", body)); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// SendEnrollmentEmail confirms a completed paid enrollment. Failures are
// logged by the caller; enrollment never depends on email delivery.
func (m *Mailer) SendEnrollmentEmail(email, courseName string) error {
	from := mail.NewEmail("devCourses", m.from)
	to := mail.NewEmail("", email)
	subject := "Enrollment confirmed: " + courseName
	body := fmt.Sprintf(`
	<html>
		<h1>You're in!</h1>
		<p>Your enrollment in <strong>%s</strong> is confirmed.</p>
		<p>Head to your dashboard to start learning.</p>
		<i>devcourses.com</i>
	</html>
	`, courseName)

	if err := m.send(mail.NewSingleEmail(from, subject, to, "", body)); err != nil {
		return fmt.Errorf("send enrollment email: %w", err)
	}
	return nil
}
