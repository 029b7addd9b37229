package auth

import (
	"fmt"
	"net/smtp"
	"os"

	"agency-platform/config"
)

// Emailer dispatches account emails. Substituted in tests.
type Emailer interface {
	SendPasswordReset(to, token string) error
}

type SMTPEmailer struct{}

func (SMTPEmailer) SendPasswordReset(to, token string) error {
	from := os.Getenv("SMTP_FROM")
	password := os.Getenv("SMTP_PASSWORD")
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")

	auth := smtp.PlainAuth("", from, password, host)

	link := fmt.Sprintf("%s/reset-password?token=%s", config.APP_URL, token)
	subject := "Reset your password"
	body := fmt.Sprintf("Click the following link to reset your password. The link expires in one hour.\n\n%s", link)

	message := []byte("Subject: " + subject + "\r\n" +
		"From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		body + "\r\n")

	return smtp.SendMail(host+":"+port, auth, from, []string{to}, message)
}
