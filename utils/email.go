package utils

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"os"
	"time"
)

// ======================
// SMTP Configuration
// ======================
var (
	smtpHost      = os.Getenv("SMTP_HOST")
	smtpPort      = os.Getenv("SMTP_PORT")
	smtpUsername  = os.Getenv("SMTP_USERNAME")
	smtpPassword  = os.Getenv("SMTP_PASSWORD")
	smtpFromName  = os.Getenv("SMTP_FROM_NAME")
	smtpFromEmail = os.Getenv("SMTP_FROM_EMAIL")
	appURL        = os.Getenv("APP_URL")
	smtpTimeout   = 10 * time.Second
)

func frontendBaseURL() string {
	if appURL != "" {
		return appURL
	}
	fmt.Println("⚠️ APP_URL not set, using default: http://localhost:5173")
	return "http://localhost:5173"
}

// sendEmail delivers a plain-text message over SMTP with STARTTLS.
// When SMTP is not configured the message is logged and skipped so that
// local development does not require a mail server.
func sendEmail(to, subject, body string) error {
	fmt.Println("📧 Sending Email:")
	fmt.Printf("To      : %s\nSubject : %s\n", to, subject)

	if smtpHost == "" || smtpUsername == "" || smtpPassword == "" {
		fmt.Println("⚠️ SMTP not configured. Email not sent.")
		return nil
	}

	fromEmail := smtpFromEmail
	if fromEmail == "" {
		fromEmail = smtpUsername
	}

	addr := fmt.Sprintf("%s:%s", smtpHost, smtpPort)

	client, err := smtp.Dial(addr)
	if err != nil {
		fmt.Printf("❌ Failed to dial SMTP server: %v\n", err)
		return fmt.Errorf("failed to dial SMTP server: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{
		InsecureSkipVerify: true,
		ServerName:         smtpHost,
	}

	if err = client.StartTLS(tlsConfig); err != nil {
		fmt.Printf("❌ TLS connection error: %v\n", err)
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	auth := smtp.PlainAuth("", smtpUsername, smtpPassword, smtpHost)
	if err := client.Auth(auth); err != nil {
		fmt.Printf("❌ SMTP auth error: %v\n", err)
		return fmt.Errorf("authentication failed: %w", err)
	}

	if err := client.Mail(fromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}

	from := smtpFromName
	if from == "" {
		from = fromEmail
	} else {
		from = fmt.Sprintf("%s <%s>", smtpFromName, fromEmail)
	}

	msg := []byte(fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n"+
		"\r\n%s", from, to, subject, body))

	if _, err = w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}

	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}

	if err := client.Quit(); err != nil {
		fmt.Printf("⚠️ QUIT command error (non-critical): %v\n", err)
	}

	fmt.Println("✅ Email sent successfully!")
	return nil
}

// ======================
// Account Verification
// ======================
func SendVerificationEmail(toEmail, fullName, token string) error {
	verifyURL := fmt.Sprintf("%s/verify-email?token=%s", frontendBaseURL(), token)
	subject := "Verify your email address"
	body := fmt.Sprintf("Hello %s,\n\nPlease verify your email address by clicking the link below:\n\n%s\n\nThis link expires in 24 hours. If you did not register for an account, please ignore this email.", fullName, verifyURL)

	return sendEmail(toEmail, subject, body)
}

// SendWelcomeEmail is sent once after a successful email verification.
func SendWelcomeEmail(toEmail, fullName string) error {
	subject := "Welcome aboard"
	body := fmt.Sprintf("Hello %s,\n\nYour email address has been verified and your account is now active. You can log in at %s.", fullName, frontendBaseURL())

	return sendEmail(toEmail, subject, body)
}

// ======================
// Password Reset
// ======================
func SendResetLink(toEmail, fullName, resetToken string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", frontendBaseURL(), resetToken)
	subject := "Reset your password"
	body := fmt.Sprintf("Hello %s,\n\nClick here to reset your password: %s\n\nThis link expires in 1 hour. If you did not request this password reset, please ignore this email.", fullName, resetURL)

	return sendEmail(toEmail, subject, body)
}

// SendTemporaryPasswordEmail notifies a user that an administrator created
// their account with a temporary password that must be changed on first login.
func SendTemporaryPasswordEmail(toEmail, fullName, staffID, tempPassword string) error {
	subject := "Your account has been created"
	body := fmt.Sprintf("Hello %s,\n\nAn account has been created for you.\n\nStaff ID: %s\nTemporary password: %s\n\nYou will be asked to change this password the first time you log in.", fullName, staffID, tempPassword)

	return sendEmail(toEmail, subject, body)
}
