package services

import (
	"fmt"
	"log"
	"os"

	"github.com/resend/resend-go/v2"
)

type emailJob struct {
	To      string
	Subject string
	HTML    string
}

// EmailService sends transactional mail through Resend. Sends are
// fire-and-forget: Enqueue hands the job to a worker goroutine and returns
// immediately, so a slow or failing mail path never blocks or fails the
// operation that triggered it. Failures are logged here, never surfaced.
type EmailService struct {
	client *resend.Client
	from   string
	queue  chan emailJob
}

func NewEmailService() *EmailService {
	apiKey := os.Getenv("RESEND_API_KEY")
	if apiKey == "" {
		log.Println("⚠️  RESEND_API_KEY not set, outgoing email will be skipped")
	}

	from := os.Getenv("EMAIL_FROM")
	if from == "" {
		from = "AgriMandi <onboarding@resend.dev>"
	}

	es := &EmailService{
		client: resend.NewClient(apiKey),
		from:   from,
		queue:  make(chan emailJob, 64),
	}
	go es.worker()
	return es
}

func (es *EmailService) worker() {
	for job := range es.queue {
		if err := es.send(job); err != nil {
			log.Printf("❌ Failed to send email to %s: %v", job.To, err)
		}
	}
}

func (es *EmailService) send(job emailJob) error {
	if os.Getenv("RESEND_API_KEY") == "" {
		log.Printf("Email not configured, skipping send to %s", job.To)
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    es.from,
		To:      []string{job.To},
		Subject: job.Subject,
		Html:    job.HTML,
	}

	sent, err := es.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	log.Printf("✅ Email sent to %s (ID: %s)", job.To, sent.Id)
	return nil
}

// Enqueue never blocks. When the queue is full the job is dropped with a log
// line; callers do not see mail failures.
func (es *EmailService) Enqueue(to, subject, html string) {
	select {
	case es.queue <- emailJob{To: to, Subject: subject, HTML: html}:
	default:
		log.Printf("⚠️  Mail queue full, dropping email to %s", to)
	}
}

func appURL() string {
	if u := os.Getenv("APP_URL"); u != "" {
		return u
	}
	return "http://localhost:8080"
}

// SendVerificationEmail mails the one-time email verification link.
func (es *EmailService) SendVerificationEmail(to, name, token string) {
	verifyURL := fmt.Sprintf("%s/api/auth/verify-email?token=%s", appURL(), token)
	html := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2>Welcome to AgriMandi!</h2>
        <p>Hi %s,</p>
        <p>Thank you for signing up. Click the link below to verify your email address:</p>
        <p><a href="%s">%s</a></p>
        <p>This link will expire in <strong>24 hours</strong>.</p>
        <p>If you didn't request this, please ignore this email.</p>
    </div>
</body>
</html>`, name, verifyURL, verifyURL)

	es.Enqueue(to, "Verify your AgriMandi account", html)
}

// SendPasswordResetEmail mails the one-time password reset link.
func (es *EmailService) SendPasswordResetEmail(to, token string) {
	resetURL := fmt.Sprintf("%s/reset-password.html?token=%s", appURL(), token)
	html := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2>Password Reset Request</h2>
        <p>We received a request to reset your AgriMandi account password. Click the link below:</p>
        <p><a href="%s">%s</a></p>
        <p>This link will expire in <strong>24 hours</strong>.</p>
        <p>If you didn't request this, your password will remain unchanged.</p>
    </div>
</body>
</html>`, resetURL, resetURL)

	es.Enqueue(to, "Reset your AgriMandi password", html)
}
