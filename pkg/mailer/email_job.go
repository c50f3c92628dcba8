package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// HTML is optional; Text is recommended as fallback.
type EmailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
}

// WelcomeJob builds the post-registration welcome email. Delivery is
// best-effort end to end: enqueue failures and send failures never
// affect the registration that triggered them.
func WelcomeJob(to string) EmailJob {
	return EmailJob{
		To:      to,
		Subject: "Welcome to your to-do list",
		Text:    "Your account is ready. Sign in and add your first task.",
	}
}
