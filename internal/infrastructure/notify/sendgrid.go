package notify

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/madunda/task-manager-api/internal/core/ports"
)

const sendgridMailURL = "https://api.sendgrid.com/v3/mail/send"

// SendGridNotifier delivers lifecycle mail through the SendGrid v3 REST API.
type SendGridNotifier struct {
	client *resty.Client
	apiKey string
	from   string
	logger zerolog.Logger
}

func NewSendGridNotifier(apiKey, from string, logger zerolog.Logger) *SendGridNotifier {
	return &SendGridNotifier{
		client: resty.New(),
		apiKey: apiKey,
		from:   from,
		logger: logger,
	}
}

type sgAddress struct {
	Email string `json:"email"`
}

type sgPersonalization struct {
	To []sgAddress `json:"to"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sgMail struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgAddress           `json:"from"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
}

// Send renders the template for the job kind and posts it to SendGrid.
func (n *SendGridNotifier) Send(ctx context.Context, job ports.MailJob) error {
	subject, body := renderMail(job)

	payload := sgMail{
		Personalizations: []sgPersonalization{{To: []sgAddress{{Email: job.Email}}}},
		From:             sgAddress{Email: n.from},
		Subject:          subject,
		Content:          []sgContent{{Type: "text/plain", Value: body}},
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetAuthToken(n.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(sendgridMailURL)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("sendgrid responded %d: %s", resp.StatusCode(), resp.String())
	}

	n.logger.Debug().Str("job_id", job.ID).Str("kind", string(job.Kind)).Msg("mail delivered")
	return nil
}

func renderMail(job ports.MailJob) (subject, body string) {
	switch job.Kind {
	case ports.MailGoodbye:
		return "Goodbye!",
			fmt.Sprintf("%s, we thank you for using our app. Hope to see you again soon :)", job.Name)
	default:
		return "Thanks for joining in!",
			fmt.Sprintf("Welcome to the app, %s. Let me know how you get along with the app.", job.Name)
	}
}

// LogNotifier is the fallback when no SendGrid key is configured: it only
// logs what would have been sent. Useful for development and tests.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, job ports.MailJob) error {
	subject, _ := renderMail(job)
	n.logger.Info().
		Str("job_id", job.ID).
		Str("kind", string(job.Kind)).
		Str("to", job.Email).
		Str("subject", subject).
		Msg("mail delivery skipped (no provider configured)")
	return nil
}
