package ports

import "context"

// MailKind selects the lifecycle mail template.
type MailKind string

const (
	MailWelcome MailKind = "welcome"
	MailGoodbye MailKind = "goodbye"
)

// MailJob is a single lifecycle mail to be delivered best-effort.
type MailJob struct {
	ID    string
	Kind  MailKind
	Email string
	Name  string
}

// Notifier delivers a single mail job synchronously.
type Notifier interface {
	Send(ctx context.Context, job MailJob) error
}

// MailQueue accepts mail jobs for asynchronous, fire-and-forget delivery.
// Enqueue must never block the caller and never surfaces delivery errors.
type MailQueue interface {
	Enqueue(job MailJob)
}

// LoginThrottle tracks consecutive login failures per email.
type LoginThrottle interface {
	TooMany(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}
