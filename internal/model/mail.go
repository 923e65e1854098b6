package model

import "context"

// MailSender delivers a single HTML email. Delivery is best-effort; failures
// are logged by callers and never propagated to the original requester.
type MailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
