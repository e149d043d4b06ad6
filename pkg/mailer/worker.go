package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Sender is satisfied by *Mailgun.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// ErrPermanent marks a message that will never succeed and must not be
// requeued.
var ErrPermanent = errors.New("permanent email failure")

// Deliver decodes one queued job, renders it and hands it to s. Decode and
// render failures wrap ErrPermanent; send failures are returned as is and
// may be retried.
func Deliver(ctx context.Context, s Sender, body []byte) error {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrPermanent, err)
	}
	if job.To == "" {
		return fmt.Errorf("%w: missing recipient", ErrPermanent)
	}
	subject, text, html, err := Prepare(job)
	if err != nil {
		return fmt.Errorf("%w: render %s: %v", ErrPermanent, job.Template, err)
	}
	return s.Send(ctx, job.To, subject, text, html)
}
