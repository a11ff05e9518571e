package email

import (
	"context"
	"errors"
)

// Sender dispatches registration codes. Dispatch happens only after the code
// is durably persisted, so a send failure never rolls the code back.
type Sender interface {
	SendRegistrationCode(ctx context.Context, toEmail, code string) error
}

type disabledSender struct {
	reason string
}

// NewDisabledSender returns a Sender that always fails with the given
// reason. Used when SMTP is not configured.
func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendRegistrationCode(_ context.Context, _, _ string) error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
