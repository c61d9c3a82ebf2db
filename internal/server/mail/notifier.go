// Package mail delivers out-of-band notifications to users. The core depends
// only on the Notifier contract; the SMTP transport lives behind it.
package mail

import "context"

// TemplateOtp is the template key for the OTP verification message.
const TemplateOtp = "otp"

// Notifier sends a templated message to a recipient. A non-nil error means
// the message was not delivered.
type Notifier interface {
	Send(ctx context.Context, to, subject, templateKey string, data map[string]any) error
}
