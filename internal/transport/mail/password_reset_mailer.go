package mail

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const passwordResetSubject = "Reset your Bartending password"

// PasswordResetMailer formats reset-link emails and hands them to a Mailer.
type PasswordResetMailer struct {
	mailer *Mailer
	ttl    time.Duration
}

func NewPasswordResetMailer(mailer *Mailer, ttl time.Duration) *PasswordResetMailer {
	return &PasswordResetMailer{mailer: mailer, ttl: ttl}
}

func (m *PasswordResetMailer) SendPasswordReset(ctx context.Context, email, resetLink string) error {
	if m == nil || m.mailer == nil {
		return errors.New("mailer not configured")
	}
	return m.mailer.Send(ctx, email, passwordResetSubject, m.body(resetLink))
}

func (m *PasswordResetMailer) body(resetLink string) string {
	validity := "a limited time"
	switch {
	case m.ttl >= time.Hour && m.ttl%time.Hour == 0:
		validity = plural(int(m.ttl/time.Hour), "hour")
	case m.ttl >= time.Minute:
		validity = plural(int(m.ttl/time.Minute), "minute")
	}
	return fmt.Sprintf("Someone asked to reset the password of your Bartending account.\n\n"+
		"Open the following link to choose a new password:\n%s\n\n"+
		"The link can be used once and stays valid for %s.\n"+
		"If you did not request this, ignore this email.", resetLink, validity)
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
