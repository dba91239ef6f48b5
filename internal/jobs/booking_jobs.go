package jobs

import (
	"context"

	"carrental-backend/internal/logger"
)

// SendPendingDigest e-mails the notification recipients how many bookings
// are still waiting for an admin decision. Nothing is sent when none are.
func (jr *JobRunner) SendPendingDigest() {
	jr.runWithRecovery("SendPendingDigest", func(ctx context.Context) {
		recipients := jr.config.Booking.NotificationEmails
		if len(recipients) == 0 {
			logger.Info("No notification recipients configured, skipping digest")
			return
		}

		pending, err := jr.services.Admin.PendingCount(ctx)
		if err != nil {
			logger.Error("Failed to count pending bookings", "error", err)
			return
		}
		if pending == 0 {
			logger.Info("No pending bookings")
			return
		}

		if err := jr.services.Email.SendPendingDigest(ctx, recipients, pending); err != nil {
			logger.Error("Failed to send pending digest", "pending", pending, "error", err)
			return
		}
		logger.Info("Sent pending digest", "pending", pending, "recipients", len(recipients))
	})
}
