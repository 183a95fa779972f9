// Package jobs provides the handlers executed by the queue worker.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/fairyhunter13/realtime-catalog/internal/model"
	"github.com/fairyhunter13/realtime-catalog/internal/obs"
)

// SendEmail simulates a mail delivery with a fixed processing delay. This is
// the seam where a real transport gets substituted.
func SendEmail(delay time.Duration) func(ctx context.Context, job model.Job) error {
	return func(ctx context.Context, job model.Job) error {
		p := job.Email
		if p == nil {
			return fmt.Errorf("send-email job %s has no email payload", job.ID)
		}
		obs.Logger.Info("email_processing",
			"job_id", job.ID,
			"to", p.To,
			"subject", p.Subject,
			"category", p.Category,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		obs.Logger.Info("email_sent", "job_id", job.ID, "to", p.To)
		return nil
	}
}

// LogActivity records an audit line for the action that enqueued it.
func LogActivity(ctx context.Context, job model.Job) error {
	p := job.Activity
	if p == nil {
		return fmt.Errorf("log-activity job %s has no activity payload", job.ID)
	}
	obs.Logger.Info("activity_log",
		"job_id", job.ID,
		"actor_id", p.ActorID,
		"description", p.Description,
		"timestamp", p.Timestamp,
	)
	return nil
}
