package dispatch

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-kit/log/level"
	"golang.org/x/sync/errgroup"

	"github.com/alertify/go-alertify-server/email"
	"github.com/alertify/go-alertify-server/global"
	"github.com/alertify/go-alertify-server/metrics"
	"github.com/alertify/go-alertify-server/repository"
	"github.com/alertify/go-alertify-server/services"
)

// CycleStats summarizes one scan-and-dispatch cycle.
type CycleStats struct {
	ScanStats
	Sent           int  `json:"sent"`
	Failed         int  `json:"failed"`
	AlreadyRunning bool `json:"alreadyRunning,omitempty"`
}

// Coordinator fans due reminders out to a bounded worker pool. One slow SMTP
// connection never stalls the batch and one failed send never cancels the
// sibling sends. A trigger while a cycle is in flight is a no-op, so the
// interval timer and the HTTP cron endpoint are safe to fire concurrently.
type Coordinator struct {
	scanner     *Scanner
	users       *services.UserService
	store       repository.Storage
	sender      email.Sender
	workerLimit int
	sendTimeout time.Duration

	running atomic.Bool
}

func NewCoordinator(store repository.Storage, users *services.UserService, sender email.Sender, workerLimit int, sendTimeout time.Duration) *Coordinator {
	if workerLimit <= 0 {
		workerLimit = 10
	}
	if sendTimeout <= 0 {
		sendTimeout = 30 * time.Second
	}
	return &Coordinator{
		scanner:     NewScanner(store),
		users:       users,
		store:       store,
		sender:      sender,
		workerLimit: workerLimit,
		sendTimeout: sendTimeout,
	}
}

// RunCycle executes one scan-and-dispatch cycle and waits for every submitted
// send to finish. Failed sends leave the reminder uncompleted; it is retried
// on every following cycle.
func (c *Coordinator) RunCycle(ctx context.Context) *CycleStats {
	if !c.running.CompareAndSwap(false, true) {
		level.Info(global.Logger).Log("msg", "dispatch cycle already running, skipping trigger")
		return &CycleStats{AlreadyRunning: true}
	}
	defer c.running.Store(false)

	now := time.Now().UTC()
	jobs, scanStats, err := c.scanner.Scan(ctx, now)
	if err != nil {
		// persistence trouble is never fatal to the scheduler
		level.Error(global.Logger).Log("msg", "reminder scan failed", "error", err.Error())
		return &CycleStats{}
	}
	metrics.RemindersScanned.Add(float64(scanStats.Scanned))

	stats := &CycleStats{ScanStats: *scanStats}
	if len(jobs) == 0 {
		metrics.DispatchCycles.Inc()
		return stats
	}

	var sent, failed atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(c.workerLimit)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if c.dispatchOne(ctx, job) {
				sent.Add(1)
			} else {
				failed.Add(1)
			}
			return nil
		})
	}
	g.Wait()

	stats.Sent = int(sent.Load())
	stats.Failed = int(failed.Load())
	metrics.RemindersSent.Add(float64(stats.Sent))
	metrics.RemindersFailed.Add(float64(stats.Failed))
	metrics.DispatchCycles.Inc()

	level.Info(global.Logger).Log("msg", "dispatch cycle finished",
		"scanned", stats.Scanned, "due", stats.Due, "sent", stats.Sent,
		"failed", stats.Failed, "skipped", stats.Skipped)
	return stats
}

// dispatchOne sends a single reminder and marks it completed on success.
func (c *Coordinator) dispatchOne(ctx context.Context, job Job) bool {
	sendCtx, cancel := context.WithTimeout(ctx, c.sendTimeout)
	defer cancel()

	// credentials are resolved fresh at send time so a settings change between
	// scan and send wins
	creds, cErr := c.users.SenderCredentials(sendCtx, job.Reminder.UserID)
	if cErr != nil {
		level.Warn(global.Logger).Log("msg", "sender credentials unavailable",
			"reminder", job.Reminder.ID, "user", job.Reminder.UserID, "error", cErr.Error())
		return false
	}

	msg := email.NewReminderMessage(job.Recipient, job.Reminder.Title, job.Reminder.Description, job.DueAt)
	if sErr := c.sender.Send(sendCtx, creds, msg); sErr != nil {
		level.Error(global.Logger).Log("msg", "failed to send reminder",
			"reminder", job.Reminder.ID, "recipient", job.Recipient, "error", sErr.Error())
		return false
	}

	if mErr := c.store.MarkCompleted(ctx, job.Reminder.ID); mErr != nil {
		// the email went out; the reminder will be re-sent next cycle
		level.Error(global.Logger).Log("msg", "failed to mark reminder completed",
			"reminder", job.Reminder.ID, "error", mErr.Error())
		return false
	}
	level.Info(global.Logger).Log("msg", "reminder sent",
		"reminder", job.Reminder.ID, "recipient", job.Recipient)
	return true
}
