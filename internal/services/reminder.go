package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/trackline-dev/trackline/internal/store"
	"gorm.io/gorm"
)

// Reminder periodically scans for activities due within the window and
// emails assignees that look like an email address. Best-effort: failures
// are logged and retried on the next tick only because the activity is
// still due.
type Reminder struct {
	db       *gorm.DB
	mailer   *Mailer
	interval time.Duration
	window   time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewReminder(gdb *gorm.DB, mailer *Mailer, interval, window time.Duration) *Reminder {
	ctx, cancel := context.WithCancel(context.Background())

	return &Reminder{
		db:       gdb,
		mailer:   mailer,
		interval: interval,
		window:   window,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (r *Reminder) Start() {
	log.Printf("Starting deadline reminder loop (every %v, window %v)", r.interval, r.window)

	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.ctx.Done():
				return
			case <-ticker.C:
				r.runOnce()
			}
		}
	}()
}

func (r *Reminder) Stop() {
	r.cancel()
}

func (r *Reminder) runOnce() {
	activities, err := store.DueActivitiesWithin(r.db, r.window)

	if err != nil {
		log.Printf("Reminder scan failed: %v", err)
		return
	}

	for _, activity := range activities {
		target := ""
		if activity.AssignedEmail != nil && strings.Contains(*activity.AssignedEmail, "@") {
			target = *activity.AssignedEmail
		} else if activity.AssignedTo != nil && strings.Contains(*activity.AssignedTo, "@") {
			target = *activity.AssignedTo
		}

		if target == "" {
			continue
		}

		dueStr := ""
		if activity.DueDate != nil {
			dueStr = activity.DueDate.UTC().Format(time.RFC3339)
		}

		r.mailer.SendDeadlineReminder(target, activity.Title, dueStr, "Trackline")
	}
}
