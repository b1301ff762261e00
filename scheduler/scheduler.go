package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/xid"

	"github.com/jheinrichs/remindme/logger"
	"github.com/jheinrichs/remindme/model"
)

const (
	defaultSweepSchedule = "*/5 * * * *"
	defaultReapSchedule  = "30 0 * * *"
	defaultSendTimeout   = 30 * time.Second

	// Candidate scan horizon. Purely bounds the working set; notification
	// semantics are decided by Classify alone.
	scanHorizonDays = 30

	// Overlapping sweep runs tolerated before ticks get skipped.
	maxConcurrentSweeps = 2

	// Attempts for a state write after a successful send. A send whose
	// tier advance never lands will be repeated next sweep.
	writeAttempts = 3
)

type (
	Store interface {
		ListDueCandidates(maxDueDate time.Time) ([]model.DueReminder, error)
		AdvanceTier(id int64, from, to model.Tier) error
		Renew(id int64, from model.Tier, nextDue time.Time) error
		DeleteByID(id int64) error
		DeleteStale(before time.Time) (int64, error)
	}

	Notifier interface {
		SendDueReminder(ctx context.Context, reminder model.DueReminder, daysUntilDue int) error
	}

	// Scheduler owns the periodic sweep and reaper tasks. Dependencies are
	// injected and the instance has an explicit Start/Stop lifecycle, so
	// tests can drive RunSweep and RunReap directly against fakes.
	Scheduler struct {
		cron          *cron.Cron
		store         Store
		notifier      Notifier
		sweepSchedule string
		reapSchedule  string
		sendTimeout   time.Duration
		sem           chan struct{}
		now           func() time.Time
		log           *logger.Logger
	}

	Option func(*Scheduler)
)

func WithSweepSchedule(spec string) Option {
	return func(s *Scheduler) {
		s.sweepSchedule = spec
	}
}

func WithReapSchedule(spec string) Option {
	return func(s *Scheduler) {
		s.reapSchedule = spec
	}
}

func WithSendTimeout(timeout time.Duration) Option {
	return func(s *Scheduler) {
		s.sendTimeout = timeout
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

func New(store Store, notifier Notifier, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:         store,
		notifier:      notifier,
		sweepSchedule: defaultSweepSchedule,
		reapSchedule:  defaultReapSchedule,
		sendTimeout:   defaultSendTimeout,
		sem:           make(chan struct{}, maxConcurrentSweeps),
		now:           time.Now,
		log:           logger.New("scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) Start() error {
	s.cron = cron.New()

	if _, err := s.cron.AddFunc(s.sweepSchedule, s.sweepTick); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.reapSchedule, s.RunReap); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info().
		Str("sweep", s.sweepSchedule).
		Str("reap", s.reapSchedule).
		Msg("Scheduler started")
	return nil
}

// Stop halts the timers and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.log.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) sweepTick() {
	select {
	case s.sem <- struct{}{}:
	default:
		s.log.Warn().Msg("Skipping sweep, too many sweeps already running")
		return
	}
	defer func() { <-s.sem }()

	s.RunSweep()
}

// RunSweep scans all reminders due within the horizon and mails, advances,
// renews or deletes each one as needed. Failures are isolated per reminder.
func (s *Scheduler) RunSweep() {
	today := dateOf(s.now())
	horizon := today.AddDate(0, 0, scanHorizonDays)

	candidates, err := s.store.ListDueCandidates(horizon)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load due reminders")
		return
	}

	s.log.Debug().Int("candidates", len(candidates)).Msg("Sweep started")

	for _, reminder := range candidates {
		s.process(reminder, today)
	}
}

// RunReap deletes non-permanent reminders whose due date already passed.
// This is the safety net for reminders the sweep could not finalize, e.g.
// during a sustained mail outage. Permanent reminders are never reaped.
func (s *Scheduler) RunReap() {
	today := dateOf(s.now())
	deleted, err := s.store.DeleteStale(today)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to delete stale reminders")
		return
	}
	if deleted > 0 {
		s.log.Info().Int64("deleted", deleted).Msg("Reaped stale reminders")
	}
}

func (s *Scheduler) process(reminder model.DueReminder, today time.Time) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().
				Int64("id", reminder.ID).
				Interface("panic", r).
				Msg("Reminder processing panicked")
		}
	}()

	days := DaysUntil(reminder.DueDate, today)
	decision := Classify(days, reminder.Tier)

	switch decision.Action {
	case ActionNone:
		return

	case ActionSend:
		if !s.send(reminder, days) {
			return
		}
		s.persist(reminder.ID, "advance tier", func() error {
			return s.store.AdvanceTier(reminder.ID, reminder.Tier, decision.Tier)
		})

	case ActionFinalize:
		if !s.send(reminder, days) {
			return
		}
		if reminder.Permanent {
			nextDue := reminder.DueDate.AddDate(1, 0, 0)
			s.persist(reminder.ID, "renew", func() error {
				return s.store.Renew(reminder.ID, reminder.Tier, nextDue)
			})
		} else {
			s.persist(reminder.ID, "delete", func() error {
				return s.store.DeleteByID(reminder.ID)
			})
		}
	}
}

// send delivers the notification with a bounded timeout so one unreachable
// recipient cannot stall the whole sweep. On failure the reminder state is
// left untouched and the same tier is retried next sweep.
func (s *Scheduler) send(reminder model.DueReminder, days int) bool {
	ctx, cancel := context.WithTimeout(context.Background(), s.sendTimeout)
	defer cancel()

	if err := s.notifier.SendDueReminder(ctx, reminder, days); err != nil {
		s.log.Warn().
			Err(err).
			Int64("id", reminder.ID).
			Msg("Failed to send reminder, will retry next sweep")
		return false
	}
	return true
}

// persist applies a state change after a successful send, retrying a bounded
// number of times. A write that never lands means the notification will be
// repeated next cycle, so the final failure is logged loudly with a GUID.
func (s *Scheduler) persist(id int64, op string, write func() error) {
	var err error
	for attempt := 0; attempt < writeAttempts; attempt++ {
		err = write()
		if err == nil {
			return
		}
		if errors.Is(err, model.ErrStale) {
			// A concurrent sweep got there first; nothing to repair.
			s.log.Debug().
				Int64("id", id).
				Str("op", op).
				Msg("Reminder changed concurrently, skipping")
			return
		}
	}

	guid := xid.New().String()
	s.log.Error().
		Err(err).
		Int64("id", id).
		Str("op", op).
		Str("guid", guid).
		Msg("Failed to persist reminder state after send, duplicate notification possible")
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
