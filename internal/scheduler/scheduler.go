package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/canilaba/internal/users"
	"github.com/i474232898/canilaba/internal/weather"
)

// maxConcurrent bounds the number of users evaluated at once.
const maxConcurrent = 4

// Forecaster answers "can I laba today" for a location.
type Forecaster interface {
	Today(ctx context.Context, coords weather.Coordinates, today time.Time) (weather.TodayResult, error)
}

// Notifier delivers a message to a chat.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// Ledger remembers which users were notified on which day.
type Ledger interface {
	MarkNotified(ctx context.Context, userID int64, day time.Time) (bool, error)
	Forget(ctx context.Context, userID int64, day time.Time) error
}

// Config configures the daily notification job.
type Config struct {
	// At is the local HH:MM the job runs.
	At       string
	Location *time.Location
	// DefaultCoordinates is used for users without a stored location. Nil
	// skips them.
	DefaultCoordinates *weather.Coordinates
	Backoff            BackoffConfig
	// RunTimeout bounds a single run.
	RunTimeout time.Duration
}

// RunStats summarises one notification run.
type RunStats struct {
	Users    int
	Matched  int
	Notified int
	Skipped  int
	Failed   int
}

// Scheduler sends the "today" verdict to every user whose laundry day it is.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	store      users.Store
	forecaster Forecaster
	notifier   Notifier
	ledger     Ledger
	cfg        Config
	log        logrus.FieldLogger
}

// New creates a new Scheduler.
func New(cfg Config, store users.Store, forecaster Forecaster, notifier Notifier, ledger Ledger, log logrus.FieldLogger) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.At == "" {
		cfg.At = "06:00"
	}
	if cfg.Backoff == (BackoffConfig{}) {
		cfg.Backoff = DefaultBackoff
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 10 * time.Minute
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Scheduler{
		scheduler:  gocron.NewScheduler(cfg.Location),
		store:      store,
		forecaster: forecaster,
		notifier:   notifier,
		ledger:     ledger,
		cfg:        cfg,
		log:        log.WithField("component", "scheduler"),
	}
}

// Start schedules the daily job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(1).Day().At(s.cfg.At).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RunTimeout)
		defer cancel()

		if _, err := s.RunOnce(ctx, time.Now().In(s.cfg.Location)); err != nil {
			s.log.WithError(err).Error("notification run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule notifications at %s: %w", s.cfg.At, err)
	}

	s.scheduler.StartAsync()
	s.log.WithField("at", s.cfg.At).Info("notification job scheduled")
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// RunOnce evaluates today for every user whose laundry day matches now.
// Failures for one user are logged and do not stop the run.
func (s *Scheduler) RunOnce(ctx context.Context, now time.Time) (RunStats, error) {
	now = now.In(s.cfg.Location)
	log := s.log.WithField("run_id", uuid.NewString())

	all, err := s.store.ListUsers(ctx)
	if err != nil {
		return RunStats{}, fmt.Errorf("list users: %w", err)
	}
	log.WithField("users", len(all)).Info("running laundry day notifications")

	var (
		wg                                 sync.WaitGroup
		matched, notified, skipped, failed atomic.Int64
		sem                                = make(chan struct{}, maxConcurrent)
	)

	for _, u := range all {
		if !users.MatchesToday(u.LaundryDays, now) {
			continue
		}
		matched.Add(1)

		wg.Add(1)
		sem <- struct{}{}
		go func(u users.User) {
			defer wg.Done()
			defer func() { <-sem }()

			ulog := log.WithFields(logrus.Fields{"user_id": u.ID, "chat_id": u.ChatID})
			sent, err := s.notifyUser(ctx, u, now)
			switch {
			case err != nil:
				failed.Add(1)
				ulog.WithError(err).Warn("laundry day notification failed")
			case sent:
				notified.Add(1)
				ulog.Debug("laundry day notification sent")
			default:
				skipped.Add(1)
			}
		}(u)
	}
	wg.Wait()

	stats := RunStats{
		Users:    len(all),
		Matched:  int(matched.Load()),
		Notified: int(notified.Load()),
		Skipped:  int(skipped.Load()),
		Failed:   int(failed.Load()),
	}
	log.WithFields(logrus.Fields{
		"matched":  stats.Matched,
		"notified": stats.Notified,
		"skipped":  stats.Skipped,
		"failed":   stats.Failed,
	}).Info("completed laundry day notifications")
	return stats, nil
}

var errNoCoordinates = errors.New("user has no location")

func (s *Scheduler) notifyUser(ctx context.Context, u users.User, now time.Time) (bool, error) {
	coords := u.Coordinates
	if coords == nil {
		coords = s.cfg.DefaultCoordinates
	}
	if coords == nil {
		return false, errNoCoordinates
	}

	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	fresh, err := s.ledger.MarkNotified(ctx, u.ID, day)
	if err != nil {
		return false, err
	}
	if !fresh {
		return false, nil
	}

	var res weather.TodayResult
	err = retryUnavailable(ctx, s.cfg.Backoff, func() error {
		var ferr error
		res, ferr = s.forecaster.Today(ctx, *coords, now)
		return ferr
	})
	if err == nil {
		err = s.notifier.Notify(ctx, u.ChatID, "Laundry day!\n\n"+weather.FormatToday(res))
	}
	if err != nil {
		if ferr := s.ledger.Forget(ctx, u.ID, day); ferr != nil {
			s.log.WithError(ferr).WithField("user_id", u.ID).Warn("could not clear notification marker")
		}
		return false, err
	}
	return true, nil
}
