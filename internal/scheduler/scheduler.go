// Package scheduler broadcasts the daily release digests to subscribed chats
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/mmcdole/releasebot/internal/adapter"
	"github.com/mmcdole/releasebot/internal/bot"
	"github.com/mmcdole/releasebot/internal/card"
	"github.com/mmcdole/releasebot/internal/domain"
	"github.com/mmcdole/releasebot/internal/service"
)

// Digester builds the card broadcast by a job
type Digester interface {
	Digest(ctx context.Context, kind domain.MediaKind) (card.Card, bool, error)
}

// Subscribers lists the chats that receive broadcasts
type Subscribers interface {
	Subscribers() []int64
}

// PresenterFunc returns the presenter that posts into a chat
type PresenterFunc func(chatID int64) bot.Presenter

// Job is one daily broadcast
type Job struct {
	Name string
	Kind domain.MediaKind
	At   adapter.Clock
}

// Report summarizes a broadcast run
type Report struct {
	Chats     int
	Delivered int
	Failed    int
}

// Options configures a Service
type Options struct {
	Location   *time.Location
	Interval   time.Duration // Gap between chats
	Attempts   uint          // Delivery attempts per chat
	RetryDelay time.Duration
}

// Service runs daily jobs at fixed wall-clock times
type Service struct {
	digester Digester
	subs     Subscribers
	present  PresenterFunc
	jobs     []Job
	opts     Options
	gate     *service.Gate
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a scheduler
func New(digester Digester, subs Subscribers, present PresenterFunc, jobs []Job, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Attempts == 0 {
		opts.Attempts = 1
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	return &Service{
		digester: digester,
		subs:     subs,
		present:  present,
		jobs:     jobs,
		opts:     opts,
		gate:     service.NewGate(opts.Interval),
		logger:   logger,
		now:      time.Now,
	}
}

// JobsFromConfig builds the daily movie and series jobs
func JobsFromConfig(cfg *adapter.ScheduleConfig) ([]Job, error) {
	movieAt, err := adapter.ParseClock(cfg.MovieAt)
	if err != nil {
		return nil, err
	}
	seriesAt, err := adapter.ParseClock(cfg.SeriesAt)
	if err != nil {
		return nil, err
	}
	return []Job{
		{Name: "daily_movies", Kind: domain.KindMovie, At: movieAt},
		{Name: "daily_series", Kind: domain.KindSeries, At: seriesAt},
	}, nil
}

// Start launches one timer loop per job
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.running = true

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, job)
	}
	s.logger.Info("scheduler started", "jobs", len(s.jobs), "location", s.opts.Location.String())
	return nil
}

// Stop cancels pending timers and waits for a running broadcast,
// or until ctx is done
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	s.running = false
	select {
	case <-done:
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

func (s *Service) loop(ctx context.Context, job Job) {
	defer s.wg.Done()

	for {
		next := NextRun(s.now(), job.At, s.opts.Location)
		s.logger.Debug("job scheduled", "job", job.Name, "at", next)

		timer := time.NewTimer(next.Sub(s.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		report, err := s.RunJob(ctx, job)
		if err != nil {
			s.logger.Error("job failed", "job", job.Name, "error", err)
			continue
		}
		s.logger.Info("job finished", "job", job.Name,
			"chats", report.Chats, "delivered", report.Delivered, "failed", report.Failed)
	}
}

// RunJob performs one broadcast. With no subscribers the catalog is not queried.
func (s *Service) RunJob(ctx context.Context, job Job) (Report, error) {
	chats := s.subs.Subscribers()
	report := Report{Chats: len(chats)}
	if len(chats) == 0 {
		return report, nil
	}

	c, ok, err := s.digester.Digest(ctx, job.Kind)
	if err != nil {
		return report, fmt.Errorf("%s digest: %w", job.Name, err)
	}
	if !ok {
		s.logger.Info("nothing to broadcast", "job", job.Name)
		return report, nil
	}

	for _, chatID := range chats {
		if err := s.gate.Wait(ctx); err != nil {
			return report, err
		}
		if err := s.deliver(ctx, chatID, c); err != nil {
			if errors.Is(err, context.Canceled) {
				return report, err
			}
			report.Failed++
			s.logger.Warn("broadcast delivery failed", "job", job.Name, "chat", chatID, "error", err)
			continue
		}
		report.Delivered++
	}
	return report, nil
}

func (s *Service) deliver(ctx context.Context, chatID int64, c card.Card) error {
	p := s.present(chatID)
	return retry.Do(
		func() error { return p.ShowCard(ctx, c) },
		retry.Context(ctx),
		retry.Attempts(s.opts.Attempts),
		retry.Delay(s.opts.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Debug("retrying delivery", "chat", chatID, "attempt", n+1, "error", err)
		}),
	)
}

// NextRun returns the first occurrence of at strictly after now, in loc
func NextRun(now time.Time, at adapter.Clock, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), at.Hour, at.Minute, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, at.Hour, at.Minute, 0, 0, loc)
	}
	return next
}
