// Package scheduler decides when the sync queue is processed: when the server
// becomes reachable, on a timer, and on demand.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/foodlog/internal/client/session"
	"github.com/dmitrijs2005/foodlog/internal/client/syncqueue"
	"github.com/dmitrijs2005/foodlog/internal/logging"
	"github.com/sethvargo/go-retry"
)

type Mode string

const (
	ModeUnknown Mode = ""
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Processor interface {
	Process(ctx context.Context, ownerID string) (syncqueue.Report, error)
}

type Config struct {
	OnlineCheckInterval time.Duration
	PingTimeout         time.Duration
	SyncInterval        time.Duration
	BackoffMin          time.Duration
	BackoffMax          time.Duration
	// MaxRetries is the number of extra attempts of a failing pass.
	MaxRetries uint64
}

var errOffline = errors.New("server is offline")

type Scheduler struct {
	cfg      Config
	pinger   Pinger
	queue    Processor
	sessions session.Provider
	logger   logging.Logger

	trigger chan struct{}

	mu   sync.Mutex
	mode Mode
}

func New(cfg Config, pinger Pinger, queue Processor, sessions session.Provider, logger logging.Logger) *Scheduler {
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = 3 * time.Second
	}
	if cfg.BackoffMin <= 0 {
		cfg.BackoffMin = time.Second
	}
	if cfg.BackoffMax < cfg.BackoffMin {
		cfg.BackoffMax = cfg.BackoffMin
	}
	return &Scheduler{
		cfg:      cfg,
		pinger:   pinger,
		queue:    queue,
		sessions: sessions,
		logger:   logger.With("component", "scheduler"),
		trigger:  make(chan struct{}, 1),
	}
}

func (s *Scheduler) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// setMode records the connectivity and reports whether the server just came
// back.
func (s *Scheduler) setMode(mode Mode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == mode {
		return false
	}
	prev := s.mode
	s.mode = mode
	s.logger.Info(context.Background(), "switched mode", "from", string(prev), "to", string(mode))
	return mode == ModeOnline
}

// Trigger asks for a pass as soon as possible. Requests made while a pass is
// pending are merged.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run watches connectivity and processes the queue until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.watchOnlineStatus(ctx)
	}()
	defer wg.Wait()

	var tick <-chan time.Time
	if s.cfg.SyncInterval > 0 {
		ticker := time.NewTicker(s.cfg.SyncInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			s.Pass(ctx)
		case <-s.trigger:
			s.Pass(ctx)
		}
	}
}

func (s *Scheduler) watchOnlineStatus(ctx context.Context) {
	s.checkOnline(ctx)
	if s.cfg.OnlineCheckInterval <= 0 {
		return
	}

	ticker := time.NewTicker(s.cfg.OnlineCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, s.cfg.PingTimeout)
	err := s.pinger.Ping(pctx)
	cancel()
	if ctx.Err() != nil {
		return
	}

	if err != nil {
		s.setMode(ModeOffline)
		return
	}
	if s.setMode(ModeOnline) {
		s.Trigger()
	}
}

// Pass processes the queue of the signed-in owner, retrying with
// exponential backoff while entries keep failing. It returns the error of
// the last attempt.
func (s *Scheduler) Pass(ctx context.Context) error {
	if s.Mode() == ModeOffline {
		return errOffline
	}
	sess, err := s.sessions.Current(ctx)
	if err != nil {
		s.logger.Debug(ctx, "sync pass skipped", "reason", err.Error())
		return err
	}

	b := retry.NewExponential(s.cfg.BackoffMin)
	b = retry.WithCappedDuration(s.cfg.BackoffMax, b)
	b = retry.WithMaxRetries(s.cfg.MaxRetries, b)

	err = retry.Do(ctx, b, func(ctx context.Context) error {
		if s.Mode() == ModeOffline {
			return errOffline
		}
		rep, err := s.queue.Process(ctx, sess.OwnerID)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			return retry.RetryableError(err)
		}
		if rep.Failed > 0 {
			return retry.RetryableError(fmt.Errorf("%d queue entries failed", rep.Failed))
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		s.logger.Warn(ctx, "sync pass failed", "error", err.Error())
	}
	return err
}
