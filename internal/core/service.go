package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/StudioUsers/internal/config"
	"github.com/JonMunkholm/StudioUsers/internal/logging"
)

// DefaultPageSize is used when a listing request has no usable page size.
const DefaultPageSize = 50

// MaxPageSize caps the page size of paginated listings.
const MaxPageSize = 1000

// Recorder receives operational measurements. The metrics package
// provides the Prometheus implementation.
type Recorder interface {
	RecordImportRows(action string, n int)
	RecordImportDuration(d time.Duration)
	RecordLogin(result string)
}

// Publisher emits domain events. The events package provides the AMQP
// implementation.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type nopRecorder struct{}

func (nopRecorder) RecordImportRows(string, int)        {}
func (nopRecorder) RecordImportDuration(time.Duration) {}
func (nopRecorder) RecordLogin(string)                  {}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, any) error { return nil }

// Service provides the business logic for the user directory.
type Service struct {
	store    Store
	limiter  *ImportLimiter
	staging  *stagingArea
	recorder Recorder
	events   Publisher
	now      func() time.Time

	sessionTTL    time.Duration
	importTimeout time.Duration
	maxRows       int
}

// Option customizes a Service.
type Option func(*Service)

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithPublisher sets the event publisher.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a Service backed by store and configured by cfg.
func NewService(store Store, cfg *config.Config, opts ...Option) *Service {
	if cfg == nil {
		cfg = config.Defaults()
	}

	s := &Service{
		store:         store,
		limiter:       NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime),
		staging:       newStagingArea(cfg.Import.StagingTTL),
		recorder:      nopRecorder{},
		events:        nopPublisher{},
		now:           time.Now,
		sessionTTL:    cfg.Auth.SessionTTL,
		importTimeout: cfg.Import.Timeout,
		maxRows:       cfg.Import.MaxRows,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.staging.now = s.now
	return s
}

// Close releases staged uploads and their expiry timers.
func (s *Service) Close() {
	s.staging.close()
}

// ImportLimiterStatus returns the current import slot usage.
func (s *Service) ImportLimiterStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until running imports finish or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// publish emits an event, logging rather than returning failures.
func (s *Service) publish(ctx context.Context, key string, payload any) {
	if err := s.events.Publish(context.WithoutCancel(ctx), key, payload); err != nil {
		logging.FromContext(ctx).Warn("event publish failed", "routing_key", key, "error", err)
	}
}
