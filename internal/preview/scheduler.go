package preview

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler requests a rebuild on a fixed interval.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a scheduler calling trigger every interval.
func NewScheduler(interval time.Duration, trigger func(), logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			logger.Debug("Scheduled rebuild", slog.Duration("interval", interval))
			trigger()
		}),
		gocron.WithName("periodic-rebuild"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create periodic rebuild job: %w", err)
	}
	return &Scheduler{scheduler: s}, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() { s.scheduler.Start() }

// Stop shuts the scheduler down.
func (s *Scheduler) Stop() error { return s.scheduler.Shutdown() }
