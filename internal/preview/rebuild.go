package preview

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
	"git.home.luguber.info/inful/sitebuilder/internal/pipeline"
)

// BuildFunc runs one site build.
type BuildFunc func(ctx context.Context) (*pipeline.BuildReport, error)

// Status is the outcome of the latest build.
type Status struct {
	Builds       int                `json:"builds"`
	Building     bool               `json:"building"`
	LastBuildID  string             `json:"last_build_id,omitempty"`
	LastOutcome  model.BuildOutcome `json:"last_outcome,omitempty"`
	LastError    string             `json:"last_error,omitempty"`
	LastFinished time.Time          `json:"last_finished,omitzero"`
	HasGoodBuild bool               `json:"has_good_build"`
}

// Rebuilder runs builds one at a time. Triggers arriving during a build
// coalesce into a single follow-up build.
type Rebuilder struct {
	build  BuildFunc
	logger *slog.Logger
	req    chan struct{}

	mu      sync.Mutex
	status  Status
	running bool
	pending bool
	done    chan struct{} // closed when Run returns
}

// NewRebuilder wraps build.
func NewRebuilder(build BuildFunc, logger *slog.Logger) *Rebuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rebuilder{build: build, logger: logger, req: make(chan struct{}, 1), done: make(chan struct{})}
}

// Trigger requests a build. It never blocks.
func (r *Rebuilder) Trigger() {
	select {
	case r.req <- struct{}{}:
	default:
	}
}

// Status returns a snapshot of the latest build state.
func (r *Rebuilder) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Run processes triggers until ctx is done. Builds run outside the
// trigger loop so triggers arriving mid-build set the pending flag.
func (r *Rebuilder) Run(ctx context.Context) {
	var wg sync.WaitGroup
	defer func() {
		wg.Wait()
		close(r.done)
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.req:
			r.mu.Lock()
			if r.running {
				r.pending = true
				r.mu.Unlock()
				continue
			}
			r.running = true
			r.status.Building = true
			r.mu.Unlock()

			wg.Add(1)
			go func() {
				defer wg.Done()
				r.runOnce(ctx)

				r.mu.Lock()
				r.running = false
				r.status.Building = false
				again := r.pending
				r.pending = false
				r.mu.Unlock()
				if again && ctx.Err() == nil {
					r.Trigger()
				}
			}()
		}
	}
}

// Done is closed once Run has returned.
func (r *Rebuilder) Done() <-chan struct{} { return r.done }

// BuildNow runs a build synchronously, outside the trigger loop. Used for
// the initial build before serving.
func (r *Rebuilder) BuildNow(ctx context.Context) {
	r.mu.Lock()
	r.running = true
	r.status.Building = true
	r.mu.Unlock()
	r.runOnce(ctx)
	r.mu.Lock()
	r.running = false
	r.status.Building = false
	r.mu.Unlock()
}

func (r *Rebuilder) runOnce(ctx context.Context) {
	report, err := r.build(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.Builds++
	r.status.LastFinished = time.Now()
	if report != nil {
		r.status.LastBuildID = report.BuildID
		r.status.LastOutcome = report.Outcome
	}
	if err != nil {
		r.status.LastError = err.Error()
		r.logger.Warn("Rebuild failed", logfields.Error(err))
		return
	}
	r.status.LastError = ""
	r.status.HasGoodBuild = true
	if report != nil {
		r.logger.Info("Rebuilt site", logfields.BuildID(report.BuildID), slog.String("outcome", string(report.Outcome)))
	}
}
