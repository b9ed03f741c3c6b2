package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goapply/goapply/internal/dom"
	"github.com/goapply/goapply/internal/log"
	"github.com/goapply/goapply/internal/platform"
	"github.com/goapply/goapply/internal/types"
	"github.com/google/uuid"
)

// PageProvider hands out a browser page for a run. The returned function
// releases it once the run is over.
type PageProvider interface {
	Page(ctx context.Context) (dom.Page, func(), error)
}

type PageProviderFunc func(ctx context.Context) (dom.Page, func(), error)

func (f PageProviderFunc) Page(ctx context.Context) (dom.Page, func(), error) {
	return f(ctx)
}

// StartCommand is the inbound request to start a run.
type StartCommand struct {
	Platform types.Platform
	Criteria types.SearchCriteria
}

// Response answers a start or stop request.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	RunID   string `json:"runId,omitempty"`
}

// Status is a snapshot of the runner.
type Status struct {
	Running bool             `json:"running"`
	Run     types.RunSummary `json:"run"`
}

// Runner allows at most one run at a time. The slot is a channel with room
// for one token; Start takes it without blocking and the run goroutine
// gives it back.
type Runner struct {
	registry *platform.Registry
	pages    PageProvider
	opts     Options

	slot chan struct{}

	mu      sync.Mutex
	status  Status
	cancel  context.CancelFunc
	done    chan struct{}
	history []types.RunSummary
}

func NewRunner(reg *platform.Registry, pages PageProvider, opts Options) *Runner {
	return &Runner{
		registry: reg,
		pages:    pages,
		opts:     opts,
		slot:     make(chan struct{}, 1),
	}
}

// Start validates the command and launches the run in the background. It
// returns as soon as the run is accepted. The run outlives ctx but keeps its
// logger.
func (r *Runner) Start(ctx context.Context, cmd StartCommand) (Response, error) {
	adapter, err := r.registry.Get(cmd.Platform)
	if err != nil {
		return Response{Message: err.Error()}, err
	}
	if err := cmd.Criteria.Validate(); err != nil {
		return Response{Message: err.Error()}, err
	}

	select {
	case r.slot <- struct{}{}:
	default:
		return Response{Message: "Automation already running"}, ErrAlreadyRunning
	}

	page, release, err := r.pages.Page(ctx)
	if err != nil {
		<-r.slot
		err = fmt.Errorf("opening browser page: %w", err)
		return Response{Message: err.Error()}, err
	}

	runID := uuid.NewString()
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	ctl := NewController(adapter, page, r.opts)
	ctl.RunID = runID
	ctl.observe = r.update

	r.mu.Lock()
	r.status = Status{Running: true, Run: types.RunSummary{
		RunID:    runID,
		Platform: cmd.Platform,
		Target:   cmd.Criteria.TargetApplicationCount,
		State:    string(StateIdle),
	}}
	r.cancel = cancel
	r.done = done
	r.mu.Unlock()

	go func() {
		defer func() {
			cancel()
			release()
			r.mu.Lock()
			r.status.Running = false
			r.cancel = nil
			r.mu.Unlock()
			<-r.slot
			close(done)
		}()
		sum, err := ctl.Run(runCtx, cmd.Criteria)
		if err != nil {
			log.LoggerFromContext(runCtx).Debug("run ended with error", slog.String("run", runID), slog.String("err", err.Error()))
		}
		r.mu.Lock()
		r.status.Run = sum
		r.history = append(r.history, sum)
		r.mu.Unlock()
	}()

	return Response{Success: true, Message: "Automation started", RunID: runID}, nil
}

func (r *Runner) update(sum types.RunSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.Run = sum
}

// Stop asks the current run to end before its next step. It reports
// whether a run was active.
func (r *Runner) Stop() Response {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel == nil {
		return Response{Message: "No automation running"}
	}
	r.cancel()
	return Response{Success: true, Message: "Automation stopping", RunID: r.status.Run.RunID}
}

// Wait blocks until the current run, if any, has finished.
func (r *Runner) Wait() {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// History returns the summaries of finished runs, oldest first.
func (r *Runner) History() []types.RunSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.RunSummary(nil), r.history...)
}
