// Package engine runs one automation session against a platform: it
// navigates to the job search, applies the filters, walks the result cards
// page by page and hands every open application form to the stepper.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/goapply/goapply/internal/apply"
	"github.com/goapply/goapply/internal/artifacts"
	"github.com/goapply/goapply/internal/classify"
	"github.com/goapply/goapply/internal/clock"
	"github.com/goapply/goapply/internal/events"
	"github.com/goapply/goapply/internal/fill"
	"github.com/goapply/goapply/internal/locate"
	"github.com/goapply/goapply/internal/types"
)

// State is a phase of the controller.
type State string

const (
	StateIdle            State = "idle"
	StateNavigating      State = "navigating"
	StateSearching       State = "searching"
	StateFilterApplying  State = "applying filters"
	StateListing         State = "listing"
	StatePerCardApplying State = "applying"
	StatePaginating      State = "paginating"
	StateDone            State = "done"
	StateFailed          State = "failed"
)

// ErrAlreadyRunning is returned by Runner.Start while a run holds the slot.
var ErrAlreadyRunning = errors.New("automation already running")

// FatalError aborts a run.
type FatalError struct {
	Phase State
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal error while %s: %v", e.Phase, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Timing collects the waits of a run. Zero values fall back to
// DefaultTiming.
type Timing struct {
	PollInterval   time.Duration `yaml:"poll_interval" env-default:"500ms"`
	LocateTimeout  time.Duration `yaml:"locate_timeout" env-default:"30s"`
	ApplyTimeout   time.Duration `yaml:"apply_timeout" env-default:"10s"`
	ResultsTimeout time.Duration `yaml:"results_timeout" env-default:"30s"`
	FieldDelay     time.Duration `yaml:"field_delay" env-default:"500ms"`
	StepSettle     time.Duration `yaml:"step_settle" env-default:"1s"`
	CardSettle     time.Duration `yaml:"card_settle" env-default:"2s"`
	DialogTimeout  time.Duration `yaml:"dialog_timeout" env-default:"5s"`
	StepBudget     int           `yaml:"step_budget" env-default:"10"`
}

func DefaultTiming() Timing {
	return Timing{
		PollInterval:   locate.DefaultInterval,
		LocateTimeout:  locate.DefaultTimeout,
		ApplyTimeout:   10 * time.Second,
		ResultsTimeout: 30 * time.Second,
		FieldDelay:     fill.DefaultSettle,
		StepSettle:     time.Second,
		CardSettle:     2 * time.Second,
		DialogTimeout:  5 * time.Second,
		StepBudget:     apply.DefaultBudget,
	}
}

func (t Timing) withDefaults() Timing {
	d := DefaultTiming()
	if t.PollInterval <= 0 {
		t.PollInterval = d.PollInterval
	}
	if t.LocateTimeout <= 0 {
		t.LocateTimeout = d.LocateTimeout
	}
	if t.ApplyTimeout <= 0 {
		t.ApplyTimeout = d.ApplyTimeout
	}
	if t.ResultsTimeout <= 0 {
		t.ResultsTimeout = d.ResultsTimeout
	}
	if t.FieldDelay < 0 {
		t.FieldDelay = d.FieldDelay
	}
	if t.StepSettle < 0 {
		t.StepSettle = d.StepSettle
	}
	if t.CardSettle < 0 {
		t.CardSettle = d.CardSettle
	}
	if t.DialogTimeout <= 0 {
		t.DialogTimeout = d.DialogTimeout
	}
	if t.StepBudget <= 0 {
		t.StepBudget = d.StepBudget
	}
	return t
}

// Options wire a controller to its collaborators. Every field is optional.
type Options struct {
	Clock  clock.Clock
	Timing Timing
	// Classifier defaults to the built in rules over Profile.
	Classifier *classify.Classifier
	Profile    classify.Profile
	Events     events.Emitter
	// Records receives one record per successful application. Sends never
	// block; a full channel drops the record.
	Records   chan<- types.ApplicationRecord
	Artifacts artifacts.Store
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = clock.Real{}
	}
	if o.Classifier == nil {
		profile := o.Profile
		if profile == (classify.Profile{}) {
			profile = classify.DefaultProfile()
		}
		o.Classifier = classify.New(profile)
	}
	if o.Events == nil {
		o.Events = events.Discard{}
	}
	o.Timing = o.Timing.withDefaults()
	return o
}

// RunState is owned by the goroutine executing a run.
type RunState struct {
	RunID     string
	Platform  types.Platform
	Criteria  types.SearchCriteria
	State     State
	Applied   int
	Failures  int
	Page      int
	Processed map[string]bool
	Start     time.Time
	End       time.Time
	Err       error
}

func newRunState(runID string, p types.Platform, sc types.SearchCriteria, start time.Time) *RunState {
	return &RunState{
		RunID:     runID,
		Platform:  p,
		Criteria:  sc,
		State:     StateIdle,
		Page:      1,
		Processed: map[string]bool{},
		Start:     start,
	}
}

// Summary copies the externally visible part of the state.
func (s *RunState) Summary() types.RunSummary {
	sum := types.RunSummary{
		RunID:      s.RunID,
		Platform:   s.Platform,
		Applied:    s.Applied,
		Target:     s.Criteria.TargetApplicationCount,
		NrFailures: s.Failures,
		Pages:      s.Page,
		State:      string(s.State),
		Start:      s.Start,
		End:        s.End,
	}
	if s.Err != nil {
		sum.Error = s.Err.Error()
	}
	return sum
}
