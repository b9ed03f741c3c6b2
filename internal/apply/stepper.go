package apply

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goapply/goapply/internal/dom"
	"github.com/goapply/goapply/internal/fill"
	"github.com/goapply/goapply/internal/log"
	"github.com/goapply/goapply/internal/types"
)

const DefaultBudget = 10

// IncompleteApplicationError is returned when the budget ran out before the
// form reported completion.
type IncompleteApplicationError struct {
	Budget int
	Last   StepResult
}

func (e *IncompleteApplicationError) Error() string {
	return fmt.Sprintf("application not completed within %d steps, last step: %s", e.Budget, e.Last)
}

// Stepper alternates filling and advancing until the form completes.
type Stepper struct {
	Filler   *fill.Filler
	Advancer *Advancer
	Budget   int
}

func NewStepper(f *fill.Filler, a *Advancer, budget int) *Stepper {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Stepper{Filler: f, Advancer: a, Budget: budget}
}

// Run returns the number of iterations used. Every iteration that does not
// complete the form costs one unit of the budget, whatever its result.
func (s *Stepper) Run(ctx context.Context, page dom.Queryable, sc types.SearchCriteria) (int, error) {
	logger := log.LoggerFromContext(ctx)
	last := NoActionFound
	for i := 1; i <= s.Budget; i++ {
		if err := ctx.Err(); err != nil {
			return i - 1, err
		}
		rep, err := s.Filler.Fill(ctx, page, sc)
		if err != nil {
			if ctx.Err() != nil {
				return i, ctx.Err()
			}
			logger.Warn("filling step failed", slog.Int("step", i), slog.String("err", err.Error()))
		}
		res, err := s.Advancer.Advance(ctx, page)
		if err != nil {
			return i, err
		}
		logger.Debug("step finished",
			slog.Int("step", i),
			slog.Int("fields", rep.Seen),
			slog.Int("filled", rep.Filled),
			slog.String("result", res.String()))
		if res == Completed {
			return i, nil
		}
		last = res
	}
	return s.Budget, &IncompleteApplicationError{Budget: s.Budget, Last: last}
}
