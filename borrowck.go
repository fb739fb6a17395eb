// Package borrowck checks programs written as explicit control-flow graphs
// against a region-based borrow discipline.
//
// A program is analyzed in four phases, each feeding the next:
//
//	liveness ──▶ region inference ──▶ loans in scope ──▶ conflicts
//
// Check runs the phases and then compares the outcome with the
// expectations written into the program. RunBatch does the same for many
// scenarios in parallel.
package borrowck

import (
	"context"
	"runtime"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nikomatsakis/borrowck/internal/conflict"
	"github.com/nikomatsakis/borrowck/internal/debug"
	"github.com/nikomatsakis/borrowck/internal/infer"
	"github.com/nikomatsakis/borrowck/internal/liveness"
	"github.com/nikomatsakis/borrowck/internal/loans"
	"github.com/nikomatsakis/borrowck/internal/model"
	"github.com/nikomatsakis/borrowck/internal/oracle"
)

// ErrInternal marks failures of the analysis itself, as opposed to
// malformed input. Test with errors.Is.
var ErrInternal = errors.New("internal error")

type internalError struct {
	cause error
}

func (e *internalError) Error() string        { return "internal error: " + e.cause.Error() }
func (e *internalError) Unwrap() error        { return e.cause }
func (e *internalError) Is(target error) bool { return target == ErrInternal }

func wrapInternal(err error) error {
	if err == nil || errors.Is(err, ErrInternal) {
		return err
	}
	return &internalError{cause: err}
}

// =============================================================================
// Options
// =============================================================================

type options struct {
	logger  *zap.Logger
	workers int
	debug   bool
}

// Option configures Analyze, Check and RunBatch.
type Option func(*options)

// WithLogger sets the logger phases are reported to at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithWorkers bounds the number of scenarios RunBatch analyzes at once.
// Values below one mean GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithDebug records every access/loan comparison and attaches it to
// Result.Violations.
func WithDebug(on bool) Option {
	return func(o *options) { o.debug = on }
}

func newOptions(opts []Option) *options {
	o := &options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.workers < 1 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// =============================================================================
// Analysis
// =============================================================================

// Result holds the output of every phase.
type Result struct {
	Program     *model.Program
	Liveness    *liveness.Result
	Regions     *infer.Solution
	Loans       *loans.InScope
	Diagnostics []conflict.Diagnostic
	// Violations is only set WithDebug.
	Violations []debug.Violation
}

// Analyze runs every phase over prog. Errors other than a done context
// wrap ErrInternal.
func Analyze(ctx context.Context, prog *model.Program, opts ...Option) (*Result, error) {
	return analyze(ctx, prog, newOptions(opts))
}

func analyze(ctx context.Context, prog *model.Program, o *options) (*Result, error) {
	log := o.logger.With(zap.String("scenario", prog.Name))
	res := &Result{Program: prog}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	live, err := liveness.Compute(prog)
	if err != nil {
		return nil, wrapInternal(errors.WithMessage(err, "liveness"))
	}
	res.Liveness = live
	log.Debug("liveness computed", zap.Int("points", prog.NumPoints()), zap.Int("passes", live.Passes()))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sol, err := infer.Solve(prog, live)
	if err != nil {
		return nil, wrapInternal(errors.WithMessage(err, "region inference"))
	}
	res.Regions = sol
	log.Debug("regions inferred",
		zap.Int("regions", len(prog.Regions())),
		zap.Int("constraints", len(sol.Constraints())),
		zap.Int("rounds", sol.Rounds()))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scope, err := loans.Compute(prog, sol)
	if err != nil {
		return nil, wrapInternal(errors.WithMessage(err, "loans in scope"))
	}
	res.Loans = scope
	log.Debug("loans in scope computed", zap.Int("loans", len(prog.Loans())), zap.Int("passes", scope.Passes()))

	checker := conflict.New(prog, scope)
	if o.debug {
		tracker := debug.NewTracker(checker, debug.NewCollector(prog))
		res.Violations = tracker.Check()
		for _, v := range res.Violations {
			res.Diagnostics = append(res.Diagnostics, v.Diagnostic)
		}
	} else {
		res.Diagnostics = checker.Check()
	}
	for _, d := range res.Diagnostics {
		log.Debug("conflict", zap.String("at", prog.FormatPoint(d.Point)), zap.String("message", d.Message))
	}
	return res, nil
}

// Check analyzes prog and evaluates its expectations. The returned report
// always carries the scenario name; analysis errors yield an Error verdict.
func Check(ctx context.Context, name string, prog *model.Program, opts ...Option) *oracle.Report {
	return check(ctx, name, prog, newOptions(opts))
}

func check(ctx context.Context, name string, prog *model.Program, o *options) *oracle.Report {
	res, err := analyze(ctx, prog, o)
	if err != nil {
		return oracle.Errored(name, err)
	}
	return oracle.Evaluate(name, prog, res.Diagnostics, res.Regions, res.Liveness)
}
