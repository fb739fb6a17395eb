package borrowck

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nikomatsakis/borrowck/internal/model"
	"github.com/nikomatsakis/borrowck/internal/oracle"
	"github.com/nikomatsakis/borrowck/internal/scenario"
)

// RunBatch checks every scenario and returns the summary in input order.
//
// Scenarios are independent: a malformed scenario, an internal error or a
// panic is reported as that scenario's Error verdict and the rest still run.
// Once ctx is done, scenarios that have not started report Error with the
// context's error.
func RunBatch(ctx context.Context, scenarios []*scenario.Scenario, opts ...Option) oracle.Summary {
	o := newOptions(opts)
	reports := make([]*oracle.Report, len(scenarios))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, sc := range scenarios {
		if err := gctx.Err(); err != nil {
			reports[i] = oracle.Errored(sc.Name, err)
			continue
		}
		g.Go(func() error {
			reports[i] = runScenario(gctx, sc, o)
			return nil
		})
	}
	_ = g.Wait()

	var agg oracle.Aggregator
	for _, r := range reports {
		agg.Add(r)
	}
	s := agg.Summary()
	o.logger.Debug("batch finished",
		zap.Int("scenarios", s.Total()),
		zap.Int("ok", s.OK),
		zap.Int("fail", s.Fail),
		zap.Int("errors", s.Errors()))
	return s
}

func runScenario(ctx context.Context, sc *scenario.Scenario, o *options) (report *oracle.Report) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("panic during analysis", zap.String("scenario", sc.Name), zap.Any("panic", r))
			report = oracle.Errored(sc.Name, wrapInternal(errors.New(fmt.Sprint("panic: ", r))))
		}
	}()

	if err := ctx.Err(); err != nil {
		return oracle.Errored(sc.Name, err)
	}
	if sc.Err != nil {
		return oracle.Errored(sc.Name, sc.Err)
	}
	prog, err := model.Build(sc.Source)
	if err != nil {
		return oracle.Errored(sc.Name, errors.WithMessage(err, sc.Path))
	}
	return check(ctx, sc.Name, prog, o)
}
