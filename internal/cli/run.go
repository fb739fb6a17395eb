package cli

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/nikomatsakis/borrowck"
	"github.com/nikomatsakis/borrowck/internal/config"
	"github.com/nikomatsakis/borrowck/internal/debug"
	"github.com/nikomatsakis/borrowck/internal/logging"
	"github.com/nikomatsakis/borrowck/internal/model"
	"github.com/nikomatsakis/borrowck/internal/report"
	"github.com/nikomatsakis/borrowck/internal/scenario"
)

// Options are the settings of one invocation. Zero values defer to the
// config file.
type Options struct {
	Path       string
	ConfigPath string
	LogLevel   string
	Workers    int
	Regions    bool
	Debug      bool
	// NoColor turns colors off even when the config file enables them.
	NoColor bool
}

type session struct {
	cfg     *config.Config
	log     *zap.Logger
	printer *report.Printer
}

func newSession(opts Options, stdout io.Writer) (*session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.Workers > 0 {
		cfg.Workers = opts.Workers
	}
	cfg.DumpRegions = cfg.DumpRegions || opts.Regions
	cfg.Debug = cfg.Debug || opts.Debug
	if opts.NoColor {
		cfg.Color = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	report.SetColor(cfg.Color)

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, log: log, printer: report.New(stdout)}, nil
}

// Check runs every scenario under opts.Path and prints the summary. The
// exit code is ExitOK only when every scenario is OK.
func Check(opts Options, stdout io.Writer) int {
	s, err := newSession(opts, stdout)
	if err != nil {
		report.New(stdout).Error("Config Error", err)
		return ExitFailure
	}
	defer func() { _ = s.log.Sync() }()

	scenarios, err := scenario.Load(opts.Path)
	if err != nil {
		s.printer.Error("Load Error", err)
		return ExitFailure
	}

	ctx := context.Background()
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	summary := borrowck.RunBatch(ctx, scenarios,
		borrowck.WithLogger(s.log),
		borrowck.WithWorkers(s.cfg.Workers))
	s.printer.Summary(summary)

	if s.cfg.DumpRegions || s.cfg.Debug {
		fmt.Fprintln(stdout)
		s.dump(ctx, stdout, scenarios)
	}
	if !summary.Passed() {
		return ExitFailed
	}
	return ExitOK
}

// Regions dumps the program, region values and conflicts of every scenario
// under opts.Path.
func Regions(opts Options, stdout io.Writer) int {
	s, err := newSession(opts, stdout)
	if err != nil {
		report.New(stdout).Error("Config Error", err)
		return ExitFailure
	}
	defer func() { _ = s.log.Sync() }()

	scenarios, err := scenario.Load(opts.Path)
	if err != nil {
		s.printer.Error("Load Error", err)
		return ExitFailure
	}
	if !s.dump(context.Background(), stdout, scenarios) {
		return ExitFailed
	}
	return ExitOK
}

// dump prints each scenario; it reports whether all of them could be
// analyzed.
func (s *session) dump(ctx context.Context, w io.Writer, scenarios []*scenario.Scenario) bool {
	ok := true
	for _, sc := range scenarios {
		s.printer.Section(sc.Name)
		if sc.Err != nil {
			s.printer.Error("Scenario Error", sc.Err)
			ok = false
			continue
		}
		prog, err := model.Build(sc.Source)
		if err != nil {
			s.printer.Error("Scenario Error", err)
			ok = false
			continue
		}
		res, err := borrowck.Analyze(ctx, prog, borrowck.WithLogger(s.log), borrowck.WithDebug(s.cfg.Debug))
		if err != nil {
			s.printer.Error("Analysis Error", err)
			ok = false
			continue
		}

		fmt.Fprint(w, debug.FormatProgram(prog))
		fmt.Fprintln(w)
		fmt.Fprint(w, debug.FormatRegions(prog, res.Regions))
		fmt.Fprintln(w)
		if len(res.Diagnostics) == 0 {
			fmt.Fprintln(w, "no conflicts")
		}
		if s.cfg.Debug {
			for _, v := range res.Violations {
				fmt.Fprint(w, debug.FormatViolation(prog, v))
			}
		} else {
			for _, d := range res.Diagnostics {
				fmt.Fprint(w, debug.FormatDiagnostic(prog, d))
			}
		}
		fmt.Fprintln(w)
	}
	return ok
}
