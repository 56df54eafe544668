package cli

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/robinvdvleuten/beancount-complete/ast"
	"github.com/robinvdvleuten/beancount-complete/ledger"
	"github.com/robinvdvleuten/beancount-complete/loader"
	"github.com/robinvdvleuten/beancount-complete/telemetry"
)

// Run executes the command selected by kctx with ctx bound for cancellation.
func Run(ctx context.Context, kctx *kong.Context) error {
	kctx.BindTo(ctx, (*context.Context)(nil))
	return kctx.Run()
}

// session carries the per-invocation logger and telemetry shared by commands.
type session struct {
	ctx    context.Context
	logger *zap.Logger
	stderr io.Writer

	collector telemetry.Collector
	timer     telemetry.Timer
	once      sync.Once
}

func newSession(ctx context.Context, kctx *kong.Context, globals *Globals, name string) (*session, error) {
	logger, err := NewLogger(globals.LogLevel, kctx.Stderr)
	if err != nil {
		return nil, err
	}

	s := &session{ctx: ctx, logger: logger, stderr: kctx.Stderr}

	if globals.Telemetry {
		s.collector = telemetry.NewTimingCollector()
		s.ctx = telemetry.WithCollector(s.ctx, s.collector)

		s.timer = s.collector.Start(name)
		s.ctx = telemetry.WithRootTimer(s.ctx, s.timer)
	}

	return s, nil
}

// close reports telemetry once and flushes the logger.
func (s *session) close() {
	s.once.Do(func() {
		if s.collector != nil {
			s.timer.End()
			_, _ = fmt.Fprintln(s.stderr)
			s.collector.Report(s.stderr)
		}
		_ = s.logger.Sync()
	})
}

// outcome is the result of loading and completing one document.
type outcome struct {
	tree   *ast.AST
	source []byte
	errs   []error
	stats  ledger.Stats
}

// process loads file and completes its transactions. A non-nil error means the
// document could not be loaded at all; completion diagnostics are in errs.
func (s *session) process(file *FileOrStdin, opts ...loader.Option) (*outcome, error) {
	start := time.Now()

	source, err := file.GetSourceContent()
	if err != nil {
		return nil, fmt.Errorf("failed to read file for error context: %w", err)
	}
	out := &outcome{source: source}

	timer := telemetry.StartTimer(s.ctx, fmt.Sprintf("loader.load %s", filepath.Base(file.Filename)))
	ldr := loader.New(append(opts, loader.WithLogger(s.logger))...)
	tree, err := file.LoadAST(s.ctx, ldr)
	timer.End()
	if err != nil {
		return out, err
	}
	out.tree = tree

	l := ledger.New()
	if err := l.Process(s.ctx, tree); err != nil {
		var validationErrors *ledger.ValidationErrors
		if !stdErrors.As(err, &validationErrors) {
			return out, err
		}
	}
	out.errs = l.Errors()
	out.stats = l.Stats()

	s.logger.Info("processed ledger",
		zap.String("file", file.Filename),
		zap.Int("transactions", out.stats.Transactions),
		zap.Int("completed", out.stats.Completed),
		zap.Int("errors", out.stats.Errors),
		zap.Duration("duration", time.Since(start)),
	)

	return out, nil
}
