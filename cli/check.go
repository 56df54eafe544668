package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/robinvdvleuten/beancount-complete/errors"
	"github.com/robinvdvleuten/beancount-complete/loader"
)

type CheckCmd struct {
	File   FileOrStdin `help:"Ledger document (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Format string      `help:"Error output format (text, json)." enum:"text,json" default:"text" env:"BEANCOUNT_FORMAT"`
	Watch  bool        `help:"Check again whenever a ledger file next to FILE changes."`
}

func (cmd *CheckCmd) Run(ctx context.Context, kctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	s, err := newSession(ctx, kctx, globals, fmt.Sprintf("check %s", filepath.Base(cmd.File.Filename)))
	if err != nil {
		return err
	}
	defer s.close()

	if !cmd.Watch {
		return cmd.check(s, kctx.Stdout, kctx.Stderr)
	}

	if cmd.File.IsStdin() {
		return fmt.Errorf("--watch requires a file, not stdin")
	}

	// Failed checks are reported and the watch goes on.
	_ = cmd.check(s, kctx.Stdout, kctx.Stderr)
	printInfof(kctx.Stderr, "Watching %s for changes", pathStyle.Render(filepath.Dir(cmd.File.GetAbsoluteFilename())))

	return watchFile(s.ctx, cmd.File.GetAbsoluteFilename(), s.logger, func() {
		_ = cmd.check(s, kctx.Stdout, kctx.Stderr)
	})
}

// check runs one load-and-complete pass and reports its diagnostics.
func (cmd *CheckCmd) check(s *session, stdout, stderr io.Writer) error {
	out, err := s.process(&cmd.File, loader.WithFollowIncludes())
	if err != nil {
		if out == nil || s.ctx.Err() != nil {
			return err
		}
		s.logger.Debug("load failed", zap.Error(err))
		cmd.report(stdout, stderr, out.source, []error{err}, "load error")
		return NewCommandError(1)
	}

	if len(out.errs) > 0 {
		cmd.report(stdout, stderr, out.source, out.errs, fmt.Sprintf("%d error(s) found", len(out.errs)))
		return NewCommandError(1)
	}

	if cmd.Format == "json" {
		_, _ = fmt.Fprintln(stdout, "[]")
		return nil
	}

	printSuccess(stdout, fmt.Sprintf("Check passed (%d transactions, %d completed)",
		out.stats.Transactions, out.stats.Completed))
	return nil
}

func (cmd *CheckCmd) report(stdout, stderr io.Writer, source []byte, errs []error, summary string) {
	if cmd.Format == "json" {
		_, _ = fmt.Fprintln(stdout, errors.NewJSONFormatter().FormatAll(errs))
		return
	}

	renderer := NewErrorRenderer(source)
	_, _ = fmt.Fprintln(stderr, renderer.RenderAll(errs))
	_, _ = fmt.Fprintln(stderr)
	printError(stderr, summary)
}
