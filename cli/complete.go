package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/beancount-complete/loader"
)

type CompleteCmd struct {
	File  FileOrStdin `help:"Ledger document (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Write bool        `help:"Rewrite FILE in place instead of printing the completed document." short:"w"`
	Yes   bool        `help:"Do not ask for confirmation before rewriting FILE." short:"y" env:"BEANCOUNT_YES"`
}

func (cmd *CompleteCmd) Run(ctx context.Context, kctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	if cmd.Write && cmd.File.IsStdin() {
		return fmt.Errorf("--write requires a file, not stdin")
	}

	s, err := newSession(ctx, kctx, globals, fmt.Sprintf("complete %s", filepath.Base(cmd.File.Filename)))
	if err != nil {
		return err
	}
	defer s.close()

	// Includes stay references so the document is written back as it was read.
	out, err := s.process(&cmd.File)
	if err != nil {
		if out == nil || s.ctx.Err() != nil {
			return err
		}
		_, _ = fmt.Fprintln(kctx.Stderr, NewErrorRenderer(out.source).Render(err))
		_, _ = fmt.Fprintln(kctx.Stderr)
		printError(kctx.Stderr, "load error")
		return NewCommandError(1)
	}

	var buf bytes.Buffer
	if err := loader.Dump(&buf, out.tree); err != nil {
		return err
	}

	if len(out.errs) > 0 {
		_, _ = fmt.Fprintln(kctx.Stderr, NewErrorRenderer(out.source).RenderAll(out.errs))
		_, _ = fmt.Fprintln(kctx.Stderr)
		printError(kctx.Stderr, fmt.Sprintf("%d error(s) found", len(out.errs)))
	}

	if !cmd.Write {
		if _, err := kctx.Stdout.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if len(out.errs) > 0 {
			return NewCommandError(1)
		}
		return nil
	}

	if len(out.errs) > 0 {
		printInfof(kctx.Stderr, "Not rewriting %s while errors remain", pathStyle.Render(cmd.File.Filename))
		return NewCommandError(1)
	}

	if out.stats.Completed == 0 {
		printSuccess(kctx.Stdout, "Nothing to complete")
		return nil
	}

	if !cmd.Yes {
		confirmed, err := promptYesNo(fmt.Sprintf("Rewrite %s with %d completed transaction(s)?",
			cmd.File.Filename, out.stats.Completed))
		if err != nil {
			return err
		}
		if !confirmed {
			printInfof(kctx.Stderr, "Left %s unchanged", pathStyle.Render(cmd.File.Filename))
			return nil
		}
	}

	if err := writeFileAtomic(cmd.File.GetAbsoluteFilename(), buf.Bytes()); err != nil {
		return err
	}

	printSuccess(kctx.Stdout, fmt.Sprintf("Completed %d transaction(s) in %s",
		out.stats.Completed, pathStyle.Render(cmd.File.Filename)))
	return nil
}

// writeFileAtomic replaces filename with data, keeping its permissions.
func writeFileAtomic(filename string, data []byte) error {
	info, err := os.Stat(filename)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filename, err)
	}
	return nil
}
