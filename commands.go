package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/mcncl/llsdtool/internal/analyzer"
	"github.com/mcncl/llsdtool/internal/environment"
	"github.com/mcncl/llsdtool/internal/errors"
	"github.com/mcncl/llsdtool/internal/generator"
	"github.com/mcncl/llsdtool/internal/llsd"
	"github.com/mcncl/llsdtool/internal/media"
	"github.com/mcncl/llsdtool/internal/parser"
	"github.com/mcncl/llsdtool/internal/watch"
	"go.uber.org/zap"
)

// MergeCmd conforms a document to a template
type MergeCmd struct {
	Template string `help:"Template name from the config file, template path, or \"media\"." short:"T" required:""`
	Output   string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	File     string `arg:"" help:"Document to merge, or - for stdin." default:"-"`
}

func (m *MergeCmd) Run(ctx *Context) error {
	template, err := ctx.loadTemplate(m.Template)
	if err != nil {
		return err
	}
	doc, err := ctx.readDocument(m.File)
	if err != nil {
		return err
	}

	merged, mismatch := llsd.ConformError(doc, template)
	if mismatch != nil {
		mismatches := analyzer.Explain(doc, template)
		lines := make([]string, len(mismatches))
		for i, mm := range mismatches {
			lines[i] = mm.String()
		}
		ctx.Logger.Debug("Merge failed", zap.Int("mismatches", len(mismatches)))
		return errors.NewMergeError(
			fmt.Sprintf("document does not match template '%s':\n  %s", m.Template, strings.Join(lines, "\n  ")),
			fmt.Errorf("%w: %w", errors.ErrNotConformant, mismatch),
		).In(sourceName(m.File))
	}

	text, err := ctx.render(merged)
	if err != nil {
		return err
	}
	return ctx.writeOutput(text, m.Output)
}

// EqualCmd compares two documents
type EqualCmd struct {
	Left  string `arg:"" help:"First document."`
	Right string `arg:"" help:"Second document."`
	Quiet bool   `help:"Only set the exit status." short:"q"`
}

func (e *EqualCmd) Run(ctx *Context) error {
	left, err := ctx.readDocument(e.Left)
	if err != nil {
		return err
	}
	right, err := ctx.readDocument(e.Right)
	if err != nil {
		return err
	}

	if llsd.Equal(left, right) {
		if !e.Quiet {
			_, _ = fmt.Fprintln(ctx.Stdout, "documents are equal")
		}
		return nil
	}

	diffs := analyzer.Diff(left, right)
	if !e.Quiet {
		for _, d := range diffs {
			if _, err := fmt.Fprintln(ctx.Stdout, d.String()); err != nil {
				return errors.NewOutputError("failed to write to stdout", err)
			}
		}
	}
	return errors.NewCompareError(fmt.Sprintf("documents differ in %d place(s)", len(diffs)), errors.ErrNotEqual)
}

// ConvertCmd re-encodes a document
type ConvertCmd struct {
	Output string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	File   string `arg:"" help:"Document to convert, or - for stdin." default:"-"`
}

func (c *ConvertCmd) Run(ctx *Context) error {
	doc, err := ctx.readDocument(c.File)
	if err != nil {
		return err
	}
	text, err := ctx.render(doc)
	if err != nil {
		return err
	}
	return ctx.writeOutput(text, c.Output)
}

// WatchCmd re-checks a document on every change
type WatchCmd struct {
	Template string `help:"Template name from the config file, template path, or \"media\"." short:"T" required:""`
	File     string `arg:"" help:"Document to watch." type:"path"`
}

func (w *WatchCmd) Run(ctx *Context) error {
	template, err := ctx.loadTemplate(w.Template)
	if err != nil {
		return err
	}

	watcher, err := watch.New(w.File, template,
		watch.WithLogger(ctx.Logger),
		watch.WithFormat(ctx.inputFormat()),
		watch.WithDebounce(time.Duration(ctx.Config.Watch.DebounceMillis)*time.Millisecond),
		watch.WithHandler(func(res watch.Result) {
			if !res.OK() {
				return
			}
			if text, err := ctx.render(res.Merged); err == nil {
				_ = ctx.writeOutput(text, "")
			}
		}),
	)
	if err != nil {
		return errors.NewInputError("failed to watch document", err)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := watcher.Run(sigCtx); err != nil {
		return errors.NewInputError(fmt.Sprintf("failed to watch '%s'", w.File), err)
	}
	return nil
}

// MediaCmd normalizes and optionally edits a media entry
type MediaCmd struct {
	Set      []string `help:"Change a setting, as key=value. Values are read as JSON, falling back to a plain string." short:"s" sep:"none"`
	ReadOnly bool     `help:"Open the entry read-only. Any --set then fails."`
	Output   string   `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	File     string   `arg:"" help:"Media entry document, or - for stdin." default:"-"`
}

func (m *MediaCmd) Run(ctx *Context) error {
	doc, err := ctx.readDocument(m.File)
	if err != nil {
		return err
	}

	session := media.NewSession()
	if err := session.Init(doc, !m.ReadOnly); err != nil {
		return errors.NewMergeError(err.Error(), err).In(sourceName(m.File))
	}

	for _, assignment := range m.Set {
		key, raw, ok := strings.Cut(assignment, "=")
		if !ok {
			return errors.NewInputError(fmt.Sprintf("--set %q is not key=value", assignment), nil)
		}
		value, err := parser.ParseString(raw, parser.FormatJSON)
		if err != nil {
			value = llsd.String(raw)
		}
		if err := session.Set(key, value); err != nil {
			return errors.NewMergeError(fmt.Sprintf("cannot set %s: %v", key, err), err)
		}
	}

	write := func(settings *llsd.Map) error {
		text, err := ctx.render(settings)
		if err != nil {
			return err
		}
		return ctx.writeOutput(text, m.Output)
	}

	if !session.Changed() {
		return write(session.Values())
	}
	ctx.Logger.Info("Media settings changed", zap.Strings("keys", session.ChangedKeys()))
	_, err = session.Apply(context.Background(), media.ApplierFunc(func(_ context.Context, settings *llsd.Map) error {
		return write(settings)
	}))
	return err
}

// EnvCmd validates a region environment response
type EnvCmd struct {
	Region string `help:"Region ID the response must belong to." short:"r" required:""`
	File   string `arg:"" help:"Environment response document, or - for stdin." default:"-"`
}

func (e *EnvCmd) Run(ctx *Context) error {
	region, err := uuid.Parse(e.Region)
	if err != nil {
		return errors.NewInputError(fmt.Sprintf("invalid region ID '%s'", e.Region), err)
	}
	doc, err := ctx.readDocument(e.File)
	if err != nil {
		return err
	}

	settings, err := environment.ParseResponse(doc, region)
	if err != nil {
		return errors.NewMergeError(err.Error(), err).In(sourceName(e.File))
	}
	frames, err := settings.Keyframes()
	if err != nil {
		return errors.NewMergeError(err.Error(), err).In(sourceName(e.File))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "region: %s\n", settings.RegionID)
	fmt.Fprintf(&sb, "skies: %s\n", strings.Join(settings.SkyNames(), ", "))
	sb.WriteString("day cycle:\n")
	for _, f := range frames {
		fmt.Fprintf(&sb, "  %.3f %s\n", f.Time, f.Preset)
	}
	fmt.Fprintf(&sb, "water: %d settings\n", settings.Water.Len())
	return ctx.writeOutput(sb.String(), "")
}

// GenCmd generates Go structs for a template
type GenCmd struct {
	Template string `help:"Template name from the config file, template path, or \"media\"." short:"T" required:""`
	Package  string `help:"Package name for generated code." default:"main"`
	RootName string `help:"Name for the root struct." default:"Root" short:"n"`
	Output   string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
}

func (g *GenCmd) Run(ctx *Context) error {
	template, err := ctx.loadTemplate(g.Template)
	if err != nil {
		return err
	}

	ctx.Logger.Debug("Generating structs", zap.String("package", g.Package), zap.String("root", g.RootName))
	code, err := generator.Generate(template, g.Package, g.RootName)
	if err != nil {
		return errors.NewFormatError("failed to generate Go structs", err)
	}
	return ctx.writeOutput(code, g.Output)
}

// VersionCmd prints the version
type VersionCmd struct{}

func (v *VersionCmd) Run(ctx *Context) error {
	_, err := fmt.Fprintf(ctx.Stdout, "llsdtool version %s\n", Version)
	return err
}
