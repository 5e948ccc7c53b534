package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mcncl/llsdtool/internal/config"
	"github.com/mcncl/llsdtool/internal/errors"
	"github.com/mcncl/llsdtool/internal/formatter"
	"github.com/mcncl/llsdtool/internal/llsd"
	"github.com/mcncl/llsdtool/internal/logging"
	"github.com/mcncl/llsdtool/internal/media"
	"github.com/mcncl/llsdtool/internal/parser"
	"go.uber.org/zap"
)

// CLI defines the command-line interface
type CLI struct {
	Config string `help:"Path to config file. Defaults to the nearest .llsdtool.yml." short:"c" type:"path"`
	Debug  bool   `help:"Enable debug logging." short:"d"`
	From   string `help:"Input format (xml, json, yaml). Guessed from the file when omitted." short:"f"`
	To     string `help:"Output format (xml, json, yaml). Defaults to the config file's, then xml." short:"t"`
	Pretty bool   `help:"Indent the output." short:"p"`

	Merge   MergeCmd   `cmd:"" help:"Merge a document with a template, filling defaults and dropping unknown keys."`
	Equal   EqualCmd   `cmd:"" help:"Compare two documents. Exits with status 1 when they differ."`
	Convert ConvertCmd `cmd:"" help:"Re-encode a document in another format."`
	Watch   WatchCmd   `cmd:"" help:"Re-check a document against a template whenever it changes."`
	Media   MediaCmd   `cmd:"" help:"Normalize and edit a media entry."`
	Env     EnvCmd     `cmd:"" help:"Validate a region environment settings response."`
	Gen     GenCmd     `cmd:"" help:"Generate Go structs that decode documents merged with a template."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Context holds the runtime context shared by the commands
type Context struct {
	Config *config.Config
	Logger *zap.Logger
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Exit))
}

// run parses args, executes the selected command and returns the exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer, exit func(int)) int {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("llsdtool"),
		kong.Description("A tool to merge, compare, convert and generate Go types for LLSD documents"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(exit),
	)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 2
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		// usage has already been shown by kong.UsageOnError()
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	ctx, err := newContext(&cli, stdin, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", errors.UserFriendlyError(err))
		return 1
	}
	defer func() { _ = ctx.Logger.Sync() }()

	if err := kctx.Run(ctx); err != nil {
		// Use our custom error handling to provide user-friendly error messages
		fmt.Fprintf(stderr, "%s\n", errors.UserFriendlyError(err))
		fields := []zap.Field{zap.String("command", kctx.Command()), zap.Error(err)}
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) && appErr.Path != "" {
			fields = append(fields, zap.String("path", appErr.Path))
		}
		ctx.Logger.Debug("Command failed", fields...)
		return 1
	}
	return 0
}

// newContext loads the configuration, applies the global flags and builds
// the logger.
func newContext(cli *CLI, stdin io.Reader, stdout, stderr io.Writer) (*Context, error) {
	configPath := cli.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	overrides := config.CLIOverrides{
		InputFormat:  cli.From,
		OutputFormat: cli.To,
		Debug:        cli.Debug,
	}
	if cli.Pretty {
		overrides.Pretty = &cli.Pretty
	}
	cfg, err := config.LoadConfigWithCLI(configPath, overrides)
	if err != nil {
		return nil, errors.NewInputError(fmt.Sprintf("failed to load configuration: %v", err), err)
	}

	var logger *zap.Logger
	if cfg.Logging.Debug {
		logger, err = logging.New(true)
	} else {
		logger, err = logging.NewAtLevel(cfg.Logging.Level)
	}
	if err != nil {
		return nil, errors.NewInputError("failed to initialize logger", err)
	}
	if configPath != "" {
		logger.Debug("Loaded configuration", zap.String("path", configPath))
	}

	return &Context{
		Config: cfg,
		Logger: logger,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	}, nil
}

// inputFormat returns the configured input format, or "" to guess.
func (c *Context) inputFormat() parser.Format {
	if c.Config.InputFormat == "" {
		return ""
	}
	// validated by config.LoadConfigWithCLI
	f, _ := parser.ParseFormat(c.Config.InputFormat)
	return f
}

func (c *Context) outputFormat() parser.Format {
	f, err := parser.ParseFormat(c.Config.OutputFormat)
	if err != nil {
		return parser.FormatXML
	}
	return f
}

// readDocument parses the file at path, or stdin when path is "-".
func (c *Context) readDocument(path string) (llsd.Value, error) {
	if path == "-" {
		c.Logger.Debug("Reading document from stdin")
		data, err := io.ReadAll(c.Stdin)
		if err != nil {
			return nil, errors.NewInputError("failed to read from stdin", err)
		}
		if len(data) == 0 {
			return nil, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
		}
		v, err := parser.ParseString(string(data), c.inputFormat())
		if err != nil {
			return nil, errors.InSource(err, sourceName(path))
		}
		return v, nil
	}
	c.Logger.Debug("Reading document", zap.String("path", path))
	return parser.ParseFile(path, c.inputFormat())
}

// sourceName names a document argument in error messages.
func sourceName(path string) string {
	if path == "-" {
		return "<stdin>"
	}
	return path
}

// builtinTemplates are available by name without a file.
var builtinTemplates = map[string]func() llsd.Value{
	"media": func() llsd.Value { return media.DefaultTemplate() },
}

// loadTemplate resolves name through the config, the filesystem and the
// built-in templates, in that order.
func (c *Context) loadTemplate(name string) (llsd.Value, error) {
	if path, ok := c.Config.ResolveTemplate(name); ok {
		c.Logger.Debug("Using template file", zap.String("name", name), zap.String("path", path))
		return parser.ParseFile(path, "")
	}
	if builtin, ok := builtinTemplates[config.TemplateKey(name)]; ok {
		c.Logger.Debug("Using built-in template", zap.String("name", name))
		return builtin(), nil
	}
	return nil, errors.NewInputError(fmt.Sprintf("template '%s' not found", name), errors.ErrFileNotFound)
}

// render formats v with the configured output format.
func (c *Context) render(v llsd.Value) (string, error) {
	text, err := formatter.NewFormatter().Format(v, c.outputFormat(), c.Config.Pretty)
	if err != nil {
		return "", errors.NewFormatError("failed to format document", err)
	}
	return text, nil
}

// writeOutput writes text to the file at path or to stdout when path is empty
func (c *Context) writeOutput(text, path string) error {
	if path != "" {
		err := os.WriteFile(path, []byte(text), 0o644)
		if err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
		}
		c.Logger.Info("Wrote document", zap.String("path", path))
		return nil
	}

	// Write to stdout
	_, err := fmt.Fprintln(c.Stdout, strings.TrimSpace(text))
	if err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}
