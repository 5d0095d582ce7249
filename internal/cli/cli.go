package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/goliatone/go-blockgen/pkg/block"
	"github.com/goliatone/go-blockgen/pkg/config"
	"github.com/goliatone/go-blockgen/pkg/orchestrator"
	"github.com/goliatone/go-blockgen/pkg/registry"
	"github.com/goliatone/go-blockgen/pkg/scaffold"
	"github.com/goliatone/go-blockgen/pkg/server"
)

// ExitError carries the process exit code for a failure.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) error {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// Option configures Run.
type Option func(*runner)

// WithStderr sets the writer used for logs and usage text.
func WithStderr(w io.Writer) Option {
	return func(r *runner) {
		if w != nil {
			r.stderr = w
		}
	}
}

// WithPromptDriver replaces the terminal prompts used by the new command.
func WithPromptDriver(driver scaffold.PromptDriver) Option {
	return func(r *runner) {
		r.driver = driver
	}
}

type runner struct {
	stdout io.Writer
	stderr io.Writer
	driver scaffold.PromptDriver
	logger *slog.Logger
	cfg    config.Config
}

const usage = `
blockgen - discover, render and scaffold block templates.

Usage:
  blockgen [options] <command> [command options]

Commands:
  list                 Discover blocks and print their configuration.
  show [opts] SLUG     Describe one block.
  render [opts] SLUG   Render one block to stdout.
  new [opts]           Create a block template interactively.
  serve [opts]         Serve a preview HTTP API.

Options:
`

// Run parses args and executes the selected command, writing results to out.
func Run(ctx context.Context, args []string, out io.Writer, options ...Option) error {
	r := &runner{stdout: out, stderr: os.Stderr}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}

	flagSet := flag.NewFlagSet("blockgen", flag.ContinueOnError)
	flagSet.SetOutput(r.stderr)
	flagSet.Usage = func() {
		fmt.Fprint(r.stderr, usage)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to a YAML configuration file.")
	rootFlag := flagSet.String("root", "", "Theme root directory. Overrides the config file.")
	debugFlag := flagSet.Bool("debug", false, "Enable header warnings and render dumps.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	envFileFlag := flagSet.String("env-file", ".env", "Optional dotenv file with BLOCKGEN_* settings.")
	engineFlag := flagSet.String("engine", "", "Template engine. Options: 'pongo2' or 'go-template'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return usageError("%s", err.Error())
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return usageError("invalid log-format: must be 'text' or 'json'")
	}
	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}
	r.logger = newLogger(logLevel, logFormat, r.stderr)

	cfg := config.Default()
	if *configFlag != "" {
		loaded, err := config.Load(*configFlag)
		if err != nil {
			return &ExitError{Code: 1, Message: err.Error()}
		}
		cfg = loaded
	}
	cfg, err := applyEnv(cfg, *envFileFlag)
	if err != nil {
		return &ExitError{Code: 1, Message: err.Error()}
	}
	if *rootFlag != "" {
		cfg.Root = *rootFlag
	}
	if *debugFlag {
		cfg.Debug = true
	}
	if *engineFlag != "" {
		cfg.Engine = *engineFlag
	}
	r.cfg = cfg.WithDefaults()
	switch r.cfg.Engine {
	case config.EnginePongo2, config.EngineGoTemplate:
	default:
		return usageError("invalid engine %q: must be '%s' or '%s'", r.cfg.Engine, config.EnginePongo2, config.EngineGoTemplate)
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return usageError("a command is required")
	}

	cmd, rest := flagSet.Arg(0), flagSet.Args()[1:]
	switch cmd {
	case "list":
		return r.list(ctx, rest)
	case "show":
		return r.show(ctx, rest)
	case "render":
		return r.render(ctx, rest)
	case "new":
		return r.scaffold(ctx, rest)
	case "serve":
		return r.serve(ctx, rest)
	default:
		return usageError("unknown command %q", cmd)
	}
}

// applyEnv overlays the process environment and then the dotenv file, which
// only fills variables the environment leaves unset.
func applyEnv(cfg config.Config, envFile string) (config.Config, error) {
	dotenv := map[string]string{}
	if envFile != "" {
		values, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("cli: read %s: %w", envFile, err)
		}
		if values != nil {
			dotenv = values
		}
	}
	return cfg.ApplyEnv(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	})
}

func (r *runner) discover(ctx context.Context) (*orchestrator.Orchestrator, error) {
	gen := orchestrator.New(
		orchestrator.WithConfig(r.cfg),
		orchestrator.WithLogger(r.logger),
	)
	if err := gen.Err(); err != nil {
		return nil, err
	}
	if _, err := gen.Discover(ctx); err != nil {
		return nil, err
	}
	return gen, nil
}

func (r *runner) subcommand(name string) *flag.FlagSet {
	flags := flag.NewFlagSet("blockgen "+name, flag.ContinueOnError)
	flags.SetOutput(r.stderr)
	return flags
}

func (r *runner) parse(flags *flag.FlagSet, args []string) (bool, error) {
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return true, nil
		}
		return false, usageError("%s", err.Error())
	}
	return false, nil
}

func (r *runner) list(ctx context.Context, args []string) error {
	flags := r.subcommand("list")
	asJSON := flags.Bool("json", false, "Print configurations as JSON.")
	if done, err := r.parse(flags, args); done || err != nil {
		return err
	}

	gen, err := r.discover(ctx)
	if err != nil {
		return err
	}
	configs := gen.Registry().Configs()
	if *asJSON {
		enc := json.NewEncoder(r.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(configs)
	}
	return writeBlockTable(r.stdout, configs)
}

func (r *runner) show(ctx context.Context, args []string) error {
	flags := r.subcommand("show")
	style := flags.String("style", "auto", "glamour style: auto, dark, light, notty.")
	if done, err := r.parse(flags, args); done || err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return usageError("show: exactly one block slug is required")
	}

	gen, err := r.discover(ctx)
	if err != nil {
		return err
	}
	cfg, err := r.lookup(gen, flags.Arg(0))
	if err != nil {
		return err
	}
	return writeBlockDetails(r.stdout, *style, r.cfg.Namespace, cfg)
}

func (r *runner) lookup(gen *orchestrator.Orchestrator, slug string) (block.Config, error) {
	cfg, err := gen.Registry().Get(slug)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return block.Config{}, &ExitError{Code: 1, Message: fmt.Sprintf("block %q is not registered", slug)}
		}
		return block.Config{}, err
	}
	return cfg, nil
}

func (r *runner) render(ctx context.Context, args []string) error {
	flags := r.subcommand("render")
	content := flags.String("content", "", "Inner block content.")
	preview := flags.Bool("preview", false, "Render as an editor preview.")
	postID := flags.Int64("post-id", 0, "Post identifier passed to the template.")
	className := flags.String("class", "", "Extra CSS class name.")
	anchor := flags.String("anchor", "", "HTML anchor.")
	align := flags.String("align", "", "Alignment override.")
	mode := flags.String("mode", "", "Mode override.")
	data := flags.String("data", "", "Block field data as a JSON object.")
	if done, err := r.parse(flags, args); done || err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return usageError("render: exactly one block slug is required")
	}
	slug := flags.Arg(0)

	var fields map[string]any
	if *data != "" {
		if err := json.Unmarshal([]byte(*data), &fields); err != nil {
			return usageError("render: invalid -data: %v", err)
		}
	}

	gen, err := r.discover(ctx)
	if err != nil {
		return err
	}
	cfg, err := r.lookup(gen, slug)
	if err != nil {
		return err
	}

	req := block.RenderRequest{
		Block: block.Instance{
			Name:      r.cfg.Namespace + "/" + cfg.Name,
			ClassName: *className,
			Anchor:    *anchor,
			Align:     *align,
			Mode:      *mode,
			Data:      fields,
		},
		Content:   *content,
		IsPreview: *preview,
		PostID:    *postID,
	}
	_, err = gen.Render(ctx, req, r.stdout)
	return err
}

func (r *runner) scaffold(ctx context.Context, args []string) error {
	flags := r.subcommand("new")
	dir := flags.String("dir", "", "Template directory relative to the root. Defaults to the first configured directory.")
	if done, err := r.parse(flags, args); done || err != nil {
		return err
	}
	if *dir == "" {
		*dir = r.cfg.Directories[0]
	}

	s := scaffold.New(
		scaffold.WithRoot(r.cfg.Root),
		scaffold.WithDirectory(*dir),
		scaffold.WithExtension(r.cfg.Extension),
		scaffold.WithDriver(r.driver),
		scaffold.WithLogger(r.logger),
	)
	res, err := s.Run(ctx)
	if err != nil {
		if errors.Is(err, scaffold.ErrAborted) {
			return &ExitError{Code: 1, Message: "aborted"}
		}
		return err
	}
	_, err = fmt.Fprintf(r.stdout, "created %s (%s/%s)\n", res.Path, r.cfg.Namespace, res.Slug)
	return err
}

func (r *runner) serve(ctx context.Context, args []string) error {
	flags := r.subcommand("serve")
	addr := flags.String("addr", ":8080", "Listen address.")
	if done, err := r.parse(flags, args); done || err != nil {
		return err
	}

	gen, err := r.discover(ctx)
	if err != nil {
		return err
	}
	srv := server.New(gen.Registry(), gen,
		server.WithNamespace(r.cfg.Namespace),
		server.WithLogger(r.logger),
	)
	return srv.ListenAndServe(ctx, *addr)
}
