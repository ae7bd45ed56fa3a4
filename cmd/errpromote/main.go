// Package main provides errpromote, which replays recorded runtime errors
// against a throw_errors configuration and prints whether each one would be
// promoted to an exception, reported through the legacy path, or end
// execution.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/isseis/go-errpromote/internal/config"
	"github.com/isseis/go-errpromote/internal/dispatch"
	"github.com/isseis/go-errpromote/internal/errcategory"
	"github.com/isseis/go-errpromote/internal/logging"
	"github.com/isseis/go-errpromote/internal/promotion"
	"github.com/isseis/go-errpromote/internal/redaction"
	"github.com/isseis/go-errpromote/internal/reporting"
	"github.com/isseis/go-errpromote/internal/terminal"
)

// Exit codes
const (
	exitOK         = 0
	exitFailure    = 1
	exitTerminated = 2
)

const (
	natsConnectTimeout = 2 * time.Second
	maxEventLineSize   = 1 << 20
)

// Error definitions
var (
	ErrUnknownCategory = errors.New("unknown error category")
	ErrMissingFile     = errors.New("event has no file")
)

type options struct {
	configPath  string
	eventsPath  string
	validate    bool
	logLevel    string
	logFile     string
	metricsFile string
	color       bool
	noColor     bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("errpromote", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "path to config file (.toml, .yaml or .yml)")
	fs.StringVar(&opts.eventsPath, "events", "", "path to JSON lines events file (default: stdin)")
	fs.BoolVar(&opts.validate, "validate", false, "validate configuration file and exit")
	fs.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	fs.StringVar(&opts.logFile, "log-file", "", "path to JSON log file")
	fs.StringVar(&opts.metricsFile, "metrics-file", "", "write decision counters in Prometheus text format to this file")
	fs.BoolVar(&opts.color, "color", false, "force coloured display output")
	fs.BoolVar(&opts.noColor, "no-color", false, "disable coloured display output")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes errpromote and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	runID := logging.GenerateRunID()

	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		return exitFailure
	}

	app, err := setup(opts, runID, stderr)
	if err != nil {
		var preErr *logging.PreExecutionError
		if !errors.As(err, &preErr) {
			preErr = &logging.PreExecutionError{Type: logging.ErrorTypeConfigParsing, Message: "setup failed", Component: "main", RunID: runID, Err: err}
		}
		logging.HandlePreExecutionError(stderr, preErr)
		return exitFailure
	}
	defer app.Close()

	if opts.validate {
		printValidation(stdout, app.cfg)
		return exitOK
	}

	events := stdin
	if opts.eventsPath != "" {
		// #nosec G304 - path is supplied by the operator on the command line
		f, err := os.Open(opts.eventsPath)
		if err != nil {
			logging.HandlePreExecutionError(stderr, &logging.PreExecutionError{
				Type: logging.ErrorTypeFileAccess, Message: "failed to open events file", Component: "replay", RunID: runID, Err: err,
			})
			return exitFailure
		}
		defer func() { _ = f.Close() }()
		events = f
	}

	code := app.replay(ctx, events, stdout)

	if opts.metricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.metricsFile, app.registry); err != nil {
			app.logger.Error("Failed to write metrics file", "path", opts.metricsFile, "error", err)
			if code == exitOK {
				code = exitFailure
			}
		}
	}
	return code
}

// application holds everything built from the configuration.
type application struct {
	cfg        *config.Config
	logger     *slog.Logger
	dispatcher *dispatch.Dispatcher
	registry   *prometheus.Registry
	closers    []io.Closer
	nc         *nats.Conn
}

func setup(opts *options, runID string, stderr io.Writer) (*application, error) {
	if opts.configPath == "" {
		return nil, &logging.PreExecutionError{
			Type: logging.ErrorTypeRequiredArgumentMissing, Message: "-config is required", Component: "main", RunID: runID,
		}
	}

	level, err := logging.ParseLevel(opts.logLevel)
	if err != nil {
		return nil, &logging.PreExecutionError{
			Type: logging.ErrorTypeInvalidArgument, Message: "invalid -log-level", Component: "logging", RunID: runID, Err: err,
		}
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, &logging.PreExecutionError{
			Type: logging.ErrorTypeConfigParsing, Message: "failed to load config", Component: "config", RunID: runID, Err: err,
		}
	}

	var redactor *redaction.Redactor
	if cfg.Reporting.Redact {
		if redactor, err = redaction.New(redaction.DefaultConfig()); err != nil {
			return nil, &logging.PreExecutionError{
				Type: logging.ErrorTypeConfigParsing, Message: "failed to build redactor", Component: "redaction", RunID: runID, Err: err,
			}
		}
	}

	logCfg := logging.Config{Level: level, Console: stderr, LogFile: opts.logFile, RunID: runID}
	if redactor != nil {
		logCfg.Redactor = redactor
	}
	logger, logCloser, err := logging.Setup(logCfg)
	if err != nil {
		return nil, &logging.PreExecutionError{
			Type: logging.ErrorTypeLogFileOpen, Message: "failed to set up logger", Component: "logging", RunID: runID, Err: err,
		}
	}
	slog.SetDefault(logger)

	app := &application{cfg: cfg, logger: logger, closers: []io.Closer{logCloser}, registry: prometheus.NewRegistry()}
	if err := app.build(opts, redactor, stderr); err != nil {
		app.Close()
		return nil, &logging.PreExecutionError{
			Type: logging.ErrorTypeSinkSetup, Message: "failed to set up reporting", Component: "reporting", RunID: runID, Err: err,
		}
	}

	logger.Debug("Configuration loaded",
		"config", opts.configPath,
		"scopes", len(cfg.Scopes),
		"run_id", runID)
	return app, nil
}

func (a *application) build(opts *options, redactor *redaction.Redactor, stderr io.Writer) error {
	cfg := a.cfg

	filter, err := cfg.Filter()
	if err != nil {
		return err
	}
	table, err := cfg.BuildTable()
	if err != nil {
		return err
	}

	var sinks []reporting.Sink
	if cfg.Reporting.DisplayErrors {
		caps := terminal.NewCapabilities(terminal.Options{ForceColor: opts.color, DisableColor: opts.noColor})
		sinks = append(sinks, reporting.NewDisplaySink(stderr, caps.ColorEnabled(stderr)))
	}
	if cfg.Reporting.LogErrors {
		sinks = append(sinks, reporting.NewLogSink(a.logger))
		if cfg.Reporting.ErrorLog != "" {
			fileSink, err := reporting.NewFileSink(cfg.Reporting.ErrorLog)
			if err != nil {
				return err
			}
			sinks = append(sinks, fileSink)
		}
	}
	if cfg.NATS.Enabled() {
		nc, err := nats.Connect(cfg.NATS.URL, nats.Name("errpromote"), nats.Timeout(natsConnectTimeout))
		if err != nil {
			return fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATS.URL, err)
		}
		a.nc = nc
		natsSink, err := reporting.NewNATSSink(nc, cfg.NATS.Subject)
		if err != nil {
			return err
		}
		sinks = append(sinks, natsSink)
	}

	pipelineOpts := reporting.Options{Filter: filter, Sinks: sinks}
	if redactor != nil {
		pipelineOpts.Redactor = redactor
	}
	pipeline, err := reporting.NewPipeline(pipelineOpts)
	if err != nil {
		return err
	}

	metrics, err := dispatch.NewMetrics(a.registry)
	if err != nil {
		return err
	}
	a.dispatcher, err = dispatch.New(dispatch.Options{Table: table, Pipeline: pipeline, Logger: a.logger, Metrics: metrics})
	return err
}

// Close flushes the NATS connection and closes the log file.
func (a *application) Close() {
	if a.nc != nil {
		if err := a.nc.Flush(); err != nil {
			a.logger.Warn("Failed to flush NATS connection", "error", err)
		}
		a.nc.Close()
	}
	for _, c := range a.closers {
		_ = c.Close()
	}
}

// eventRecord is one line of the events file.
type eventRecord struct {
	Category   string `json:"category"`
	Message    string `json:"message"`
	File       string `json:"file"`
	Line       int    `json:"line"`
	InRuntime  *bool  `json:"in_runtime"`
	Suppressed bool   `json:"suppressed"`
}

func (r eventRecord) event() (promotion.Event, error) {
	c, ok := errcategory.Lookup(strings.TrimSpace(r.Category))
	if !ok {
		return promotion.Event{}, fmt.Errorf("%w: %q", ErrUnknownCategory, r.Category)
	}
	if r.File == "" {
		return promotion.Event{}, ErrMissingFile
	}
	inRuntime := true
	if r.InRuntime != nil {
		inRuntime = *r.InRuntime
	}
	return promotion.Event{Category: c, Message: r.Message, File: r.File, Line: r.Line, InRuntimeContext: inRuntime}, nil
}

// replay raises every event read from r and prints one outcome line each.
// It stops at the first event that terminates execution.
func (a *application) replay(ctx context.Context, r io.Reader, stdout io.Writer) int {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			a.logger.Warn("Replay interrupted", "line", lineNo, "error", err)
			return exitFailure
		}

		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 || raw[0] == '#' {
			continue
		}

		var rec eventRecord
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&rec); err != nil {
			a.logger.Error("Invalid event", "line", lineNo, "error", err)
			return exitFailure
		}
		ev, err := rec.event()
		if err != nil {
			a.logger.Error("Invalid event", "line", lineNo, "error", err)
			return exitFailure
		}

		eventCtx := ctx
		if rec.Suppressed {
			eventCtx = reporting.WithSuppression(ctx)
		}

		outcome, terminated := classify(a.dispatcher.Raise(eventCtx, ev))
		fmt.Fprintf(stdout, "%s %s -> %s\n", ev.Location(), ev.Category, outcome)
		if terminated {
			return exitTerminated
		}
	}
	if err := scanner.Err(); err != nil {
		a.logger.Error("Failed to read events", "line", lineNo, "error", err)
		return exitFailure
	}
	return exitOK
}

func classify(err error) (outcome string, terminated bool) {
	var exc *promotion.PromotedException
	var term *reporting.TerminationError
	switch {
	case err == nil:
		return promotion.TriggerLegacy.String(), false
	case errors.As(err, &exc):
		return promotion.Promote.String(), false
	case errors.As(err, &term):
		return "terminate", true
	default:
		return "error: " + err.Error(), false
	}
}

func printValidation(w io.Writer, cfg *config.Config) {
	level, _ := cfg.ReportingLevel()
	fmt.Fprintf(w, "Configuration is valid\n")
	fmt.Fprintf(w, "  error_reporting: %s\n", level)
	for _, s := range cfg.Scopes {
		// Validate has already resolved every directive
		set, _ := errcategory.FromRaw(s.ThrowErrors)
		mask := promotion.NewMask(set)
		fmt.Fprintf(w, "  %s: throw_errors=%s", s.File, mask.Declared())
		if ignored := mask.Ignored(); !ignored.IsEmpty() {
			fmt.Fprintf(w, " (never promoted: %s)", ignored)
		}
		fmt.Fprintln(w)
	}
}
