// Command courseform formats, edits and renders the structured landing-page
// columns of products and courses.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/goliatone/go-courseform/internal/config"
	"github.com/goliatone/go-courseform/internal/logging"
	"github.com/goliatone/go-courseform/pkg/renderers/tui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], streams{in: os.Stdin, out: os.Stdout, err: os.Stderr})
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "courseform: %v\n", err)
		os.Exit(1)
	}
}

type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	streams streams
	driver  tui.PromptDriver
}

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"fmt":     runFmt,
	"migrate": runMigrate,
	"seed":    runSeed,
	"render":  runRender,
	"edit":    runEdit,
	"show":    runShow,
}

func run(ctx context.Context, args []string, s streams) error {
	return runWith(ctx, args, s, nil)
}

func runWith(ctx context.Context, args []string, s streams, driver tui.PromptDriver) error {
	global := flag.NewFlagSet("courseform", flag.ContinueOnError)
	global.SetOutput(s.err)
	global.Usage = func() { printHelp(s.err) }
	configFile := global.String("config", "", "config file (yaml, toml or json)")
	envFile := global.String("env-file", config.DefaultEnvFile, "dotenv file loaded when present")
	dsn := global.String("dsn", "", "database DSN, overrides database.dsn")
	logLevel := global.String("log-level", "", "log level, overrides log.level")
	if err := global.Parse(args); err != nil {
		return err
	}

	rest := global.Args()
	if len(rest) == 0 || rest[0] == "help" {
		printHelp(s.err)
		return nil
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		printHelp(s.err)
		return fmt.Errorf("unknown command: %s", rest[0])
	}

	cfg, err := config.Load(config.WithConfigFile(*configFile), config.WithEnvFile(*envFile))
	if err != nil {
		return err
	}
	if *dsn != "" {
		cfg.Database.DSN = *dsn
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	logger, err := logging.New(cfg.Log.Level, logging.Format(cfg.Log.Format))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	a := &app{cfg: cfg, logger: logger, streams: s, driver: driver}
	return cmd(ctx, a, rest[1:])
}

func printHelp(w io.Writer) {
	fmt.Fprint(w, `Usage: courseform [global options] <command> [options]

Commands:
  fmt       Format structured JSON from files or stdin
  migrate   Apply (or roll back) the database schema
  seed      Insert sample products and courses
  render    Render the editing page of a row as HTML or text
  edit      Edit the structured columns of a row interactively
  show      Print decoded landing content, or list rows without -id

Global options:
  -config     config file
  -env-file   dotenv file (default .env)
  -dsn        database DSN
  -log-level  debug, info, warn or error

Examples:
  courseform migrate
  courseform seed
  courseform render -entity product -id 1 -o page.html
  courseform edit -entity course -id 1
  courseform fmt -w specs.json
`)
}
