package main

import (
	"context"
	"fmt"
	"os"

	flags "github.com/jessevdk/go-flags"

	"github.com/blog-platform/blogctl/pkg/console"
	"github.com/blog-platform/blogctl/pkg/launcher"
	"github.com/blog-platform/blogctl/pkg/logging"
)

type globalOptions struct {
	Root      string `long:"root" short:"r" default:"." description:"project root containing the backend and frontend directories"`
	Config    string `long:"config" short:"c" description:"launcher configuration file (YAML)"`
	LogLevel  string `long:"log-level" default:"warn" description:"diagnostic log level: debug, info, warn, error"`
	LogFormat string `long:"log-format" default:"console" description:"diagnostic log format: console or json"`
	AssumeYes bool   `long:"yes" short:"y" description:"answer yes to confirmation prompts"`
}

func logPrefix(module string) string {
	return fmt.Sprintf("module: %s , ", module)
}

// buildLauncher assembles the launcher from the command line: config file
// (or defaults), the operator console on stdout, and the zap-backed
// diagnostic log on stderr.
func buildLauncher(opts *globalOptions) (*launcher.Launcher, *logging.ZapAdapter, error) {
	config, err := launcher.LoadConfigFromFile(opts.Config)
	if err != nil {
		return nil, nil, err
	}

	zapAdapter := logging.NewZapAdapter(logging.ZapConfig{
		Level:  opts.LogLevel,
		Format: opts.LogFormat,
		Output: "stderr",
	})

	logger := logging.NewLogger(logPrefix("launcher"), logging.LogFuncs{
		Debugf: zapAdapter.Debugf,
		Infof:  zapAdapter.Infof,
		Warnf:  zapAdapter.Warnf,
		Errorf: zapAdapter.Errorf,
	})

	l, err := launcher.New(config, launcher.Options{
		Root:      opts.Root,
		AssumeYes: opts.AssumeYes,
	}, console.New(), logger)
	if err != nil {
		return nil, nil, err
	}

	return l, zapAdapter, nil
}

func runCommand(opts *globalOptions, run func(context.Context, *launcher.Launcher) error) error {
	l, zapAdapter, err := buildLauncher(opts)
	if err != nil {
		return err
	}
	defer zapAdapter.Sync()

	return run(context.Background(), l)
}

type setupCommand struct {
	opts *globalOptions
}

func (c *setupCommand) Execute(args []string) error {
	return runCommand(c.opts, func(ctx context.Context, l *launcher.Launcher) error {
		return l.Setup(ctx)
	})
}

type startCommand struct {
	opts *globalOptions
}

func (c *startCommand) Execute(args []string) error {
	return runCommand(c.opts, func(ctx context.Context, l *launcher.Launcher) error {
		return l.StartAll(ctx)
	})
}

type backendCommand struct {
	opts *globalOptions
}

func (c *backendCommand) Execute(args []string) error {
	return runCommand(c.opts, func(ctx context.Context, l *launcher.Launcher) error {
		return l.StartBackend(ctx)
	})
}

type frontendCommand struct {
	opts *globalOptions
}

func (c *frontendCommand) Execute(args []string) error {
	return runCommand(c.opts, func(ctx context.Context, l *launcher.Launcher) error {
		return l.StartFrontend(ctx)
	})
}

func main() {
	var opts globalOptions
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)

	mustAddCommand(parser, "setup", "Check tools and build everything",
		"Verifies Java, Node.js, npm and Maven, then builds the backend and frontend.",
		&setupCommand{opts: &opts})
	mustAddCommand(parser, "start", "Start all services",
		"Builds the backend, starts backend and frontend under supervision, and waits for Ctrl+C.",
		&startCommand{opts: &opts})
	mustAddCommand(parser, "backend", "Run the backend only",
		"Compiles and runs the backend in the foreground.",
		&backendCommand{opts: &opts})
	mustAddCommand(parser, "frontend", "Run the frontend only",
		"Runs the frontend dev server in the foreground.",
		&frontendCommand{opts: &opts})

	_, err := parser.Parse()
	if err != nil {
		if flags.WroteHelp(err) {
			fmt.Println(err)
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func mustAddCommand(parser *flags.Parser, name, short, long string, command interface{}) {
	if _, err := parser.AddCommand(name, short, long, command); err != nil {
		panic(err)
	}
}
