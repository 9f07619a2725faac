package launcher

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/blog-platform/blogctl/pkg/console"
	"github.com/blog-platform/blogctl/pkg/errors"
	"github.com/blog-platform/blogctl/pkg/logging"
	"github.com/blog-platform/blogctl/pkg/monitoring"
	"github.com/blog-platform/blogctl/pkg/portprobe"
	"github.com/blog-platform/blogctl/pkg/process"
	"github.com/blog-platform/blogctl/pkg/supervisor"
	"github.com/blog-platform/blogctl/pkg/toolcheck"
)

// shutdownTimeout bounds the whole teardown, both services included.
const shutdownTimeout = 30 * time.Second

// Options carry the command-line knobs shared by all launcher commands.
type Options struct {
	// Root is the project root holding the backend and frontend
	// directories. It is always explicit; the launcher never assumes the
	// current working directory is the project.
	Root string

	// AssumeYes skips interactive confirmation prompts.
	AssumeYes bool
}

// Launcher orchestrates the platform: port allocation, the backend build,
// supervised service launch with readiness polling, and signal-driven
// teardown.
type Launcher struct {
	config     *Config
	root       string
	assumeYes  bool
	console    *console.Console
	logger     logging.Logger
	probe      *portprobe.Probe
	supervisor *supervisor.Supervisor

	shutdownOnce sync.Once
}

func New(config *Config, opts Options, cons *console.Console, logger logging.Logger) (*Launcher, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	root := opts.Root
	if root == "" {
		return nil, errors.NewValidationError("project root cannot be empty", nil)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.NewValidationError("cannot resolve project root", err).WithContext("root", root)
	}

	return &Launcher{
		config:     config,
		root:       absRoot,
		assumeYes:  opts.AssumeYes,
		console:    cons,
		logger:     logger,
		probe:      portprobe.NewProbe(),
		supervisor: supervisor.NewSupervisor(config.Shutdown.GracePeriod, logger),
	}, nil
}

func (l *Launcher) backendDir() string {
	return filepath.Join(l.root, l.config.Backend.Dir)
}

func (l *Launcher) frontendDir() string {
	return filepath.Join(l.root, l.config.Frontend.Dir)
}

func (l *Launcher) waitOptions() monitoring.WaitOptions {
	return monitoring.WaitOptions{
		MaxAttempts: l.config.Health.MaxAttempts,
		Interval:    l.config.Health.Interval,
	}
}

func healthURL(port int, path string) string {
	return fmt.Sprintf("http://localhost:%d%s", port, path)
}

// StartAll runs the full launch workflow and then blocks until a
// termination signal arrives, at which point it tears both services down.
// A clean signal-driven exit returns nil; startup failures return the
// error after teardown.
func (l *Launcher) StartAll(ctx context.Context) error {
	l.console.Headerf("Starting Blog Platform (All Services)")
	l.console.Blank()

	if err := l.checkProjectLayout(); err != nil {
		return err
	}

	l.console.Infof("Finding available ports...")
	backendPort, err := l.probe.FindFreePort(l.config.Backend.PortBase, l.config.Backend.PortAttempts)
	if err != nil {
		l.console.Errorf("No available port for the backend in range %d-%d",
			l.config.Backend.PortBase, l.config.Backend.PortBase+l.config.Backend.PortAttempts-1)
		return err
	}
	l.console.Successf("Backend will use port %d", backendPort)

	frontendPort, err := l.probe.FindFreePort(l.config.Frontend.PortBase, l.config.Frontend.PortAttempts)
	if err != nil {
		l.console.Errorf("No available port for the frontend in range %d-%d",
			l.config.Frontend.PortBase, l.config.Frontend.PortBase+l.config.Frontend.PortAttempts-1)
		return err
	}
	l.console.Successf("Frontend will use port %d", frontendPort)

	l.console.Blank()
	if err := l.checkDatastore(true); err != nil {
		return err
	}

	// One shutdown path no matter which phase the signal lands in: the
	// handler only cancels the context, the control flow below does the
	// actual teardown.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			l.logger.Infof("Received signal: %v, shutting down", sig)
			cancel()
		case <-runCtx.Done():
		}
	}()

	_, err = l.launchBackend(runCtx, backendPort)
	if runCtx.Err() != nil {
		l.shutdown()
		return nil
	}
	if err != nil {
		l.shutdown()
		return err
	}

	l.console.Blank()
	frontend, err := l.launchFrontend(runCtx, frontendPort, backendPort)
	if runCtx.Err() != nil {
		l.shutdown()
		return nil
	}
	if err != nil {
		l.shutdown()
		return err
	}

	l.printSummary(backendPort, frontendPort, frontend.State() == supervisor.StateHealthy)

	<-runCtx.Done()
	l.shutdown()
	return nil
}

// launchBackend compiles the backend synchronously, launches it under
// supervision, and polls its readiness endpoint. A readiness timeout here
// is fatal: nothing works without the API.
func (l *Launcher) launchBackend(ctx context.Context, port int) (*supervisor.ManagedProcess, error) {
	maven, err := toolcheck.ResolveMavenCommand(l.backendDir())
	if err != nil {
		l.console.Errorf("Neither Maven nor the mvnw wrapper is available")
		l.console.Plainf("  Install Maven or restore mvnw in %s", l.backendDir())
		return nil, err
	}

	l.console.Infof("Compiling backend...")
	build := process.RunCommand(mavenize(l.config.Backend.BuildCommand, maven), l.backendDir(), nil)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if !build.Succeeded {
		l.console.Errorf("Backend compilation failed")
		l.dumpCommandOutput(build)
		return nil, errors.NewBuildFailureError("backend compilation failed", nil).
			WithContext("command", l.config.Backend.BuildCommand)
	}
	l.console.Successf("Backend compiled")

	l.console.Infof("Starting backend on port %d...", port)
	backend, err := l.supervisor.Start(supervisor.ServiceSpec{
		Name:             "backend",
		Command:          mavenize(l.config.Backend.RunCommand, maven),
		WorkingDirectory: l.backendDir(),
		Environment: map[string]string{
			"SERVER_PORT": strconv.Itoa(port),
		},
		LogPath: filepath.Join(l.backendDir(), l.config.Backend.LogFileName),
	})
	if err != nil {
		l.console.Errorf("Failed to start backend: %v", err)
		return nil, err
	}

	url := healthURL(port, l.config.Backend.HealthPath)
	l.console.Infof("Waiting for backend at %s...", url)
	healthy, attempts := monitoring.WaitHealthy(ctx, monitoring.NewHTTPProbe(monitoring.HTTPCheckConfig{
		URL:     url,
		Timeout: l.config.Health.CheckTimeout,
	}), l.waitOptions(), l.logger)
	if ctx.Err() != nil {
		return backend, ctx.Err()
	}
	if !healthy {
		l.console.Errorf("Backend did not become ready after %d attempts", attempts)
		l.dumpLogTail("backend", backend.LogPath())
		return backend, errors.NewHealthCheckError("backend failed its readiness check", nil).
			WithContext("url", url).
			WithContext("attempts", attempts)
	}

	backend.MarkHealthy()
	l.console.Successf("Backend is ready at http://localhost:%d", port)
	return backend, nil
}

// launchFrontend installs dependencies when missing, launches the dev
// server under supervision, and polls its readiness endpoint. A readiness
// timeout here is advisory: the dev server often serves traffic before its
// first compile settles, so the launch continues with a warning.
func (l *Launcher) launchFrontend(ctx context.Context, port, backendPort int) (*supervisor.ManagedProcess, error) {
	if err := l.ensureFrontendDependencies(ctx); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	l.console.Infof("Starting frontend on port %d...", port)
	frontend, err := l.supervisor.Start(supervisor.ServiceSpec{
		Name:             "frontend",
		Command:          l.config.Frontend.RunCommand,
		WorkingDirectory: l.frontendDir(),
		Environment:      frontendEnvironment(port, backendPort),
		LogPath:          filepath.Join(l.frontendDir(), l.config.Frontend.LogFileName),
	})
	if err != nil {
		l.console.Errorf("Failed to start frontend: %v", err)
		return nil, err
	}

	url := healthURL(port, l.config.Frontend.HealthPath)
	l.console.Infof("Waiting for frontend at %s...", url)
	healthy, attempts := monitoring.WaitHealthy(ctx, monitoring.NewHTTPProbe(monitoring.HTTPCheckConfig{
		URL:     url,
		Timeout: l.config.Health.CheckTimeout,
	}), l.waitOptions(), l.logger)
	if ctx.Err() != nil {
		return frontend, ctx.Err()
	}
	if !healthy {
		l.console.Warningf("Frontend not confirmed ready after %d attempts; it may still be compiling", attempts)
		l.dumpLogTail("frontend", frontend.LogPath())
		frontend.MarkFailedHealthcheck()
		return frontend, nil
	}

	frontend.MarkHealthy()
	l.console.Successf("Frontend is ready at http://localhost:%d", port)
	return frontend, nil
}

// ensureFrontendDependencies runs the install command when node_modules is
// missing. An install failure is fatal; npm start cannot succeed without it.
func (l *Launcher) ensureFrontendDependencies(ctx context.Context) error {
	nodeModules := filepath.Join(l.frontendDir(), "node_modules")
	if info, err := os.Stat(nodeModules); err == nil && info.IsDir() {
		l.logger.Debugf("Frontend dependencies present: %s", nodeModules)
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	l.console.Infof("Installing frontend dependencies (first run)...")
	install := process.RunCommand(l.config.Frontend.InstallCommand, l.frontendDir(), nil)
	if !install.Succeeded {
		l.console.Errorf("Frontend dependency install failed")
		l.dumpCommandOutput(install)
		return errors.NewBuildFailureError("frontend dependency install failed", nil).
			WithContext("command", l.config.Frontend.InstallCommand)
	}

	l.console.Successf("Frontend dependencies installed")
	return nil
}

// checkProjectLayout verifies the backend and frontend directories exist
// under the project root before any work starts.
func (l *Launcher) checkProjectLayout() error {
	for _, dir := range []string{l.backendDir(), l.frontendDir()} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			l.console.Errorf("Project directory not found: %s", dir)
			l.console.Plainf("  Pass --root pointing at the project checkout")
			return errors.NewValidationError("project directory not found", err).WithContext("dir", dir)
		}
	}
	return nil
}

// checkDatastore probes the MongoDB port. The launcher never manages the
// datastore; a missing one is surfaced with start hints, and when gate is
// set the operator decides whether to continue without it.
func (l *Launcher) checkDatastore(gate bool) error {
	port := l.config.Datastore.Port
	l.console.Infof("Checking MongoDB on port %d...", port)
	if l.probe.IsPortOpen(port) {
		l.console.Successf("MongoDB is running on port %d", port)
		return nil
	}

	l.console.Warningf("MongoDB does not appear to be running on port %d", port)
	l.console.Plainf("  Start it with one of:")
	l.console.Plainf("    docker run -d -p %d:%d --name blog-mongo mongo:7", port, port)
	l.console.Plainf("    sudo systemctl start mongod")

	if gate && !l.assumeYes {
		if !l.console.Gate("Continue without MongoDB? [Y/n] ") {
			l.console.Infof("Aborted")
			return errors.NewCancelledError("launch aborted: MongoDB is not running", nil).
				WithContext("port", port)
		}
	}
	return nil
}

// dumpLogTail frames the last lines of a service's startup log so the
// operator sees why it failed without hunting for the file.
func (l *Launcher) dumpLogTail(name, logPath string) {
	lines, err := supervisor.TailLines(logPath, l.config.Health.TailLines)
	if err != nil {
		l.console.Warningf("Could not read %s log %s: %v", name, logPath, err)
		return
	}
	if len(lines) == 0 {
		l.console.Infof("No output captured yet in %s", logPath)
		return
	}

	l.console.Infof("Last %d lines of %s:", len(lines), logPath)
	l.console.Rule()
	for _, line := range lines {
		l.console.Plainf("%s", line)
	}
	l.console.Rule()
}

// dumpCommandOutput surfaces a failed command's captured streams verbatim.
func (l *Launcher) dumpCommandOutput(result process.CommandResult) {
	l.console.Rule()
	if out := strings.TrimRight(result.Stdout, "\n"); out != "" {
		l.console.Plainf("%s", out)
	}
	if errOut := strings.TrimRight(result.Stderr, "\n"); errOut != "" {
		l.console.Plainf("%s", errOut)
	}
	l.console.Rule()
}

func (l *Launcher) printSummary(backendPort, frontendPort int, frontendConfirmed bool) {
	l.console.Blank()
	l.console.Rule()
	l.console.Successf("Blog Platform is running")
	l.console.Plainf("  Frontend:  http://localhost:%d", frontendPort)
	l.console.Plainf("  Backend:   http://localhost:%d", backendPort)
	l.console.Plainf("  API:       %s", healthURL(backendPort, l.config.Backend.HealthPath))
	if !frontendConfirmed {
		l.console.Plainf("  (frontend readiness not confirmed; check %s)",
			filepath.Join(l.frontendDir(), l.config.Frontend.LogFileName))
	}
	l.console.Plainf("  Logs:      %s, %s",
		filepath.Join(l.backendDir(), l.config.Backend.LogFileName),
		filepath.Join(l.frontendDir(), l.config.Frontend.LogFileName))
	l.console.Rule()
	l.console.Infof("Press Ctrl+C to stop all services")
}

// shutdown tears down every supervised service exactly once, in reverse
// start order. Safe to call from any failure path.
func (l *Launcher) shutdown() {
	l.shutdownOnce.Do(func() {
		l.console.Blank()
		l.console.Infof("Stopping services...")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := l.supervisor.StopAll(ctx); err != nil {
			l.console.Warningf("Some services did not stop cleanly: %v", err)
			return
		}
		l.console.Successf("All services stopped")
	})
}

// mavenize rewrites a command's leading "mvn" token to the resolved Maven
// invocation, so configs stay written in terms of plain mvn while the
// wrapper is used when that is all the host has.
func mavenize(command, maven string) string {
	if maven == "mvn" {
		return command
	}
	if command == "mvn" {
		return maven
	}
	if strings.HasPrefix(command, "mvn ") {
		return maven + strings.TrimPrefix(command, "mvn")
	}
	return command
}

// frontendEnvironment wires the dev server to its port and to the backend
// API the generated bundle should call.
func frontendEnvironment(port, backendPort int) map[string]string {
	return map[string]string{
		"PORT":              strconv.Itoa(port),
		"REACT_APP_API_URL": fmt.Sprintf("http://localhost:%d/api", backendPort),
	}
}
