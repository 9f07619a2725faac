package launcher

import (
	"context"
	"strconv"

	"github.com/blog-platform/blogctl/pkg/errors"
	"github.com/blog-platform/blogctl/pkg/process"
	"github.com/blog-platform/blogctl/pkg/toolcheck"
)

// StartBackend compiles and runs the backend alone, in the foreground,
// with its output on the launcher's own stdio. Useful when iterating on
// the API with the frontend served elsewhere. Ctrl+C reaches the child
// directly; the call returns when the service exits.
func (l *Launcher) StartBackend(ctx context.Context) error {
	l.console.Headerf("Starting Backend Only")
	l.console.Blank()

	if err := l.checkProjectLayout(); err != nil {
		return err
	}

	port, err := l.probe.FindFreePort(l.config.Backend.PortBase, l.config.Backend.PortAttempts)
	if err != nil {
		l.console.Errorf("No available port for the backend in range %d-%d",
			l.config.Backend.PortBase, l.config.Backend.PortBase+l.config.Backend.PortAttempts-1)
		return err
	}
	l.console.Successf("Backend will use port %d", port)

	if err := l.checkDatastore(true); err != nil {
		return err
	}

	maven, err := toolcheck.ResolveMavenCommand(l.backendDir())
	if err != nil {
		l.console.Errorf("Neither Maven nor the mvnw wrapper is available")
		return err
	}

	l.console.Infof("Compiling backend...")
	build := process.RunCommand(mavenize(l.config.Backend.BuildCommand, maven), l.backendDir(), nil)
	if !build.Succeeded {
		l.console.Errorf("Backend compilation failed")
		l.dumpCommandOutput(build)
		return errors.NewBuildFailureError("backend compilation failed", nil).
			WithContext("command", l.config.Backend.BuildCommand)
	}
	l.console.Successf("Backend compiled")

	if ctx.Err() != nil {
		return nil
	}

	l.console.Infof("Running backend on port %d (Ctrl+C to stop)...", port)
	result := process.RunCommandStreaming(mavenize(l.config.Backend.RunCommand, maven), l.backendDir(),
		map[string]string{"SERVER_PORT": strconv.Itoa(port)})
	if !result.Succeeded && ctx.Err() == nil {
		return errors.NewProcessError("backend exited with an error", nil).
			WithContext("command", l.config.Backend.RunCommand)
	}
	return nil
}

// StartFrontend runs the frontend dev server alone, in the foreground.
// The API URL still points at the backend port base, so a backend started
// separately on its default port is picked up.
func (l *Launcher) StartFrontend(ctx context.Context) error {
	l.console.Headerf("Starting Frontend Only")
	l.console.Blank()

	if err := l.checkProjectLayout(); err != nil {
		return err
	}

	port, err := l.probe.FindFreePort(l.config.Frontend.PortBase, l.config.Frontend.PortAttempts)
	if err != nil {
		l.console.Errorf("No available port for the frontend in range %d-%d",
			l.config.Frontend.PortBase, l.config.Frontend.PortBase+l.config.Frontend.PortAttempts-1)
		return err
	}
	l.console.Successf("Frontend will use port %d", port)

	if err := l.ensureFrontendDependencies(ctx); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return nil
	}

	l.console.Infof("Running frontend on port %d (Ctrl+C to stop)...", port)
	result := process.RunCommandStreaming(l.config.Frontend.RunCommand, l.frontendDir(),
		frontendEnvironment(port, l.config.Backend.PortBase))
	if !result.Succeeded && ctx.Err() == nil {
		return errors.NewProcessError("frontend exited with an error", nil).
			WithContext("command", l.config.Frontend.RunCommand)
	}
	return nil
}
