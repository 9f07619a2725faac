package launcher

import (
	"context"

	"github.com/blog-platform/blogctl/pkg/errors"
	"github.com/blog-platform/blogctl/pkg/process"
	"github.com/blog-platform/blogctl/pkg/toolcheck"
)

// Setup verifies the toolchain, previews port allocation, and performs the
// first full build of both services. It streams build output instead of
// capturing it; setup is interactive by nature and the operator wants to
// watch Maven and npm work.
func (l *Launcher) Setup(ctx context.Context) error {
	l.console.Headerf("Blog Platform Setup")
	l.console.Blank()

	if err := l.checkProjectLayout(); err != nil {
		return err
	}

	l.console.Infof("Checking required tools...")
	failures := errors.NewErrorCollection()
	for _, req := range toolcheck.Requirements(l.backendDir()) {
		detail, err := req.Check()
		if err != nil {
			l.console.Errorf("%s: %v", req.Name, err)
			l.console.Plainf("  %s", req.Install)
			failures.Add(err)
			continue
		}
		l.console.Successf("%s: %s", req.Name, detail)
	}
	if failures.HasErrors() {
		l.console.Blank()
		l.console.Errorf("Install the missing tools and re-run setup")
		return errors.NewToolMissingError("toolchain requirements not met", failures.ToError())
	}

	l.console.Blank()
	l.console.Infof("Previewing port allocation...")
	if port, err := l.probe.FindFreePort(l.config.Backend.PortBase, l.config.Backend.PortAttempts); err == nil {
		l.console.Successf("Backend will use port %d", port)
	} else {
		l.console.Warningf("No free backend port in range %d-%d; free one before starting",
			l.config.Backend.PortBase, l.config.Backend.PortBase+l.config.Backend.PortAttempts-1)
	}
	if port, err := l.probe.FindFreePort(l.config.Frontend.PortBase, l.config.Frontend.PortAttempts); err == nil {
		l.console.Successf("Frontend will use port %d", port)
	} else {
		l.console.Warningf("No free frontend port in range %d-%d; free one before starting",
			l.config.Frontend.PortBase, l.config.Frontend.PortBase+l.config.Frontend.PortAttempts-1)
	}

	l.console.Blank()
	if err := l.checkDatastore(false); err != nil {
		return err
	}

	maven, err := toolcheck.ResolveMavenCommand(l.backendDir())
	if err != nil {
		return err
	}

	l.console.Blank()
	l.console.Infof("Building backend (%s)...", l.config.Backend.BuildCommand)
	l.console.Rule()
	build := process.RunCommandStreaming(mavenize(l.config.Backend.BuildCommand, maven), l.backendDir(), nil)
	l.console.Rule()
	if !build.Succeeded {
		l.console.Errorf("Backend build failed")
		return errors.NewBuildFailureError("backend build failed", nil).
			WithContext("command", l.config.Backend.BuildCommand)
	}
	l.console.Successf("Backend built")

	if ctx.Err() != nil {
		return errors.NewCancelledError("setup interrupted", ctx.Err())
	}

	l.console.Blank()
	l.console.Infof("Installing frontend dependencies (%s)...", l.config.Frontend.InstallCommand)
	l.console.Rule()
	install := process.RunCommandStreaming(l.config.Frontend.InstallCommand, l.frontendDir(), nil)
	l.console.Rule()
	if !install.Succeeded {
		l.console.Errorf("Frontend dependency install failed")
		return errors.NewBuildFailureError("frontend dependency install failed", nil).
			WithContext("command", l.config.Frontend.InstallCommand)
	}
	l.console.Successf("Frontend dependencies installed")

	l.console.Blank()
	l.console.Infof("Building frontend (%s)...", l.config.Frontend.BuildCommand)
	l.console.Rule()
	frontBuild := process.RunCommandStreaming(l.config.Frontend.BuildCommand, l.frontendDir(), nil)
	l.console.Rule()
	if !frontBuild.Succeeded {
		l.console.Errorf("Frontend build failed")
		return errors.NewBuildFailureError("frontend build failed", nil).
			WithContext("command", l.config.Frontend.BuildCommand)
	}
	l.console.Successf("Frontend built")

	l.console.Blank()
	l.console.Rule()
	l.console.Successf("Setup complete")
	l.console.Plainf("  Next: blogctl start --root %s", l.root)
	l.console.Rule()

	return nil
}
