package supervisor

import (
	"context"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/blog-platform/blogctl/pkg/errors"
	"github.com/blog-platform/blogctl/pkg/logging"
	"github.com/blog-platform/blogctl/pkg/process"
	"github.com/blog-platform/blogctl/pkg/processstate"
)

const (
	// DefaultGracePeriod is how long a service gets to exit after the
	// termination signal before it is force killed.
	DefaultGracePeriod = 5 * time.Second

	// forcedWaitTimeout bounds the reap after a force kill.
	forcedWaitTimeout = 5 * time.Second
)

// ServiceSpec describes one service to launch under supervision.
type ServiceSpec struct {
	Name             string
	Command          string
	WorkingDirectory string
	Environment      map[string]string
	LogPath          string
}

// ManagedProcess is one live supervised service. The supervisor owns the
// OS process handle and the log file handle for the process's lifetime;
// both are released on every exit path.
type ManagedProcess struct {
	spec    ServiceSpec
	cmd     *exec.Cmd
	logFile *os.File
	done    chan error
	state   ServiceState
	mutex   sync.Mutex
}

func (mp *ManagedProcess) Name() string {
	return mp.spec.Name
}

func (mp *ManagedProcess) LogPath() string {
	return mp.spec.LogPath
}

func (mp *ManagedProcess) PID() int {
	mp.mutex.Lock()
	defer mp.mutex.Unlock()
	if mp.cmd == nil || mp.cmd.Process == nil {
		return 0
	}
	return mp.cmd.Process.Pid
}

func (mp *ManagedProcess) State() ServiceState {
	mp.mutex.Lock()
	defer mp.mutex.Unlock()
	return mp.state
}

// MarkHealthy records a successful readiness check.
func (mp *ManagedProcess) MarkHealthy() {
	mp.setStateIf(StateRunning, StateHealthy)
}

// MarkFailedHealthcheck records an exhausted readiness budget. The
// process keeps running; only its reported state changes.
func (mp *ManagedProcess) MarkFailedHealthcheck() {
	mp.setStateIf(StateRunning, StateFailedHealthcheck)
}

func (mp *ManagedProcess) setStateIf(from, to ServiceState) {
	mp.mutex.Lock()
	defer mp.mutex.Unlock()
	if mp.state == from {
		mp.state = to
	}
}

// Supervisor starts services, tracks them in start order, and tears them
// down in reverse order with graceful-to-forced escalation.
type Supervisor struct {
	gracePeriod time.Duration
	logger      logging.Logger

	mutex     sync.Mutex
	processes []*ManagedProcess
}

func NewSupervisor(gracePeriod time.Duration, logger logging.Logger) *Supervisor {
	if gracePeriod <= 0 {
		gracePeriod = DefaultGracePeriod
	}
	return &Supervisor{
		gracePeriod: gracePeriod,
		logger:      logger,
	}
}

// Start opens the service's log file (truncating any previous run), spawns
// the command with both output streams redirected into it, and registers
// the process for shutdown. It does not wait for the service to become
// ready; readiness is the orchestrator's concern.
func (s *Supervisor) Start(spec ServiceSpec) (*ManagedProcess, error) {
	if spec.Name == "" {
		return nil, errors.NewValidationError("service name cannot be empty", nil)
	}
	if spec.LogPath == "" {
		return nil, errors.NewValidationError("log path cannot be empty", nil).WithContext("service", spec.Name)
	}

	s.logger.Infof("Starting service, name: %s, command: %q", spec.Name, spec.Command)

	mp := &ManagedProcess{
		spec:  spec,
		state: StateStarting,
	}

	logFile, err := os.Create(spec.LogPath)
	if err != nil {
		mp.state = StateNotStarted
		return nil, errors.NewIOError("failed to open service log file", err).
			WithContext("service", spec.Name).
			WithContext("log_path", spec.LogPath)
	}
	mp.logFile = logFile

	cmd, err := process.Spawn(process.ExecutionConfig{
		Command:          spec.Command,
		WorkingDirectory: spec.WorkingDirectory,
		Environment:      spec.Environment,
	}, logFile, s.logger)
	if err != nil {
		logFile.Close()
		mp.logFile = nil
		mp.state = StateNotStarted
		return nil, err
	}

	mp.cmd = cmd

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()
	mp.done = done
	mp.state = StateRunning

	s.mutex.Lock()
	s.processes = append(s.processes, mp)
	s.mutex.Unlock()

	s.logger.Infof("Service running, name: %s, PID: %d, log: %s", spec.Name, cmd.Process.Pid, spec.LogPath)

	return mp, nil
}

// Stop terminates a managed process: the log handle is closed first
// (best-effort), then the process group gets the termination signal, and
// after the grace period a force kill. Calling Stop on a nil or
// already-stopped process is a no-op.
func (s *Supervisor) Stop(ctx context.Context, mp *ManagedProcess) error {
	if mp == nil {
		return nil
	}

	mp.mutex.Lock()
	if !stoppable(mp.state) {
		mp.mutex.Unlock()
		s.logger.Debugf("Service already stopped, name: %s, state: %s", mp.spec.Name, mp.state)
		return nil
	}
	mp.state = StateStopping
	cmd := mp.cmd
	done := mp.done
	logFile := mp.logFile
	mp.logFile = nil
	mp.mutex.Unlock()

	s.logger.Infof("Stopping service, name: %s", mp.spec.Name)

	if logFile != nil {
		// The log handle must be released on every exit path; a close error
		// here must not block termination.
		_ = logFile.Close()
	}

	if cmd != nil && cmd.Process != nil {
		if err := s.terminate(ctx, mp.spec.Name, cmd.Process.Pid, done); err != nil {
			// The process may still be alive; the state stays Stopping so a
			// retry does the work again instead of short-circuiting.
			return err
		}
	}

	mp.mutex.Lock()
	mp.state = StateStopped
	mp.mutex.Unlock()

	s.logger.Infof("Service stopped, name: %s", mp.spec.Name)
	return nil
}

// terminate escalates from the graceful termination signal to a forced
// kill when the process does not exit within the grace period.
func (s *Supervisor) terminate(ctx context.Context, name string, pid int, done chan error) error {
	if err := process.SendTerminationSignal(pid); err != nil {
		if running, stateErr := processstate.IsProcessRunning(pid); stateErr == nil && !running {
			s.logger.Debugf("Termination signal not delivered, process already gone, name: %s, PID: %d", name, pid)
		} else {
			s.logger.Warnf("Failed to send termination signal, name: %s, PID: %d, error: %v", name, pid, err)
		}
	}

	select {
	case <-done:
		s.logger.Infof("Service terminated gracefully, name: %s, PID: %d", name, pid)
		return nil
	case <-time.After(s.gracePeriod):
		s.logger.Warnf("Service did not exit within %v, force killing, name: %s, PID: %d", s.gracePeriod, name, pid)
	case <-ctx.Done():
		s.logger.Warnf("Shutdown cancelled mid-grace, force killing, name: %s, PID: %d", name, pid)
	}

	if err := process.ForceKill(pid); err != nil {
		return errors.NewProcessError("failed to kill process", err).
			WithContext("service", name).
			WithContext("pid", pid)
	}

	select {
	case <-done:
		s.logger.Infof("Service force killed, name: %s, PID: %d", name, pid)
		return nil
	case <-time.After(forcedWaitTimeout):
		return errors.NewTimeoutError("process did not exit after force kill", nil).
			WithContext("service", name).
			WithContext("pid", pid)
	}
}

// StopAll stops every tracked process in reverse start order. Failures are
// independent: one service refusing to die must not keep the others
// running. A second invocation finds only stopped entries and does nothing.
func (s *Supervisor) StopAll(ctx context.Context) error {
	s.mutex.Lock()
	tracked := make([]*ManagedProcess, len(s.processes))
	copy(tracked, s.processes)
	s.mutex.Unlock()

	collection := errors.NewErrorCollection()
	for i := len(tracked) - 1; i >= 0; i-- {
		if err := s.Stop(ctx, tracked[i]); err != nil {
			s.logger.Errorf("Failed to stop service, name: %s, error: %v", tracked[i].Name(), err)
			collection.Add(err)
		}
	}

	return collection.ToError()
}

// Tracked returns the managed processes in start order.
func (s *Supervisor) Tracked() []*ManagedProcess {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	tracked := make([]*ManagedProcess, len(s.processes))
	copy(tracked, s.processes)
	return tracked
}
