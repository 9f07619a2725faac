package supervisor

// ServiceState tracks a managed service through its lifecycle:
//
//	NotStarted -> Starting -> Running -> (Healthy | FailedHealthcheck) -> Stopping -> Stopped
type ServiceState string

const (
	StateNotStarted        ServiceState = "not_started"
	StateStarting          ServiceState = "starting"
	StateRunning           ServiceState = "running"
	StateHealthy           ServiceState = "healthy"
	StateFailedHealthcheck ServiceState = "failed_healthcheck"
	StateStopping          ServiceState = "stopping"
	StateStopped           ServiceState = "stopped"
)

// stoppable reports whether a stop request should do any work in the
// given state. Stopping an already-stopped or never-started service is a
// no-op, which makes shutdown safe to invoke twice. Stopping itself stays
// stoppable so a teardown that failed mid-way can be retried.
func stoppable(state ServiceState) bool {
	switch state {
	case StateRunning, StateHealthy, StateFailedHealthcheck, StateStopping:
		return true
	default:
		return false
	}
}
