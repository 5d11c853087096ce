/*
Package metrics exposes Prometheus metrics and health endpoints for the
link supervisor.

Metrics are package-level collectors registered with the default registry
at init, so any package can record without plumbing a registry through.

# Link Metrics

	hostlink_connection_state                 gauge, 1 while connected
	hostlink_connect_attempts_total           counter
	hostlink_disconnects_total{reason}        counter per DisconnectReason
	hostlink_heartbeats_total{result}         counter per transport status
	hostlink_heartbeat_duration_seconds       histogram of cycle time
	hostlink_failsafe_asserted                gauge, 1 while asserted
	hostlink_failsafe_commands_total{state,result}
	                                          counter per commanded level

# Health

The "link" component reports whether the supervisor holds a connection and
the "io" component whether the last capability call succeeded. /ready
requires both to be healthy; /live always answers while the process runs.

# Serving

	go metrics.Serve(ctx, ":9102", logger)

serves /metrics, /health, /ready and /live until ctx is cancelled.
*/
package metrics
