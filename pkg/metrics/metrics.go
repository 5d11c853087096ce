package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Link metrics
	ConnectionState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hostlink_connection_state",
			Help: "Whether the supervisor is connected to the device (1 = connected, 0 = attempting)",
		},
	)

	ConnectAttemptsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hostlink_connect_attempts_total",
			Help: "Total number of connection attempts",
		},
	)

	DisconnectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostlink_disconnects_total",
			Help: "Total number of disconnect events by classified reason",
		},
		[]string{"reason"},
	)

	// Heartbeat metrics
	HeartbeatsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostlink_heartbeats_total",
			Help: "Total number of heartbeat cycles by result",
		},
		[]string{"result"},
	)

	HeartbeatDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hostlink_heartbeat_duration_seconds",
			Help:    "Heartbeat write+read cycle duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Fail-safe metrics
	FailsafeAsserted = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hostlink_failsafe_asserted",
			Help: "Whether the fail-safe output is asserted (1 = asserted, 0 = cleared)",
		},
	)

	FailsafeCommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostlink_failsafe_commands_total",
			Help: "Total number of fail-safe output commands by level and result",
		},
		[]string{"state", "result"},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(ConnectionState)
	prometheus.MustRegister(ConnectAttemptsTotal)
	prometheus.MustRegister(DisconnectsTotal)
	prometheus.MustRegister(HeartbeatsTotal)
	prometheus.MustRegister(HeartbeatDuration)
	prometheus.MustRegister(FailsafeAsserted)
	prometheus.MustRegister(FailsafeCommandsTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// SetConnected updates the connection gauge and the "link" health component.
func SetConnected(connected bool, endpoint string) {
	if connected {
		ConnectionState.Set(1)
		UpdateComponent(ComponentLink, true, "connected to "+endpoint)
		return
	}
	ConnectionState.Set(0)
	UpdateComponent(ComponentLink, false, "attempting connection to "+endpoint)
}

// RecordDisconnect counts one classified disconnect.
func RecordDisconnect(reason string) {
	DisconnectsTotal.WithLabelValues(reason).Inc()
}

// RecordHeartbeat counts one heartbeat cycle and observes its duration.
func RecordHeartbeat(result string, d time.Duration) {
	HeartbeatsTotal.WithLabelValues(result).Inc()
	HeartbeatDuration.Observe(d.Seconds())
}

// RecordFailsafe counts one fail-safe command and updates the asserted
// gauge and the "io" health component.
func RecordFailsafe(asserted bool, err error) {
	state := "cleared"
	if asserted {
		state = "asserted"
		FailsafeAsserted.Set(1)
	} else {
		FailsafeAsserted.Set(0)
	}

	result := "ok"
	if err != nil {
		result = "error"
		UpdateComponent(ComponentIO, false, err.Error())
	} else {
		UpdateComponent(ComponentIO, true, "")
	}
	FailsafeCommandsTotal.WithLabelValues(state, result).Inc()
}

// Timer measures elapsed time for histogram observations.
type Timer struct {
	start time.Time
}

// NewTimer starts a Timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration records the elapsed time on h.
func (t *Timer) ObserveDuration(h prometheus.Observer) {
	h.Observe(t.Duration().Seconds())
}
