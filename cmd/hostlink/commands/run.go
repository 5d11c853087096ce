package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Ratchanon22/hostlink/pkg/audit"
	"github.com/Ratchanon22/hostlink/pkg/config"
	"github.com/Ratchanon22/hostlink/pkg/connection"
	"github.com/Ratchanon22/hostlink/pkg/dio"
	"github.com/Ratchanon22/hostlink/pkg/discovery"
	"github.com/Ratchanon22/hostlink/pkg/log"
	"github.com/Ratchanon22/hostlink/pkg/metrics"
	"github.com/Ratchanon22/hostlink/pkg/transport"
)

// resolveDevice looks up an mDNS service name. Replaced in tests.
var resolveDevice = discovery.Resolve

// LoadRunConfig loads the config file named by --config and applies the
// flags the user set explicitly.
func LoadRunConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	if flags.Changed("address") {
		cfg.DeviceConnection.IpAddress, _ = flags.GetString("address")
	}
	if flags.Changed("port") {
		cfg.DeviceConnection.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("service") {
		cfg.DeviceConnection.ServiceName, _ = flags.GetString("service")
	}
	if flags.Changed("simulate-io") {
		cfg.IOSettings.UseMockIO, _ = flags.GetBool("simulate-io")
	}
	if flags.Changed("device-port") {
		cfg.IOSettings.DevicePort, _ = flags.GetString("device-port")
		if !flags.Changed("simulate-io") {
			cfg.IOSettings.UseMockIO = false
		}
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-json") {
		cfg.Logging.JSON, _ = flags.GetBool("log-json")
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Address, _ = flags.GetString("metrics-addr")
	}
	if flags.Changed("audit-file") {
		cfg.Audit.Path, _ = flags.GetString("audit-file")
	}
	if flags.Changed("audit-echo") {
		cfg.Audit.Echo, _ = flags.GetBool("audit-echo")
	}
	if flags.Changed("event-log") {
		cfg.EventLog.Path, _ = flags.GetString("event-log")
	}
	return cfg, nil
}

// NewRunCmd returns the run command.
func NewRunCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Supervise the device link",
		Long: `Connect to the device, exchange heartbeats and drive the fail-safe
output: asserted while the link is down, cleared while it is up.

Every disconnect is appended to the audit file with its classified reason.
Stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadRunConfig(cmd)
			if err != nil {
				return err
			}
			return RunSupervisor(cmd.Context(), cfg, version, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringP("config", "c", config.DefaultPath, "Configuration file (YAML or JSON)")
	cmd.Flags().String("address", "", "Device IP address")
	cmd.Flags().Int("port", transport.DefaultPort, "Device TCP port")
	cmd.Flags().String("service", "", "Resolve the device by mDNS instance name")
	cmd.Flags().Bool("simulate-io", true, "Use the in-memory I/O backend")
	cmd.Flags().String("device-port", "", "Serial port of the I/O board")
	cmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")
	cmd.Flags().Bool("log-json", false, "Log as JSON lines")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics and health on this address")
	cmd.Flags().String("audit-file", audit.DefaultPath, "Disconnect audit file")
	cmd.Flags().Bool("audit-echo", false, "Also print audit lines to the console")
	cmd.Flags().String("event-log", "", "Capture link events to this CBOR file")

	return cmd
}

// RunSupervisor runs the supervisor described by cfg until ctx is done.
func RunSupervisor(ctx context.Context, cfg config.Config, version string, out io.Writer) error {
	log.Init(log.Config{
		Level:      log.ParseLevel(cfg.Logging.Level),
		JSONOutput: cfg.Logging.JSON,
		Output:     out,
	})
	logger := log.WithComponent("host")

	if cfg.Source == "" {
		logger.Warn().Msg("no configuration file found, using defaults")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ep, err := deviceEndpoint(ctx, cfg, logger)
	if err != nil {
		return err
	}

	backend, err := dio.New(cfg.DIOSettings(), log.WithComponent("dio"))
	if err != nil {
		return fmt.Errorf("failed to open I/O backend: %w", err)
	}
	defer backend.Close()
	logger.Info().Str("io", backend.Name()).Str("endpoint", ep.String()).Msg("starting")

	metricsOn := cfg.Metrics.Address != ""
	if metricsOn {
		metrics.SetVersion(version)
		metrics.UpdateComponent(metrics.ComponentIO, true, backend.Name())
		metrics.UpdateComponent(metrics.ComponentLink, false, connection.StateAttemptingConnect.String())
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Address, log.WithComponent("metrics")); err != nil {
				logger.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	var auditWriter audit.Writer = audit.NewFileWriter(cfg.Audit.Path)
	if cfg.Audit.Echo {
		auditWriter = audit.MultiWriter{auditWriter, audit.NewStreamWriter(out)}
	}

	opts := []connection.Option{
		connection.WithConfig(cfg.SupervisorConfig()),
		connection.WithLogger(log.WithComponent("supervisor")),
		connection.WithAuditWriter(auditWriter),
		connection.WithMetrics(metricsOn),
		connection.OnStateChange(func(_, newState connection.State) {
			if metricsOn {
				metrics.UpdateComponent(metrics.ComponentLink, newState == connection.StateConnected, newState.String())
			}
		}),
	}

	events, closeEvents, err := eventLogger(cfg, log.Global)
	if err != nil {
		return err
	}
	defer closeEvents()
	if events != nil {
		opts = append(opts, connection.WithEventLogger(events))
	}

	err = connection.Run(ctx, ep, backend, opts...)
	logger.Info().Msg("shutting down gracefully")
	return err
}

// deviceEndpoint builds the endpoint from the configured address, or
// resolves the configured service name when no address is set.
func deviceEndpoint(ctx context.Context, cfg config.Config, logger zerolog.Logger) (transport.Endpoint, error) {
	if cfg.DeviceConnection.IpAddress == "" {
		name := cfg.DeviceConnection.ServiceName
		logger.Info().Str("service", name).Msg("resolving device over mDNS")
		ep, err := resolveDevice(ctx, name)
		if err != nil {
			return transport.Endpoint{}, fmt.Errorf("resolve %s: %w", name, err)
		}
		return ep, nil
	}

	ep, fallback := cfg.Endpoint()
	if fallback {
		logger.Warn().
			Int("configured", cfg.DeviceConnection.Port).
			Int("port", ep.Port).
			Msg("invalid port number in config, using default port")
	}
	return ep, nil
}

// eventLogger builds the link-event sink: a capture file when configured,
// mirrored to the console at debug level.
func eventLogger(cfg config.Config, console zerolog.Logger) (log.Logger, func(), error) {
	var loggers []log.Logger
	closeFn := func() {}

	if cfg.EventLog.Path != "" {
		fl, err := log.NewFileLogger(cfg.EventLog.Path)
		if err != nil {
			return nil, closeFn, err
		}
		loggers = append(loggers, fl)
		closeFn = func() { _ = fl.Close() }
	}
	if console.GetLevel() <= zerolog.DebugLevel {
		loggers = append(loggers, log.NewZerologAdapter(console))
	}

	if len(loggers) == 0 {
		return nil, closeFn, nil
	}
	return log.NewMultiLogger(loggers...), closeFn, nil
}
