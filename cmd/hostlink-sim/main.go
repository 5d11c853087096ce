// Command hostlink-sim simulates the device end of the heartbeat link: it
// accepts connections and answers every message with an acknowledgment.
//
// Usage:
//
//	hostlink-sim [flags]
//
// Examples:
//
//	# Listen as configured in appsettings.json
//	hostlink-sim
//
//	# Listen on a fixed port and advertise over mDNS
//	hostlink-sim --port 5000 --advertise bench-device
//
//	# Drive link failures by hand
//	hostlink-sim --interactive
package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Ratchanon22/hostlink/cmd/hostlink-sim/interactive"
	"github.com/Ratchanon22/hostlink/pkg/config"
	"github.com/Ratchanon22/hostlink/pkg/discovery"
	"github.com/Ratchanon22/hostlink/pkg/log"
	"github.com/Ratchanon22/hostlink/pkg/transport"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// simOptions holds the flags that are not part of the config file.
type simOptions struct {
	Advertise   string
	Interactive bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts simOptions
	cmd := &cobra.Command{
		Use:   "hostlink-sim",
		Short: "hostlink-sim - heartbeat device simulator",
		Long: `hostlink-sim listens for the supervisor and answers every message with
a fixed acknowledgment. In interactive mode the link can be muted, closed
or reset by hand to exercise each disconnect reason.`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSimConfig(cmd)
			if err != nil {
				return err
			}
			return runSimulator(cmd.Context(), cfg, opts, cmd.OutOrStdout())
		},
	}
	cmd.SetVersionTemplate(fmt.Sprintf(
		"hostlink-sim version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	cmd.Flags().StringP("config", "c", config.DefaultPath, "Configuration file (YAML or JSON)")
	cmd.Flags().String("address", "", "IP address to listen on (default: all interfaces)")
	cmd.Flags().Int("port", transport.DefaultPort, "TCP port to listen on")
	cmd.Flags().String("ack", transport.DefaultAck, "Reply sent for every message")
	cmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")
	cmd.Flags().Bool("log-json", false, "Log as JSON lines")
	cmd.Flags().String("event-log", "", "Capture link events to this CBOR file")
	cmd.Flags().StringVar(&opts.Advertise, "advertise", "", "Advertise over mDNS under this instance name")
	cmd.Flags().BoolVarP(&opts.Interactive, "interactive", "i", false, "Start the interactive console")
	return cmd
}

// loadSimConfig loads the config file named by --config and applies the
// flags the user set explicitly.
func loadSimConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	if flags.Changed("address") {
		cfg.SimulatorConnection.IpAddress, _ = flags.GetString("address")
	}
	if flags.Changed("port") {
		cfg.SimulatorConnection.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("ack") {
		cfg.SimulatorConnection.Ack, _ = flags.GetString("ack")
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-json") {
		cfg.Logging.JSON, _ = flags.GetBool("log-json")
	}
	if flags.Changed("event-log") {
		cfg.EventLog.Path, _ = flags.GetString("event-log")
	}
	return cfg, nil
}

func runSimulator(ctx context.Context, cfg config.Config, opts simOptions, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var console *interactive.Console
	if opts.Interactive {
		var err error
		console, err = interactive.New()
		if err != nil {
			return err
		}
		out = console.Stdout()
	}

	log.Init(log.Config{
		Level:      log.ParseLevel(cfg.Logging.Level),
		JSONOutput: cfg.Logging.JSON,
		Output:     out,
	})
	logger := log.WithComponent("sim")

	ip, port := cfg.ListenAddress()
	rcfg := transport.ResponderConfig{
		Address:    transport.ResolveListenAddress(ip, port, logger),
		Ack:        cfg.SimulatorConnection.Ack,
		BufferSize: cfg.Supervisor.BufferSize,
		Logger:     logger,
		OnConnect: func(c *transport.ResponderConn) {
			logger.Info().Str("conn_id", c.ID()).Str("remote", c.RemoteAddr().String()).Msg("client connected")
		},
		OnDisconnect: func(c *transport.ResponderConn) {
			logger.Info().Str("conn_id", c.ID()).Int64("messages", c.Messages()).Msg("client disconnected")
		},
	}
	if cfg.EventLog.Path != "" {
		fl, err := log.NewFileLogger(cfg.EventLog.Path)
		if err != nil {
			return err
		}
		defer fl.Close()
		rcfg.EventLogger = fl
	}

	responder := transport.NewResponder(rcfg)
	if err := responder.Start(ctx); err != nil {
		return err
	}
	defer responder.Stop()

	if opts.Advertise != "" {
		adv, err := discovery.Advertise(opts.Advertise, responder.Addr().(*net.TCPAddr).Port, discovery.TXTRecordMap{
			discovery.TXTKeyAck: responder.Ack(),
		})
		if err != nil {
			return fmt.Errorf("advertise: %w", err)
		}
		defer adv.StopAll()
	}

	if console != nil {
		console.Attach(responder)
		go console.Run(ctx, cancel)
	}

	<-ctx.Done()
	logger.Info().Msg("shutting down gracefully")
	return nil
}
