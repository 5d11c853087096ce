// Command hostlink supervises the TCP heartbeat link to a device and drives
// a fail-safe digital output from the link state.
//
// Usage:
//
//	hostlink run [flags]
//	hostlink audit [--reason R] [--since T] [file]
//	hostlink events view|stats|export <file.clog>
//
// Examples:
//
//	# Supervise the device from appsettings.json with simulated I/O
//	hostlink run
//
//	# Override the device address and serve metrics
//	hostlink run --address 192.168.1.50 --port 5000 --metrics-addr :9102
//
//	# Drive a real I/O board
//	hostlink run --device-port /dev/ttyUSB0
//
//	# Summarize the disconnects of the last day
//	hostlink audit --since 24h
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Ratchanon22/hostlink/cmd/hostlink/commands"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := commands.NewRootCmd(Version, Commit, BuildTime)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
