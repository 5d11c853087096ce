// Package log provides operational logging and link event capture for hostlink.
//
// Two kinds of logging live here and they serve different readers.
//
// # Operational Logging
//
// Human and machine readable process logs are written through zerolog.
// Init configures the global logger once at startup; components derive
// child loggers with WithComponent:
//
//	log.Init(log.Config{Level: log.InfoLevel})
//	logger := log.WithComponent("supervisor")
//	logger.Info().Str("endpoint", ep.String()).Msg("Connected to device")
//
// # Link Event Capture
//
// The Logger interface receives structured Events describing every heartbeat
// frame, connection state change and error seen by the supervisor. Captured
// events are a machine-readable trace for post-mortem analysis of a link:
//
//	// Console mirror at debug level
//	events := log.NewZerologAdapter(log.WithComponent("events"))
//
//	// Binary capture file
//	file, _ := log.NewFileLogger("/var/log/hostlink/link.clog")
//
//	// Both
//	events := log.NewMultiLogger(log.NewZerologAdapter(logger), file)
//
// # File Format
//
// Capture files are a stream of CBOR-encoded Events with integer keys
// (.clog extension). Use NewReader to iterate them, or the
// "hostlink events" command to view them.
package log
