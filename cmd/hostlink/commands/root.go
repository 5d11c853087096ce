package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ratchanon22/hostlink/pkg/audit"
)

// NewRootCmd assembles the hostlink command tree.
func NewRootCmd(version, commit, buildTime string) *cobra.Command {
	root := &cobra.Command{
		Use:   "hostlink",
		Short: "hostlink - device link supervisor",
		Long: `hostlink keeps a TCP heartbeat link to a device alive and drives a
fail-safe digital output from the link state.

The output on channel 0 is asserted whenever the link is lost and cleared
when it is re-established. Every disconnect is classified and appended to
an audit file.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(fmt.Sprintf(
		"hostlink version %s\nCommit: %s\nBuilt: %s\n",
		version, commit, buildTime,
	))

	root.AddCommand(NewRunCmd(version))
	root.AddCommand(NewAuditCmd())
	root.AddCommand(NewEventsCmd())
	return root
}

// NewAuditCmd returns the audit command.
func NewAuditCmd() *cobra.Command {
	var opts AuditOptions
	cmd := &cobra.Command{
		Use:   "audit [flags] [file]",
		Short: "Show recorded disconnects",
		Long: `Print the disconnect records of an audit file followed by a
per-reason summary. The file defaults to disconnect_log.txt.`,
		Example: `  hostlink audit
  hostlink audit --reason PortBlocked --since 24h disconnect_log.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := audit.DefaultPath
			if len(args) == 1 {
				path = args[0]
			}
			return RunAudit(path, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.Reason, "reason", "", "Only show this reason (DeviceClosed, PortBlocked, EthernetUnplugged, Timeout, Unknown)")
	cmd.Flags().StringVar(&opts.Since, "since", "", "Only show records since a duration ago, a timestamp or RFC3339 time")
	cmd.Flags().BoolVar(&opts.SummaryOnly, "summary", false, "Print only the summary")
	return cmd
}

// NewEventsCmd returns the events command group.
func NewEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect captured link events",
	}
	cmd.AddCommand(newEventsViewCmd(), newEventsStatsCmd(), newEventsExportCmd())
	return cmd
}

func newEventsViewCmd() *cobra.Command {
	var connID, direction, category string
	cmd := &cobra.Command{
		Use:   "view [flags] <file.clog>",
		Short: "View an event log in human-readable format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := ViewFilter{ConnID: connID}
			if direction != "" {
				d, err := ParseDirectionFlag(direction)
				if err != nil {
					return err
				}
				filter.Direction = &d
			}
			if category != "" {
				c, err := ParseCategoryFlag(category)
				if err != nil {
					return err
				}
				filter.Category = &c
			}
			return RunView(args[0], filter, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&connID, "conn-id", "", "Filter by connection ID")
	cmd.Flags().StringVar(&direction, "direction", "", "Filter by direction (in, out, local)")
	cmd.Flags().StringVar(&category, "category", "", "Filter by category (message, state, output, error)")
	return cmd
}

func newEventsStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <file.clog>",
		Short: "Show statistics about an event log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunStats(args[0], cmd.OutOrStdout())
		},
	}
}

func newEventsExportCmd() *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export [flags] <file.clog>",
		Short: "Export an event log to JSON lines or CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunExport(args[0], format, output, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&format, "format", "jsonl", "Output format (jsonl, csv)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}
