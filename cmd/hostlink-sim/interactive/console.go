// Package interactive provides the interactive console of the device
// simulator.
package interactive

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/chzyer/readline"

	"github.com/Ratchanon22/hostlink/pkg/transport"
)

// Controller is the part of the responder the console drives.
type Controller interface {
	Addr() net.Addr
	ConnectionCount() int
	Mode() transport.ResponderMode
	SetMode(mode transport.ResponderMode)
	Ack() string
	SetAck(ack string)
	CloseAll() int
	ResetAll() int
}

var _ Controller = (*transport.Responder)(nil)

// Console reads commands from the terminal and applies them to a
// responder.
type Console struct {
	responder Controller
	rl        *readline.Instance
}

// New creates a console. Attach a responder before calling Run.
func New() (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "sim> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Console{rl: rl}, nil
}

// Attach sets the responder the console controls.
func (c *Console) Attach(r Controller) {
	c.responder = r
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Run starts the interactive command loop. It calls cancel when the user
// quits or closes the input.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	out := c.rl.Stdout()
	c.printHelp(out)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(out, "Exiting...")
			cancel()
			return
		}

		if c.Execute(line, out) {
			fmt.Fprintln(out, "Exiting...")
			cancel()
			return
		}
	}
}

// Execute runs one command line and reports whether the user asked to quit.
func (c *Console) Execute(line string, w io.Writer) (quit bool) {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		c.printHelp(w)

	case "status", "s":
		c.cmdStatus(w)

	case "ack", "a":
		c.cmdAck(args, w)

	case "mute", "m":
		c.responder.SetMode(transport.ModeMute)
		fmt.Fprintln(w, "Muted: reads are no longer answered")

	case "unmute", "u":
		c.responder.SetMode(transport.ModeAck)
		fmt.Fprintf(w, "Answering with %q\n", c.responder.Ack())

	case "hangup":
		c.responder.SetMode(transport.ModeHangup)
		fmt.Fprintln(w, "Next read closes the connection gracefully")

	case "abort":
		c.responder.SetMode(transport.ModeReset)
		fmt.Fprintln(w, "Next read aborts the connection with a reset")

	case "close", "c":
		n := c.responder.CloseAll()
		fmt.Fprintf(w, "Closed %d connection(s)\n", n)

	case "reset", "r":
		n := c.responder.ResetAll()
		fmt.Fprintf(w, "Reset %d connection(s)\n", n)

	case "quit", "exit", "q":
		return true

	default:
		fmt.Fprintf(w, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (c *Console) cmdStatus(w io.Writer) {
	addr := "-"
	if a := c.responder.Addr(); a != nil {
		addr = a.String()
	}
	fmt.Fprintf(w, "Address:     %s\n", addr)
	fmt.Fprintf(w, "Mode:        %s\n", c.responder.Mode())
	fmt.Fprintf(w, "Ack:         %q\n", c.responder.Ack())
	fmt.Fprintf(w, "Connections: %d\n", c.responder.ConnectionCount())
}

func (c *Console) cmdAck(args []string, w io.Writer) {
	if len(args) > 0 {
		c.responder.SetAck(strings.Join(args, " "))
	}
	c.responder.SetMode(transport.ModeAck)
	fmt.Fprintf(w, "Answering with %q\n", c.responder.Ack())
}

func (c *Console) printHelp(w io.Writer) {
	fmt.Fprintln(w, `
Commands:
  status, s          Show address, mode and connection count
  ack, a [text]      Answer every read (optionally with new text)
  mute, m            Stop answering so the peer times out
  unmute, u          Resume answering
  hangup             Close gracefully after the next read
  abort              Reset after the next read
  close, c           Close all connections now
  reset, r           Reset all connections now
  help, ?            Show this help
  quit, q            Stop the simulator`)
}
