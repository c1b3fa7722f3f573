package cli

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/starlane-io/starlane/internal/config"
	"github.com/starlane-io/starlane/internal/hyperlane"
	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/security"
	"github.com/starlane-io/starlane/internal/wave"
)

var (
	termAddr    string
	termContext string
)

func init() {
	termCmd.Flags().StringVar(&termAddr, "addr", "", "star address to connect to (overrides --context)")
	termCmd.Flags().StringVar(&termContext, "context", "", "named context to connect through (default: the current context)")
	rootCmd.AddCommand(termCmd)
}

var termCmd = &cobra.Command{
	Use:   "term",
	Short: "Open a terminal to a running star",
	Long: `Opens a hyperlane connection to a running star and drops into a
line-reader REPL: each line is sent as a Cmd<RawCommand> wave and the
reflection's body is printed. The full command grammar is out of scope —
this is a thin diagnostic shell, not a shell language.`,
	RunE: runTerm,
}

func runTerm(cmd *cobra.Command, args []string) error {
	addr, err := resolveTermAddr()
	if err != nil {
		return ConfigError(err)
	}

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}

	kp, err := security.GenerateKeypair()
	if err != nil {
		return fmt.Errorf("generate terminal identity: %w", err)
	}
	self := point.StarKey{Constellation: "term", Name: "cli", Index: os.Getpid()}

	hconn, err := kp.Handshake(conn, self)
	if err != nil {
		return fmt.Errorf("handshake with %s: %w", addr, err)
	}
	defer hconn.Close()

	target := hconn.PeerStarKey
	fmt.Printf(">>> connected to %s (type /bye to exit)\n", target)

	scanner := newLineScanner(os.Stdin)
	for {
		fmt.Print(">>> ")
		if !scanner.Scan() {
			return nil
		}
		line := scanner.Text()
		if line == "/bye" || line == "/exit" || line == "/quit" {
			return nil
		}
		if line == "" {
			continue
		}

		w := wave.NewDirected(
			wave.KindPing,
			point.AtCore(self.StarPoint()),
			wave.ToSingle(point.AtCore(target.StarPoint())),
			wave.DirectedCore{Method: wave.Cmd("RawCommand"), Body: wave.TextSubstance(line)},
		)
		w.Bounce = wave.SingleBounce()

		if err := hconn.Send(hyperlane.StarMessageFrame(w)); err != nil {
			return fmt.Errorf("send: %w", err)
		}

		reply, err := awaitReflection(hconn, w.ID)
		if err != nil {
			return fmt.Errorf("await reply: %w", err)
		}
		printReflection(reply)
	}
}

// awaitReflection reads frames off conn until it finds the StarMessage
// reflecting waveID, ignoring anything else (Ping/Pong keepalives, watch
// traffic) in between.
func awaitReflection(conn *hyperlane.Conn, waveID wave.ID) (wave.Wave, error) {
	for {
		f, err := conn.Recv()
		if err != nil {
			return wave.Wave{}, err
		}
		if f.Kind == hyperlane.FrameStarMessage && f.Wave != nil && f.Wave.ReflectionOf.Equal(waveID) {
			return *f.Wave, nil
		}
	}
}

func printReflection(w wave.Wave) {
	if w.ReflectedCore.Body.Kind == wave.SubstanceText {
		fmt.Println(w.ReflectedCore.Body.Text)
		return
	}
	fmt.Printf("[%d]\n", w.ReflectedCore.Status)
}

func resolveTermAddr() (string, error) {
	if termAddr != "" {
		return termAddr, nil
	}

	contexts, err := config.LoadContexts("")
	if err != nil {
		return "", err
	}

	name := termContext
	if name == "" {
		name = contexts.Current
	}
	if name == "" {
		return "", fmt.Errorf("no --addr given and no context selected (see `starlane context`)")
	}
	ctx, ok := contexts.Find(name)
	if !ok {
		return "", fmt.Errorf("no such context %q", name)
	}
	return ctx.Address, nil
}
