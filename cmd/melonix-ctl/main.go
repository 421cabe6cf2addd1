// ABOUTME: Command-line remote for a running Melonix editor
// ABOUTME: Sends one control command and prints the resulting session state
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/Melonix-Audio/melonix-go/internal/discovery"
	"github.com/Melonix-Audio/melonix-go/pkg/protocol"
)

var (
	addr    = flag.String("addr", "", "Editor address host:port (default: discover via mDNS)")
	timeout = flag.Duration("timeout", 5*time.Second, "Discovery timeout")
	verbose = flag.Bool("v", false, "Log connection details")
)

const usage = `Usage: melonix-ctl [flags] <command> [args]

Commands:
  state                        print the session state
  toggle                       start or stop playback
  cursor <seconds>             move the playback cursor
  add <sample> [note] [bend]   add a marker at a recording sample
  add-at <seconds> [note]      add a marker at an edited time
  move <id> <dtime> <bend>     set a marker's stretch and pitch bend
  remove <id>                  delete a marker
  discover                     list editors on the network

Flags:
`

func main() {
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if !*verbose {
		log.SetOutput(io.Discard)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if args[0] == "discover" {
		if err := discover(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(args); err != nil {
		var perr *protocol.Error
		if errors.As(err, &perr) {
			fmt.Fprintf(os.Stderr, "Editor refused: %s\n", perr.Message)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	target := *addr
	if target == "" {
		server, err := findEditor()
		if err != nil {
			return err
		}
		target = server.Addr()
	}

	client, err := protocol.Dial(target)
	if err != nil {
		return err
	}
	defer client.Close()

	state, err := execute(client, args)
	if err != nil {
		return err
	}
	printState(os.Stdout, state)
	return nil
}

// execute maps a command line onto one protocol request
func execute(c *protocol.Client, args []string) (protocol.SessionState, error) {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "state":
		return c.State()
	case "toggle":
		return c.TogglePlay()
	case "cursor":
		v, err := floats(rest, 1, 1)
		if err != nil {
			return protocol.SessionState{}, err
		}
		return c.SetCursor(v[0])
	case "add":
		v, err := floats(rest, 1, 3)
		if err != nil {
			return protocol.SessionState{}, err
		}
		v = append(v, 0, 0)
		return c.AddMarker(int(v[0]), v[1], v[2])
	case "add-at":
		v, err := floats(rest, 1, 2)
		if err != nil {
			return protocol.SessionState{}, err
		}
		v = append(v, 0)
		return c.AddMarkerAt(v[0], v[1])
	case "move":
		if len(rest) != 3 {
			return protocol.SessionState{}, fmt.Errorf("move takes <id> <dtime> <bend>")
		}
		v, err := floats(rest[1:], 2, 2)
		if err != nil {
			return protocol.SessionState{}, err
		}
		return c.MoveMarker(rest[0], v[0], v[1])
	case "remove":
		if len(rest) != 1 {
			return protocol.SessionState{}, fmt.Errorf("remove takes <id>")
		}
		return c.RemoveMarker(rest[0])
	}
	return protocol.SessionState{}, fmt.Errorf("unknown command %q", cmd)
}

// floats parses between lo and hi numeric arguments
func floats(args []string, lo, hi int) ([]float64, error) {
	if len(args) < lo || len(args) > hi {
		return nil, fmt.Errorf("expected %d to %d arguments, got %d", lo, hi, len(args))
	}
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", a, err)
		}
		out[i] = v
	}
	return out, nil
}

func printState(w io.Writer, st protocol.SessionState) {
	if st.SampleRate == 0 {
		fmt.Fprintln(w, "No document loaded")
		return
	}

	playing := "stopped"
	if st.Playing {
		playing = "playing"
	}
	if st.Path != "" {
		fmt.Fprintf(w, "File:     %s\n", st.Path)
	}
	fmt.Fprintf(w, "Audio:    %d samples at %dHz, %d grains\n", st.Samples, st.SampleRate, st.Grains)
	fmt.Fprintf(w, "Cursor:   %.3fs / %.3fs (%s)\n", st.Cursor, st.Duration, playing)
	if st.Added != "" {
		fmt.Fprintf(w, "Added:    %s\n", st.Added)
	}
	fmt.Fprintf(w, "Markers:  %d\n", len(st.Markers))
	for _, mk := range st.Markers {
		fmt.Fprintf(w, "  %s  sample %-9d at %8.3fs  dTime %+.3fs  bend %+.2f st\n",
			mk.ID, mk.Sample, mk.Time, mk.DTime, mk.PitchBend)
	}
}

// findEditor returns the first editor announced within the timeout
func findEditor() (*discovery.ServerInfo, error) {
	mgr := discovery.NewManager(discovery.Config{BrowseTimeout: *timeout})
	defer mgr.Stop()
	mgr.Browse()

	select {
	case server := <-mgr.Servers():
		return server, nil
	case <-time.After(*timeout):
		return nil, fmt.Errorf("no editor found after %v, use -addr", *timeout)
	}
}

func discover() error {
	mgr := discovery.NewManager(discovery.Config{BrowseTimeout: *timeout})
	defer mgr.Stop()
	mgr.Browse()

	seen := make(map[string]bool)
	deadline := time.After(*timeout)
	for {
		select {
		case server := <-mgr.Servers():
			if seen[server.Addr()] {
				continue
			}
			seen[server.Addr()] = true
			fmt.Printf("%s\t%s\n", server.Addr(), server.Name)
		case <-deadline:
			if len(seen) == 0 {
				return fmt.Errorf("no editors found")
			}
			return nil
		}
	}
}
