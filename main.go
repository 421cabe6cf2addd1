// ABOUTME: Entry point for the Melonix editor
// ABOUTME: Parses CLI flags, loads a document and runs playback, TUI and remote control
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Melonix-Audio/melonix-go/internal/config"
	"github.com/Melonix-Audio/melonix-go/internal/control"
	"github.com/Melonix-Audio/melonix-go/internal/discovery"
	"github.com/Melonix-Audio/melonix-go/internal/engine"
	"github.com/Melonix-Audio/melonix-go/internal/session"
	"github.com/Melonix-Audio/melonix-go/internal/ui"
	"github.com/Melonix-Audio/melonix-go/internal/version"
	"github.com/Melonix-Audio/melonix-go/pkg/audio"
	"github.com/Melonix-Audio/melonix-go/pkg/audio/decode"
	"github.com/Melonix-Audio/melonix-go/pkg/audio/output"
)

func main() {
	cfg := config.Load()

	var (
		logFile       = flag.String("log-file", cfg.LogFile, "Log file path")
		noTUI         = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
		port          = flag.Int("port", cfg.ControlPort, "Remote control WebSocket port (0 disables)")
		name          = flag.String("name", cfg.Name, "Name advertised to remote clients")
		advertise     = flag.Bool("mdns", cfg.Advertise, "Advertise the control server via mDNS")
		volume        = flag.Int("volume", cfg.Volume, "Output volume (0-100)")
		bufferSamples = flag.Int("buffer", cfg.BufferSamples, "Audio device buffer in samples")
		noAudio       = flag.Bool("no-audio", false, "Do not open an audio device")
		tone          = flag.Float64("tone", 0, "Open a test tone of this frequency in Hz when no file is given")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [file]\n\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(flag.CommandLine.Output(), "Opens an audio file or a %s document.\n\n", session.DocumentExt)
		flag.PrintDefaults()
	}
	flag.Parse()

	useTUI := !*noTUI

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	log.Printf("Starting %s", version.String())

	sess := session.New(engine.DefaultOptions())
	title := ""
	if path := flag.Arg(0); path != "" {
		if err := sess.Open(path); err != nil {
			log.Fatalf("Failed to open %s: %v", path, err)
		}
		title = filepath.Base(path)
		log.Printf("Opened %s", path)
	} else if *tone > 0 {
		if err := sess.Load(audio.Tone(*tone, 5, decode.FFmpegSampleRate)); err != nil {
			log.Fatalf("Failed to load test tone: %v", err)
		}
		title = fmt.Sprintf("Test tone %.0fHz", *tone)
		log.Printf("Loaded %s", title)
	} else {
		log.Printf("No file given, starting empty")
	}

	// Audio output pulls rendered samples straight from the session
	if !*noAudio {
		sampleRate := sess.SampleRate()
		if sampleRate == 0 {
			sampleRate = decode.FFmpegSampleRate
		}
		out := output.NewOto(*bufferSamples)
		if err := out.Open(sampleRate, sess); err != nil {
			log.Printf("Audio output unavailable: %v", err)
		} else {
			out.SetVolume(*volume)
			defer func() {
				if err := out.Close(); err != nil {
					log.Printf("Error closing output: %v", err)
				}
			}()
		}
	}

	// Remote control
	if *port > 0 {
		srv := control.New(control.Config{Addr: fmt.Sprintf(":%d", *port), Name: *name}, sess)
		if err := srv.Start(); err != nil {
			log.Printf("Remote control disabled: %v", err)
		} else {
			defer srv.Stop()

			if *advertise {
				mdns := discovery.NewManager(discovery.Config{
					ServiceName: *name,
					Port:        srv.Port(),
				})
				if err := mdns.Advertise(); err != nil {
					log.Printf("Failed to start mDNS advertisement: %v", err)
				} else {
					defer mdns.Stop()
				}
			}
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if useTUI {
		prog := ui.Run(sess, title)
		go func() {
			<-sigChan
			log.Printf("Shutdown signal received")
			prog.Quit()
		}()
		if _, err := prog.Run(); err != nil {
			log.Printf("TUI error: %v", err)
		}
	} else {
		log.Printf("TUI disabled, press Ctrl-C to stop")
		<-sigChan
		log.Printf("Shutdown signal received")
	}

	sess.Close()
	log.Printf("Editor stopped")
}
