package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"lantern/internal/projector"
	"lantern/internal/tui/companionui"
	"lantern/internal/tui/design"
	"lantern/internal/tui/displayui"
	"lantern/pkg/logging"
)

const shutdownTimeout = 5 * time.Second

// waitForSignal blocks until SIGINT/SIGTERM or ctx is done.
func waitForSignal(ctx context.Context) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	select {
	case <-sigChan:
	case <-ctx.Done():
	}
}

func shutdownContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), shutdownTimeout)
}

// runDisplayCLI runs the projector headless, serving the API until
// interrupted.
func runDisplayCLI(ctx context.Context, d *DisplayServices) error {
	logging.Info("CLI", "Running display %q (%s) in no-TUI mode.", d.Name, d.ID)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := d.Start(ctx); err != nil {
		logging.Error("CLI", err, "Failed to start display")
		return err
	}

	logging.Info("CLI", "Display running. Press Ctrl+C to exit.")
	waitForSignal(ctx)

	logging.Info("CLI", "Shutting down display")
	stopCtx, stop := shutdownContext()
	defer stop()
	d.Stop(stopCtx)
	return nil
}

// runDisplayTUI shows the projector in the terminal.
func runDisplayTUI(ctx context.Context, cfg *Config, d *DisplayServices) error {
	design.Initialize(true)

	// Switch logging to channel-based system for TUI integration
	logChan := logging.InitForTUI(logging.ParseLevel(cfg.effectiveLogLevel()))
	defer closeTUILogs()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := d.Start(ctx); err != nil {
		return err
	}

	p := tea.NewProgram(displayui.New(d.Name, d, logChan), tea.WithAltScreen())
	d.AttachProgram(p.Send)

	_, err := p.Run()
	if err != nil {
		logging.Error("TUI-Lifecycle", err, "Error running TUI program")
	}

	stopCtx, stop := shutdownContext()
	defer stop()
	d.Stop(stopCtx)
	return err
}

// runCompanionCLI connects to the first projector found and prints its
// planes.
func runCompanionCLI(ctx context.Context, cfg *Config, c *CompanionServices) error {
	logging.Info("CLI", "Running companion in no-TUI mode.")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	view := newHeadlessView(c, cfg.Lantern.Companion.RescanInterval)
	if err := c.Start(ctx, view, nil); err != nil {
		return err
	}
	go printHomes(ctx, view.homes, c.Client.Remote())

	waitForSignal(ctx)

	stopCtx, stop := shutdownContext()
	defer stop()
	c.Stop(stopCtx)
	return nil
}

func printHomes(ctx context.Context, homes <-chan projector.Endpoint, remote projector.Remote) {
	for {
		select {
		case <-ctx.Done():
			return
		case ep := <-homes:
			reqCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			p, err := remote.Planes(reqCtx)
			cancel()
			if err != nil {
				logging.Error("CLI", err, "Failed to read planes from %s", ep.Info.EndpointName)
				continue
			}
			for d, plane := range p {
				logging.Info("CLI", "%s: %s = %s", ep.Info.EndpointName, d, plane)
			}
		}
	}
}

// runCompanionTUI runs the companion screens in the terminal.
func runCompanionTUI(ctx context.Context, cfg *Config, c *CompanionServices) error {
	design.Initialize(true)

	logChan := logging.InitForTUI(logging.ParseLevel(cfg.effectiveLogLevel()))
	defer closeTUILogs()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(companionui.New(c, c.Client.Remote(), logChan), tea.WithAltScreen())
	view := companionui.NewProgramView(p.Send)
	onState := func(s projector.State) { p.Send(companionui.StateMsg{State: s}) }

	// Start sends to the program, so it can only finish once Run is reading.
	go func() {
		if err := c.Start(ctx, view, onState); err != nil {
			logging.Error("TUI-Lifecycle", err, "Failed to start companion")
			p.Quit()
		}
	}()

	_, err := p.Run()
	if err != nil {
		logging.Error("TUI-Lifecycle", err, "Error running TUI program")
	}

	stopCtx, stop := shutdownContext()
	defer stop()
	c.Stop(stopCtx)
	return err
}

// closeTUILogs hands logging back to stderr once the TUI has exited.
func closeTUILogs() {
	logging.CloseTUIChannel()
	if n := logging.Dropped(); n > 0 {
		logging.Warn("TUI-Lifecycle", "%d log entries were dropped while the TUI was busy", n)
	}
}
