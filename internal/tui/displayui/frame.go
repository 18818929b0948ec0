package displayui

import (
	"fmt"
	"time"

	"lantern/internal/api"
	"lantern/internal/channel"
	"lantern/internal/reconciler"
)

// Frame is a rendered snapshot of the display. It is built on the UI loop
// and handed to the terminal program by value.
type Frame struct {
	Status api.Status
	Title  string
	Body   string
	// Error is the diagnostic when the slot shows an error channel.
	Error string
}

// FrameMsg delivers a new Frame to the Model.
type FrameMsg struct {
	Frame Frame
}

// RenderFrame draws whatever covers the slot into a width x height block.
// It must run on the UI loop.
func RenderFrame(rec *reconciler.Reconciler, width, height int, now time.Time) Frame {
	f := Frame{Status: reconciler.Snapshot(rec)}

	shown := rec.Failure()
	if shown == nil {
		shown = rec.Visible()
	}
	if shown == nil {
		f.Title = "Nothing to show"
		f.Body = fmt.Sprintf("No channel is set for %s.", rec.Direction())
		return f
	}

	f.Title = shown.Title()
	f.Body = shown.Render(width, height, now)
	if e, ok := shown.(*channel.Error); ok {
		f.Error = e.Message()
	}
	return f
}
