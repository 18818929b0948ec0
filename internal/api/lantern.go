package api

import (
	"context"

	"lantern/internal/channel"
	"lantern/internal/planes"
)

// HTTP routes served by the display and used by the companion.
const (
	PathHealth    = "/health"
	PathStatus    = "/api/v1/status"
	PathChannels  = "/api/v1/channels"
	PathPlanes    = "/api/v1/planes"
	PathPlane     = "/api/v1/planes/{direction}"
	PathDirection = "/api/v1/direction"
	PathGravity   = "/api/v1/gravity"
)

// DisplayAPI is the control surface of a running display. Implementations
// run every call on the display's UI loop.
type DisplayAPI interface {
	Status(ctx context.Context) (Status, error)
	Planes(ctx context.Context) (planes.Planes, error)
	SetPlanes(ctx context.Context, p planes.Planes) error
	SetPlane(ctx context.Context, d channel.Direction, cfg channel.Config) error
	ClearPlane(ctx context.Context, d channel.Direction) error
	SetDirection(ctx context.Context, d channel.Direction) error
	// ReportGravity feeds a raw accelerometer reading and returns the
	// direction it resolved to.
	ReportGravity(ctx context.Context, x, y, z float64) (channel.Direction, error)
	ChannelTypes() []channel.Info
}

// ChannelSummary describes a live channel.
type ChannelSummary struct {
	ID       string            `json:"id"`
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Settings map[string]string `json:"settings,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// StatusMetrics mirrors the reconciler counters.
type StatusMetrics struct {
	Builds   int64 `json:"builds"`
	Commits  int64 `json:"commits"`
	Failures int64 `json:"failures"`
}

// Status is a snapshot of the display.
type Status struct {
	Direction channel.Direction                    `json:"direction"`
	Visible   *ChannelSummary                      `json:"visible,omitempty"`
	Failure   string                               `json:"failure,omitempty"`
	Channels  map[channel.Direction]ChannelSummary `json:"channels"`
	Metrics   StatusMetrics                        `json:"metrics"`
}

// DirectionRequest is the body of PUT /api/v1/direction.
type DirectionRequest struct {
	Direction channel.Direction `json:"direction"`
}

// GravityRequest is the body of PUT /api/v1/gravity, in m/s² along the
// device axes: +x east, +y north, +z up.
type GravityRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Summarize builds the summary for c.
func Summarize(c channel.Channel) ChannelSummary {
	cfg := c.Config()
	s := ChannelSummary{
		ID:       c.ID(),
		Type:     cfg.Type,
		Title:    c.Title(),
		Settings: cfg.Settings,
	}
	if errCh, ok := c.(*channel.Error); ok {
		s.Error = errCh.Message()
	}
	return s
}

// Health is the body of GET /health. Companions use it to discover projectors.
type Health struct {
	Status string `json:"status"`
	ID     string `json:"id"`
	Name   string `json:"name"`
}
