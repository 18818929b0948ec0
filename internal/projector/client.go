package projector

import (
	"context"

	"lantern/internal/channel"
	"lantern/internal/notify"
	"lantern/internal/planes"
)

// DiscoveryState tracks the search for projectors.
type DiscoveryState int

const (
	DiscoveryUninitialised DiscoveryState = iota
	DiscoveryLookingForEndpoints
	DiscoveryEndpointsAvailable
)

func (s DiscoveryState) String() string {
	switch s {
	case DiscoveryUninitialised:
		return "UNINITIALISED"
	case DiscoveryLookingForEndpoints:
		return "LOOKING_FOR_ENDPOINTS"
	case DiscoveryEndpointsAvailable:
		return "ENDPOINTS_AVAILABLE"
	default:
		return "UNKNOWN"
	}
}

// ConnectionState tracks the link to the selected projector.
type ConnectionState int

const (
	ConnectionDisconnected ConnectionState = iota
	ConnectionConnecting
	ConnectionConnected
)

func (s ConnectionState) String() string {
	switch s {
	case ConnectionDisconnected:
		return "DISCONNECTED"
	case ConnectionConnecting:
		return "CONNECTING"
	case ConnectionConnected:
		return "CONNECTED"
	default:
		return "UNKNOWN"
	}
}

// EndpointInfo is what discovery learned about a projector.
type EndpointInfo struct {
	EndpointName string `json:"name"`
	URL          string `json:"url"`
}

// Endpoint is a discovered projector.
type Endpoint struct {
	ID   string       `json:"id"`
	Info EndpointInfo `json:"info"`
}

// State is a snapshot of the client published to subscribers.
type State struct {
	Discovery   DiscoveryState
	Connection  ConnectionState
	Endpoints   []Endpoint
	ConnectedTo *Endpoint
}

// FailureListener is told about requests the client could not carry out.
type FailureListener interface {
	OnStartDiscoveryFailure()
	OnRequestConnectionFailure()
}

// Client discovers projectors and manages the connection to one of them.
// Methods other than the Remote calls must be called from the UI loop.
type Client interface {
	DiscoveryState() DiscoveryState
	ConnectionState() ConnectionState
	Endpoints() []Endpoint
	State() State
	StartDiscovery()
	ConnectTo(id string)
	Disconnect()
	Subscribe(listener func(State)) *notify.Subscription
	Unsubscribe(sub *notify.Subscription)
	SetFailureListener(l FailureListener)
}

// Remote is what the home screen does with a connected projector. Calls
// block on the network and must not be made from the UI loop.
type Remote interface {
	Planes(ctx context.Context) (planes.Planes, error)
	SetPlane(ctx context.Context, d channel.Direction, cfg channel.Config) error
	ClearPlane(ctx context.Context, d channel.Direction) error
	SetDirection(ctx context.Context, d channel.Direction) error
	ChannelTypes(ctx context.Context) ([]channel.Info, error)
}
