package projector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lantern/internal/api"
	"lantern/internal/channel"
	"lantern/internal/loop"
	"lantern/internal/planes"
)

type failureCounter struct {
	discovery  int
	connection int
}

func (f *failureCounter) OnStartDiscoveryFailure()    { f.discovery++ }
func (f *failureCounter) OnRequestConnectionFailure() { f.connection++ }

type fakeProjector struct {
	id     string
	name   string
	planes planes.Planes
	dir    channel.Direction
}

func (p *fakeProjector) handler() http.Handler {
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	mux.HandleFunc(api.PathHealth, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, api.Health{Status: "ok", ID: p.id, Name: p.name})
	})
	mux.HandleFunc(api.PathStatus, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, api.Status{Direction: p.dir})
	})
	mux.HandleFunc(api.PathPlanes, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, p.planes)
	})
	mux.HandleFunc("/api/v1/planes/north", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var cfg channel.Config
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			writeJSON(w, api.ErrorResponse{Error: err.Error()})
			return
		}
		p.planes[channel.DirectionNorth] = cfg
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc(api.PathDirection, func(w http.ResponseWriter, r *http.Request) {
		var req api.DirectionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if !req.Direction.Valid() {
			w.WriteHeader(http.StatusBadRequest)
			writeJSON(w, api.ErrorResponse{Error: "unknown direction"})
			return
		}
		p.dir = req.Direction
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func newTestClient(t *testing.T, candidates ...string) (*HTTPClient, *loop.Loop, *failureCounter) {
	t.Helper()
	l := loop.New()
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)

	c := NewHTTPClient(l, Options{
		Candidates:     candidates,
		ProbeTimeout:   time.Second,
		RescanInterval: 20 * time.Millisecond,
	})
	failures := &failureCounter{}
	require.NoError(t, l.Do(context.Background(), func() error {
		c.SetFailureListener(failures)
		return nil
	}))
	t.Cleanup(func() {
		c.Close()
		cancel()
		<-l.Done()
	})
	return c, l, failures
}

func onLoop(t *testing.T, l *loop.Loop, fn func()) {
	t.Helper()
	require.NoError(t, l.Do(context.Background(), func() error {
		fn()
		return nil
	}))
}

func eventually(t *testing.T, l *loop.Loop, cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		var ok bool
		_ = l.Do(context.Background(), func() error {
			ok = cond()
			return nil
		})
		return ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHTTPClient_StartDiscoveryWithoutCandidatesFails(t *testing.T) {
	c, l, failures := newTestClient(t)

	onLoop(t, l, c.StartDiscovery)

	eventually(t, l, func() bool { return failures.discovery == 1 })
	assert.Equal(t, DiscoveryUninitialised, c.DiscoveryState())
	assert.Equal(t, "no projector candidates configured", c.cannotDiscover())
}

func TestHTTPClient_StartDiscoveryAfterCloseFails(t *testing.T) {
	c, l, failures := newTestClient(t, "http://127.0.0.1:1")
	assert.Equal(t, "", c.cannotDiscover())

	c.Close()
	assert.Equal(t, "client is closed", c.cannotDiscover())

	onLoop(t, l, c.StartDiscovery)
	eventually(t, l, func() bool { return failures.discovery == 1 })
	assert.Equal(t, DiscoveryUninitialised, c.DiscoveryState())
}

func TestHTTPClient_DiscoversHealthyProjectors(t *testing.T) {
	proj := &fakeProjector{id: "p-1", name: "Kitchen", planes: planes.Planes{}}
	healthy := httptest.NewServer(proj.handler())
	defer healthy.Close()
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	c, l, _ := newTestClient(t, healthy.URL, broken.URL)

	var states []DiscoveryState
	onLoop(t, l, func() {
		c.Subscribe(func(s State) { states = append(states, s.Discovery) })
		c.StartDiscovery()
	})

	eventually(t, l, func() bool { return c.DiscoveryState() == DiscoveryEndpointsAvailable })

	var endpoints []Endpoint
	onLoop(t, l, func() { endpoints = c.Endpoints() })
	require.Len(t, endpoints, 1)
	assert.Equal(t, "p-1", endpoints[0].ID)
	assert.Equal(t, "Kitchen", endpoints[0].Info.EndpointName)
	assert.Equal(t, healthy.URL, endpoints[0].Info.URL)
	onLoop(t, l, func() {
		assert.Equal(t, []DiscoveryState{DiscoveryLookingForEndpoints, DiscoveryEndpointsAvailable}, states)
	})
}

func TestHTTPClient_KeepsLookingUntilAProjectorAppears(t *testing.T) {
	proj := &fakeProjector{id: "late", planes: planes.Planes{}}
	var up atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !up.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		proj.handler().ServeHTTP(w, r)
	}))
	defer srv.Close()

	c, l, _ := newTestClient(t, srv.URL)
	onLoop(t, l, c.StartDiscovery)

	time.Sleep(50 * time.Millisecond)
	onLoop(t, l, func() {
		assert.Equal(t, DiscoveryLookingForEndpoints, c.DiscoveryState())
		up.Store(true)
	})

	eventually(t, l, func() bool { return c.DiscoveryState() == DiscoveryEndpointsAvailable })
}

func discovered(t *testing.T, proj *fakeProjector) (*HTTPClient, *loop.Loop, *failureCounter, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(proj.handler())
	t.Cleanup(srv.Close)

	c, l, failures := newTestClient(t, srv.URL)
	onLoop(t, l, c.StartDiscovery)
	eventually(t, l, func() bool { return c.DiscoveryState() == DiscoveryEndpointsAvailable })
	return c, l, failures, srv
}

func TestHTTPClient_ConnectAndUseRemote(t *testing.T) {
	proj := &fakeProjector{
		id:     "p-1",
		name:   "Hall",
		dir:    channel.DirectionNorth,
		planes: planes.Planes{channel.DirectionNorth: {Type: "clock"}},
	}
	c, l, failures, _ := discovered(t, proj)

	onLoop(t, l, func() {
		c.ConnectTo("p-1")
		assert.Equal(t, ConnectionConnecting, c.ConnectionState())
	})
	eventually(t, l, func() bool { return c.ConnectionState() == ConnectionConnected })
	assert.Zero(t, failures.connection)

	remote := c.Remote()
	got, err := remote.Planes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "clock", got[channel.DirectionNorth].Type)

	require.NoError(t, remote.SetPlane(context.Background(), channel.DirectionNorth, channel.Config{Type: "calendar"}))
	assert.Equal(t, "calendar", proj.planes[channel.DirectionNorth].Type)

	require.NoError(t, remote.SetDirection(context.Background(), channel.DirectionEast))
	assert.Equal(t, channel.DirectionEast, proj.dir)

	err = remote.SetDirection(context.Background(), channel.Direction("sideways"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown direction")
	onLoop(t, l, func() { assert.Equal(t, ConnectionConnected, c.ConnectionState()) })
}

func TestHTTPClient_ConnectToUnknownEndpointFails(t *testing.T) {
	c, l, failures, _ := discovered(t, &fakeProjector{id: "p-1", planes: planes.Planes{}})

	onLoop(t, l, func() { c.ConnectTo("nope") })

	eventually(t, l, func() bool { return failures.connection == 1 })
	assert.Equal(t, ConnectionDisconnected, c.ConnectionState())
}

func TestHTTPClient_ConnectFailureReportsAndDisconnects(t *testing.T) {
	c, l, failures, srv := discovered(t, &fakeProjector{id: "p-1", planes: planes.Planes{}})
	srv.Close()

	onLoop(t, l, func() { c.ConnectTo("p-1") })

	eventually(t, l, func() bool { return failures.connection == 1 })
	assert.Equal(t, ConnectionDisconnected, c.ConnectionState())
	assert.Nil(t, c.State().ConnectedTo)
}

func TestHTTPClient_LostConnection(t *testing.T) {
	c, l, _, srv := discovered(t, &fakeProjector{id: "p-1", planes: planes.Planes{}})
	onLoop(t, l, func() { c.ConnectTo("p-1") })
	eventually(t, l, func() bool { return c.ConnectionState() == ConnectionConnected })

	srv.Close()
	_, err := c.Remote().Planes(context.Background())
	require.Error(t, err)

	eventually(t, l, func() bool { return c.ConnectionState() == ConnectionDisconnected })
	_, err = c.Remote().Planes(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestHTTPClient_Disconnect(t *testing.T) {
	c, l, _, _ := discovered(t, &fakeProjector{id: "p-1", planes: planes.Planes{}})
	onLoop(t, l, func() { c.ConnectTo("p-1") })
	eventually(t, l, func() bool { return c.ConnectionState() == ConnectionConnected })

	onLoop(t, l, c.Disconnect)

	assert.Equal(t, ConnectionDisconnected, c.ConnectionState())
	_, err := c.Remote().ChannelTypes(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
}
