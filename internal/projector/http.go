package projector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"lantern/internal/api"
	"lantern/internal/channel"
	"lantern/internal/loop"
	"lantern/internal/notify"
	"lantern/internal/planes"
	"lantern/pkg/logging"
)

const subsystem = "Projector"

// ErrNotConnected is returned by remote calls made while no projector is connected.
var ErrNotConnected = errors.New("not connected to a projector")

// Options configures an HTTPClient.
type Options struct {
	// Candidates are the projector base URLs probed during discovery.
	Candidates     []string
	ProbeTimeout   time.Duration
	Retries        int
	RescanInterval time.Duration
}

// HTTPClient discovers projectors by probing a configured list of URLs and
// talks to the selected one over the display HTTP API. State changes happen
// on the executor; network calls run on their own goroutines.
type HTTPClient struct {
	exec  loop.Executor
	http  *retryablehttp.Client
	opts  Options
	state *notify.Subject[State]

	failures      FailureListener
	discoveryGen  int
	connectionGen int

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.RWMutex
	remoteURL string
}

// NewHTTPClient creates a client whose state changes run on exec.
func NewHTTPClient(exec loop.Executor, opts Options) *HTTPClient {
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = 2 * time.Second
	}
	if opts.RescanInterval <= 0 {
		opts.RescanInterval = 5 * time.Second
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.Retries
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = opts.ProbeTimeout
	rc.HTTPClient.Timeout = opts.ProbeTimeout
	rc.Logger = leveledLogger{}
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	ctx, cancel := context.WithCancel(context.Background())
	return &HTTPClient{
		exec:   exec,
		http:   rc,
		opts:   opts,
		state:  notify.NewSubject(State{}),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Close stops background discovery. In-flight requests are cancelled.
func (c *HTTPClient) Close() {
	c.cancel()
}

func (c *HTTPClient) DiscoveryState() DiscoveryState { return c.state.Get().Discovery }

func (c *HTTPClient) ConnectionState() ConnectionState { return c.state.Get().Connection }

func (c *HTTPClient) Endpoints() []Endpoint { return slices.Clone(c.state.Get().Endpoints) }

// State returns the current snapshot.
func (c *HTTPClient) State() State { return c.state.Get() }

func (c *HTTPClient) Subscribe(listener func(State)) *notify.Subscription {
	return c.state.Subscribe(listener)
}

func (c *HTTPClient) Unsubscribe(sub *notify.Subscription) {
	c.state.Unsubscribe(sub)
}

func (c *HTTPClient) SetFailureListener(l FailureListener) {
	c.failures = l
}

func (c *HTTPClient) update(fn func(s *State)) {
	s := c.state.Get()
	s.Endpoints = slices.Clone(s.Endpoints)
	fn(&s)
	c.state.Set(s)
}

func (c *HTTPClient) notifyFailure(fn func(FailureListener)) {
	c.exec.Post(func() {
		if c.failures != nil {
			fn(c.failures)
		}
	})
}

// StartDiscovery begins probing the candidate URLs. With nothing to probe the
// failure listener is told and the state stays unchanged.
func (c *HTTPClient) StartDiscovery() {
	if reason := c.cannotDiscover(); reason != "" {
		logging.Warn(subsystem, "Cannot start discovery: %s", reason)
		c.notifyFailure(FailureListener.OnStartDiscoveryFailure)
		return
	}

	c.discoveryGen++
	gen := c.discoveryGen
	c.update(func(s *State) {
		s.Discovery = DiscoveryLookingForEndpoints
		s.Endpoints = nil
	})
	logging.Info(subsystem, "Looking for projectors among %d candidate(s)", len(c.opts.Candidates))
	go c.scan(gen)
}

func (c *HTTPClient) scan(gen int) {
	found := make([]*Endpoint, len(c.opts.Candidates))
	var wg sync.WaitGroup
	for i, candidate := range c.opts.Candidates {
		wg.Add(1)
		go func(i int, base string) {
			defer wg.Done()
			ep, err := c.probe(base)
			if err != nil {
				logging.Debug(subsystem, "Probe of %s failed: %v", base, err)
				return
			}
			found[i] = ep
		}(i, candidate)
	}
	wg.Wait()

	var endpoints []Endpoint
	for _, ep := range found {
		if ep != nil && !slices.ContainsFunc(endpoints, func(e Endpoint) bool { return e.ID == ep.ID }) {
			endpoints = append(endpoints, *ep)
		}
	}

	c.exec.Post(func() { c.scanFinished(gen, endpoints) })
}

// cannotDiscover explains why discovery cannot start, or returns "".
func (c *HTTPClient) cannotDiscover() string {
	switch {
	case c.ctx.Err() != nil:
		return "client is closed"
	case len(c.opts.Candidates) == 0:
		return "no projector candidates configured"
	default:
		return ""
	}
}

func (c *HTTPClient) scanFinished(gen int, endpoints []Endpoint) {
	if gen != c.discoveryGen || c.ctx.Err() != nil {
		return
	}
	if len(endpoints) > 0 {
		logging.Info(subsystem, "Found %d projector(s)", len(endpoints))
		c.update(func(s *State) {
			s.Discovery = DiscoveryEndpointsAvailable
			s.Endpoints = endpoints
		})
		return
	}

	time.AfterFunc(c.opts.RescanInterval, func() {
		c.exec.Post(func() {
			if gen == c.discoveryGen && c.ctx.Err() == nil && c.DiscoveryState() == DiscoveryLookingForEndpoints {
				go c.scan(gen)
			}
		})
	})
}

func (c *HTTPClient) probe(base string) (*Endpoint, error) {
	var health api.Health
	if err := c.call(c.ctx, base, http.MethodGet, api.PathHealth, nil, &health); err != nil {
		return nil, err
	}
	if health.Status != "ok" {
		return nil, fmt.Errorf("projector at %s reports status %q", base, health.Status)
	}
	id := health.ID
	if id == "" {
		id = base
	}
	name := health.Name
	if name == "" {
		name = hostOf(base)
	}
	return &Endpoint{ID: id, Info: EndpointInfo{EndpointName: name, URL: base}}, nil
}

// ConnectTo connects to a previously discovered endpoint.
func (c *HTTPClient) ConnectTo(id string) {
	idx := slices.IndexFunc(c.state.Get().Endpoints, func(e Endpoint) bool { return e.ID == id })
	if idx < 0 {
		logging.Warn(subsystem, "Cannot connect to unknown endpoint %q", id)
		c.notifyFailure(FailureListener.OnRequestConnectionFailure)
		return
	}
	ep := c.state.Get().Endpoints[idx]

	c.connectionGen++
	gen := c.connectionGen
	c.update(func(s *State) {
		s.Connection = ConnectionConnecting
		s.ConnectedTo = &ep
	})
	logging.Info(subsystem, "Connecting to %s at %s", ep.Info.EndpointName, ep.Info.URL)

	go func() {
		var status api.Status
		err := c.call(c.ctx, ep.Info.URL, http.MethodGet, api.PathStatus, nil, &status)
		c.exec.Post(func() { c.connectFinished(gen, ep, err) })
	}()
}

func (c *HTTPClient) connectFinished(gen int, ep Endpoint, err error) {
	if gen != c.connectionGen {
		return
	}
	if err != nil {
		logging.Error(subsystem, err, "Failed to connect to %s", ep.Info.EndpointName)
		c.setRemote("")
		c.update(func(s *State) {
			s.Connection = ConnectionDisconnected
			s.ConnectedTo = nil
		})
		if c.failures != nil {
			c.failures.OnRequestConnectionFailure()
		}
		return
	}
	logging.Info(subsystem, "Connected to %s", ep.Info.EndpointName)
	c.setRemote(ep.Info.URL)
	c.update(func(s *State) { s.Connection = ConnectionConnected })
}

// Disconnect drops the current connection, cancelling one in progress.
func (c *HTTPClient) Disconnect() {
	c.connectionGen++
	c.setRemote("")
	if c.ConnectionState() == ConnectionDisconnected {
		return
	}
	logging.Info(subsystem, "Disconnected")
	c.update(func(s *State) {
		s.Connection = ConnectionDisconnected
		s.ConnectedTo = nil
	})
}

func (c *HTTPClient) connectionLost(base string, err error) {
	if current, _ := c.remote(); current != base || c.ConnectionState() != ConnectionConnected {
		return
	}
	logging.Error(subsystem, err, "Lost connection to projector")
	c.Disconnect()
}

func (c *HTTPClient) setRemote(u string) {
	c.mu.Lock()
	c.remoteURL = u
	c.mu.Unlock()
}

func (c *HTTPClient) remote() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.remoteURL == "" {
		return "", ErrNotConnected
	}
	return c.remoteURL, nil
}

// Remote returns the home-screen operations against the connected projector.
func (c *HTTPClient) Remote() Remote {
	return remoteClient{c}
}

type remoteClient struct{ c *HTTPClient }

func (r remoteClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	base, err := r.c.remote()
	if err != nil {
		return err
	}
	err = r.c.call(ctx, base, method, path, body, out)
	var se *statusError
	if err != nil && !errors.As(err, &se) && ctx.Err() == nil {
		// Transport failure: the projector has gone away.
		r.c.exec.Post(func() { r.c.connectionLost(base, err) })
	}
	return err
}

func (r remoteClient) Planes(ctx context.Context) (planes.Planes, error) {
	var p planes.Planes
	if err := r.do(ctx, http.MethodGet, api.PathPlanes, nil, &p); err != nil {
		return nil, err
	}
	if p == nil {
		p = planes.Planes{}
	}
	return p, nil
}

func (r remoteClient) SetPlane(ctx context.Context, d channel.Direction, cfg channel.Config) error {
	return r.do(ctx, http.MethodPut, planePath(d), cfg, nil)
}

func (r remoteClient) ClearPlane(ctx context.Context, d channel.Direction) error {
	return r.do(ctx, http.MethodDelete, planePath(d), nil, nil)
}

func (r remoteClient) SetDirection(ctx context.Context, d channel.Direction) error {
	return r.do(ctx, http.MethodPut, api.PathDirection, api.DirectionRequest{Direction: d}, nil)
}

func (r remoteClient) ChannelTypes(ctx context.Context) ([]channel.Info, error) {
	var infos []channel.Info
	if err := r.do(ctx, http.MethodGet, api.PathChannels, nil, &infos); err != nil {
		return nil, err
	}
	return infos, nil
}

func planePath(d channel.Direction) string {
	return strings.Replace(api.PathPlane, "{direction}", url.PathEscape(string(d)), 1)
}

// statusError is a well-formed non-2xx response from the projector.
type statusError struct {
	Code    int
	Message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("projector responded %d: %s", e.Code, e.Message)
}

func (c *HTTPClient) call(ctx context.Context, base, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, strings.TrimSuffix(base, "/")+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e api.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &statusError{Code: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func hostOf(base string) string {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return base
	}
	return u.Host
}

// leveledLogger routes retryablehttp's logs into the subsystem logger.
type leveledLogger struct{}

func (leveledLogger) Error(msg string, kv ...interface{}) {
	logging.Error(subsystem, errors.New(msg), "%s", formatKV(kv))
}

func (leveledLogger) Info(msg string, kv ...interface{}) {
	logging.Debug(subsystem, "%s %s", msg, formatKV(kv))
}

func (leveledLogger) Debug(msg string, kv ...interface{}) {
	logging.Debug(subsystem, "%s %s", msg, formatKV(kv))
}

func (leveledLogger) Warn(msg string, kv ...interface{}) {
	logging.Warn(subsystem, "%s %s", msg, formatKV(kv))
}

func formatKV(kv []interface{}) string {
	var b strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%v=%v", kv[i], kv[i+1])
	}
	return b.String()
}
