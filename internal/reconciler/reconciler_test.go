package reconciler

import (
	"errors"
	"testing"

	"lantern/internal/channel"
	"lantern/internal/display"
	"lantern/internal/planes"
	"lantern/internal/sensor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHost wraps a real host, counts batches and can fail the next one.
type recordingHost struct {
	*display.Host
	batches  [][]display.Op
	failNext error
}

func newRecordingHost() *recordingHost {
	return &recordingHost{Host: display.NewHost("viewGroup")}
}

func (h *recordingHost) Apply(ops ...display.Op) error {
	h.batches = append(h.batches, ops)
	if h.failNext != nil {
		err := h.failNext
		h.failNext = nil
		return err
	}
	return h.Host.Apply(ops...)
}

func cfg(kind string) channel.Config {
	return channel.Config{Type: kind}
}

func TestReconcile_BuildsOneChannelPerConfiguredDirection(t *testing.T) {
	host := newRecordingHost()
	r := New(host, channel.DefaultRegistry(), channel.DirectionNorth)

	p := planes.Planes{
		channel.DirectionNorth: cfg("calendar"),
		channel.DirectionSouth: cfg("blank"),
		channel.DirectionUp:    {Type: "message", Settings: map[string]string{"text": "hello"}},
	}
	r.Reconcile(p)

	for _, d := range channel.AllDirections {
		ch, ok := r.Channel(d)
		want, configured := p[d]
		assert.Equal(t, configured, ok, "direction %s", d)
		if configured {
			assert.True(t, ch.Config().Equal(want), "direction %s", d)
		}
	}
	assert.Equal(t, int64(3), r.GetMetrics().Builds)
}

func TestReconcile_IdempotentForEqualConfig(t *testing.T) {
	host := newRecordingHost()
	r := New(host, channel.DefaultRegistry(), channel.DirectionNorth)

	r.Reconcile(planes.Planes{
		channel.DirectionNorth: {Type: "clock", Settings: map[string]string{"timezone": "UTC"}},
		channel.DirectionSouth: cfg("blank"),
	})
	before := r.Channels()
	builds := r.GetMetrics().Builds
	batches := len(host.batches)

	// Value-equal, freshly allocated maps.
	r.Reconcile(planes.Planes{
		channel.DirectionNorth: {Type: "clock", Settings: map[string]string{"timezone": "UTC"}},
		channel.DirectionSouth: {Type: "blank", Settings: map[string]string{}},
	})

	assert.Equal(t, builds, r.GetMetrics().Builds, "no channel may be rebuilt")
	assert.Equal(t, batches, len(host.batches), "no host operations expected")
	for d, ch := range before {
		got, _ := r.Channel(d)
		assert.Same(t, ch, got)
	}
}

func TestScenario_ReconfigureSouthKeepsNorthInstance(t *testing.T) {
	host := newRecordingHost()
	r := New(host, channel.DefaultRegistry(), channel.DirectionNorth)

	r.Reconcile(planes.Planes{
		channel.DirectionNorth: cfg("calendar"),
		channel.DirectionSouth: cfg("blank"),
	})

	north, _ := r.Channel(channel.DirectionNorth)
	south, _ := r.Channel(channel.DirectionSouth)
	_, isCalendar := r.Visible().(*channel.Calendar)
	assert.True(t, isCalendar)
	assert.Same(t, north, r.Visible())
	assert.Equal(t, []channel.Channel{north}, host.Visible())

	r.Reconcile(planes.Planes{
		channel.DirectionNorth: cfg("calendar"),
		channel.DirectionSouth: cfg("clock"),
	})

	northAfter, _ := r.Channel(channel.DirectionNorth)
	southAfter, _ := r.Channel(channel.DirectionSouth)
	assert.Same(t, north, northAfter, "unchanged direction keeps its instance")
	assert.NotSame(t, south, southAfter, "changed direction is rebuilt")
	assert.Equal(t, "clock", southAfter.Config().Type)
}

func TestScenario_UnknownTypeBecomesErrorChannel(t *testing.T) {
	host := newRecordingHost()
	r := New(host, channel.DefaultRegistry(), channel.DirectionNorth)

	r.Reconcile(planes.Planes{
		channel.DirectionNorth: cfg("calendar"),
		channel.DirectionEast:  cfg("unknown-xyz"),
	})

	east, ok := r.Channel(channel.DirectionEast)
	require.True(t, ok)
	errCh, isErr := east.(*channel.Error)
	require.True(t, isErr)
	assert.Contains(t, errCh.Message(), "unknown-xyz")

	north, _ := r.Channel(channel.DirectionNorth)
	_, isCalendar := north.(*channel.Calendar)
	assert.True(t, isCalendar, "other directions still reconcile")

	r.SetDirection(channel.DirectionEast)
	assert.Same(t, east, r.Visible())
	assert.Equal(t, []channel.Channel{east}, host.Visible())

	// Redelivering the same unknown config must not rebuild.
	builds := r.GetMetrics().Builds
	r.Reconcile(planes.Planes{
		channel.DirectionNorth: cfg("calendar"),
		channel.DirectionEast:  cfg("unknown-xyz"),
	})
	assert.Equal(t, builds, r.GetMetrics().Builds)
}

func TestSelectVisible_Idempotent(t *testing.T) {
	host := newRecordingHost()
	r := New(host, channel.DefaultRegistry(), channel.DirectionNorth)
	r.Reconcile(planes.Planes{channel.DirectionNorth: cfg("blank")})

	batches := len(host.batches)
	r.SelectVisible()
	r.SelectVisible()
	r.SetDirection(channel.DirectionNorth)

	assert.Equal(t, batches, len(host.batches))
}

func TestSelectVisible_HidesPreviousWithoutRemoving(t *testing.T) {
	host := newRecordingHost()
	r := New(host, channel.DefaultRegistry(), channel.DirectionNorth)
	r.Reconcile(planes.Planes{
		channel.DirectionNorth: cfg("calendar"),
		channel.DirectionSouth: cfg("clock"),
	})
	north, _ := r.Channel(channel.DirectionNorth)
	south, _ := r.Channel(channel.DirectionSouth)

	r.SetDirection(channel.DirectionSouth)
	last := host.batches[len(host.batches)-1]
	assert.Equal(t, []display.Op{
		{Kind: display.OpHide, Channel: north},
		{Kind: display.OpAttach, Channel: south},
	}, last)
	assert.True(t, host.Contains(north))
	assert.Equal(t, []channel.Channel{south}, host.Visible())

	r.SetDirection(channel.DirectionNorth)
	last = host.batches[len(host.batches)-1]
	assert.Equal(t, []display.Op{
		{Kind: display.OpHide, Channel: south},
		{Kind: display.OpShow, Channel: north},
	}, last)
	assert.Equal(t, []channel.Channel{north}, host.Visible())
}

func TestSelectVisible_UnconfiguredDirectionLeavesDisplayEmpty(t *testing.T) {
	host := newRecordingHost()
	r := New(host, channel.DefaultRegistry(), channel.DirectionNorth)
	r.Reconcile(planes.Planes{channel.DirectionNorth: cfg("calendar")})

	r.SetDirection(channel.DirectionWest)

	assert.Nil(t, r.Visible())
	assert.Empty(t, host.Visible())
	assert.Len(t, host.Channels(), 1, "previous channel is hidden, not removed")
	assert.Zero(t, r.GetMetrics().Failures)
}

func TestCleanupOrphans_RemovesExactlyTheDifference(t *testing.T) {
	host := newRecordingHost()
	r := New(host, channel.DefaultRegistry(), channel.DirectionNorth)
	r.Reconcile(planes.Planes{
		channel.DirectionNorth: cfg("calendar"),
		channel.DirectionSouth: cfg("blank"),
	})
	north, _ := r.Channel(channel.DirectionNorth)

	// Show south so both are attached.
	r.SetDirection(channel.DirectionSouth)
	south, _ := r.Channel(channel.DirectionSouth)
	require.ElementsMatch(t, []channel.Channel{north, south}, host.Channels())

	// Rebuild north while facing south: old north becomes an orphan.
	r.Reconcile(planes.Planes{
		channel.DirectionNorth: cfg("clock"),
		channel.DirectionSouth: cfg("blank"),
	})

	assert.False(t, host.Contains(north), "orphan removed")
	assert.True(t, host.Contains(south), "referenced channel untouched")
	last := host.batches[len(host.batches)-1]
	assert.Equal(t, []display.Op{{Kind: display.OpRemove, Channel: north}}, last)

	newNorth, _ := r.Channel(channel.DirectionNorth)
	assert.False(t, host.Contains(newNorth), "not attached until it becomes visible")
}

func TestCleanupOrphans_NoOpWithoutOrphans(t *testing.T) {
	host := newRecordingHost()
	r := New(host, channel.DefaultRegistry(), channel.DirectionNorth)
	r.Reconcile(planes.Planes{channel.DirectionNorth: cfg("calendar")})

	batches := len(host.batches)
	r.CleanupOrphans()
	assert.Equal(t, batches, len(host.batches))
}

func TestScenario_CommitFailureThenRecovery(t *testing.T) {
	host := newRecordingHost()
	r := New(host, channel.DefaultRegistry(), channel.DirectionNorth)
	r.Reconcile(planes.Planes{
		channel.DirectionNorth: cfg("calendar"),
		channel.DirectionSouth: cfg("blank"),
	})

	host.failNext = errors.New("slot detached")
	r.SetDirection(channel.DirectionSouth)

	visible := host.Visible()
	require.Len(t, host.Channels(), 1)
	require.Len(t, visible, 1)
	errCh, ok := visible[0].(*channel.Error)
	require.True(t, ok)
	assert.Contains(t, errCh.Message(), "slot detached")
	assert.Contains(t, errCh.Message(), "Failed to make channel")
	assert.Same(t, errCh, r.Failure())
	assert.Equal(t, int64(1), r.GetMetrics().Failures)

	// Redelivering valid config restores normal operation.
	r.Reconcile(planes.Planes{
		channel.DirectionNorth: cfg("calendar"),
		channel.DirectionSouth: cfg("blank"),
	})

	south, _ := r.Channel(channel.DirectionSouth)
	assert.Same(t, south, r.Visible())
	assert.Equal(t, []channel.Channel{south}, host.Visible())
	assert.False(t, host.Contains(errCh))
	assert.Nil(t, r.Failure())
}

func TestScenario_CommitFailureThenUnconfiguredDirection(t *testing.T) {
	host := newRecordingHost()
	r := New(host, channel.DefaultRegistry(), channel.DirectionNorth)
	r.Reconcile(planes.Planes{
		channel.DirectionNorth: cfg("calendar"),
		channel.DirectionSouth: cfg("blank"),
	})

	host.failNext = errors.New("slot detached")
	r.SetDirection(channel.DirectionSouth)
	errCh := r.Failure()
	require.NotNil(t, errCh)

	// South is no longer configured: the display must end up empty.
	r.Reconcile(planes.Planes{channel.DirectionNorth: cfg("calendar")})

	assert.Nil(t, r.Visible())
	assert.Nil(t, r.Failure())
	assert.Empty(t, host.Visible())
	assert.False(t, host.Contains(errCh))
}

func TestScenario_CommitFailureThenTurnToUnconfiguredDirection(t *testing.T) {
	host := newRecordingHost()
	r := New(host, channel.DefaultRegistry(), channel.DirectionNorth)
	r.Reconcile(planes.Planes{
		channel.DirectionNorth: cfg("calendar"),
		channel.DirectionSouth: cfg("blank"),
	})

	host.failNext = errors.New("slot detached")
	r.SetDirection(channel.DirectionSouth)
	errCh := r.Failure()
	require.NotNil(t, errCh)

	r.SetDirection(channel.DirectionWest)

	assert.Nil(t, r.Visible())
	assert.Nil(t, r.Failure())
	assert.Empty(t, host.Visible())
	assert.False(t, host.Contains(errCh))

	// Once cleared, facing west again is a no-op.
	batches := len(host.batches)
	r.SelectVisible()
	assert.Equal(t, batches, len(host.batches))
}

func TestScenario_MountFailureShowsErrorChannel(t *testing.T) {
	host := newRecordingHost()
	r := New(host, channel.DefaultRegistry(), channel.DirectionNorth)

	r.Reconcile(planes.Planes{
		channel.DirectionNorth: {Type: "calendar", Settings: map[string]string{"timezone": "Mars/Olympus"}},
	})

	visible := host.Visible()
	require.Len(t, visible, 1)
	errCh, ok := visible[0].(*channel.Error)
	require.True(t, ok)
	assert.Contains(t, errCh.Message(), "Mars/Olympus")

	r.Reconcile(planes.Planes{
		channel.DirectionNorth: {Type: "calendar", Settings: map[string]string{"timezone": "UTC"}},
	})
	north, _ := r.Channel(channel.DirectionNorth)
	assert.Equal(t, []channel.Channel{north}, host.Visible())
}

func TestController_StartStop(t *testing.T) {
	host := newRecordingHost()
	rec := New(host, channel.DefaultRegistry(), channel.DirectionUp)
	accel := sensor.NewAccelerometer(channel.DirectionNorth)
	store := planes.NewStore(planes.Planes{
		channel.DirectionNorth: cfg("calendar"),
		channel.DirectionEast:  cfg("clock"),
	}, "")

	c := NewController(rec, accel, store)
	c.Start()
	c.Start()
	require.True(t, c.Running())

	north, _ := rec.Channel(channel.DirectionNorth)
	assert.Same(t, north, rec.Visible())

	accel.SetDirection(channel.DirectionEast)
	east, _ := rec.Channel(channel.DirectionEast)
	assert.Same(t, east, rec.Visible())

	require.NoError(t, store.SetPlane(channel.DirectionEast, cfg("blank")))
	eastAfter, _ := rec.Channel(channel.DirectionEast)
	assert.NotSame(t, east, eastAfter)
	assert.Same(t, eastAfter, rec.Visible())

	c.Stop()
	assert.False(t, c.Running())
	accel.SetDirection(channel.DirectionNorth)
	assert.Same(t, eastAfter, rec.Visible(), "no updates after Stop")
}
