package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lantern/internal/api"
	"lantern/internal/channel"
	"lantern/internal/planes"
)

type fakeDisplay struct {
	planes    planes.Planes
	direction channel.Direction
	err       error
}

func (f *fakeDisplay) Status(ctx context.Context) (api.Status, error) {
	return api.Status{Direction: f.direction}, f.err
}

func (f *fakeDisplay) Planes(ctx context.Context) (planes.Planes, error) {
	return f.planes.Clone(), f.err
}

func (f *fakeDisplay) SetPlanes(ctx context.Context, p planes.Planes) error {
	if f.err != nil {
		return f.err
	}
	f.planes = p
	return nil
}

func (f *fakeDisplay) SetPlane(ctx context.Context, d channel.Direction, cfg channel.Config) error {
	if f.err != nil {
		return f.err
	}
	f.planes[d] = cfg
	return nil
}

func (f *fakeDisplay) ClearPlane(ctx context.Context, d channel.Direction) error {
	delete(f.planes, d)
	return f.err
}

func (f *fakeDisplay) SetDirection(ctx context.Context, d channel.Direction) error {
	if f.err != nil {
		return f.err
	}
	f.direction = d
	return nil
}

func (f *fakeDisplay) ReportGravity(ctx context.Context, x, y, z float64) (channel.Direction, error) {
	return f.direction, f.err
}

func (f *fakeDisplay) ChannelTypes() []channel.Info {
	return channel.DefaultRegistry().Infos()
}

func call(t *testing.T, tools *Tools, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args

	for _, st := range tools.ServerTools() {
		if st.Tool.Name == name {
			result, err := st.Handler(context.Background(), req)
			require.NoError(t, err)
			require.NotNil(t, result)
			return result
		}
	}
	t.Fatalf("tool %s not found", name)
	return nil
}

func text(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestTools_Names(t *testing.T) {
	var names []string
	for _, st := range NewTools(&fakeDisplay{}).ServerTools() {
		names = append(names, st.Tool.Name)
	}
	assert.Equal(t, []string{
		"lantern_status",
		"lantern_list_channel_types",
		"lantern_set_plane",
		"lantern_set_direction",
	}, names)
}

func TestTools_Status(t *testing.T) {
	tools := NewTools(&fakeDisplay{direction: channel.DirectionUp})

	result := call(t, tools, "lantern_status", nil)

	assert.False(t, result.IsError)
	var st api.Status
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &st))
	assert.Equal(t, channel.DirectionUp, st.Direction)
}

func TestTools_StatusError(t *testing.T) {
	tools := NewTools(&fakeDisplay{err: errors.New("loop stopped")})

	result := call(t, tools, "lantern_status", nil)

	assert.True(t, result.IsError)
	assert.Contains(t, text(t, result), "loop stopped")
}

func TestTools_ListChannelTypes(t *testing.T) {
	result := call(t, NewTools(&fakeDisplay{}), "lantern_list_channel_types", nil)

	var infos []channel.Info
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &infos))
	assert.Len(t, infos, 4)
}

func TestTools_SetPlane(t *testing.T) {
	d := &fakeDisplay{planes: planes.Planes{}}
	tools := NewTools(d)

	result := call(t, tools, "lantern_set_plane", map[string]interface{}{
		"direction": "North",
		"type":      "clock",
		"settings":  map[string]interface{}{"timezone": "Asia/Tokyo", "format": "24h"},
	})
	assert.False(t, result.IsError)
	assert.Equal(t, "Plane north now shows clock{format=24h,timezone=Asia/Tokyo}", text(t, result))
	assert.Equal(t, "Asia/Tokyo", d.planes[channel.DirectionNorth].Setting("timezone", ""))

	result = call(t, tools, "lantern_set_plane", map[string]interface{}{"direction": "north"})
	assert.False(t, result.IsError)
	assert.NotContains(t, d.planes, channel.DirectionNorth)
}

func TestTools_SetPlaneValidation(t *testing.T) {
	tools := NewTools(&fakeDisplay{planes: planes.Planes{}})

	result := call(t, tools, "lantern_set_plane", map[string]interface{}{"type": "blank"})
	assert.True(t, result.IsError)

	result = call(t, tools, "lantern_set_plane", map[string]interface{}{"direction": "sideways", "type": "blank"})
	assert.True(t, result.IsError)
	assert.Contains(t, text(t, result), "unknown direction")
}

func TestTools_SetDirection(t *testing.T) {
	d := &fakeDisplay{}
	tools := NewTools(d)

	result := call(t, tools, "lantern_set_direction", map[string]interface{}{"direction": "south"})
	assert.False(t, result.IsError)
	assert.Equal(t, channel.DirectionSouth, d.direction)

	result = call(t, tools, "lantern_set_direction", map[string]interface{}{})
	assert.True(t, result.IsError)
}

func TestServer_BuildsOnce(t *testing.T) {
	s := New(Config{}, &fakeDisplay{})
	assert.Same(t, s.MCPServer(), s.MCPServer())
	assert.Error(t, s.Stop(context.Background()))
}
