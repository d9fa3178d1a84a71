package wsclient

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/excavator-go/internal/domain/shared"
	"github.com/andrescamacho/excavator-go/internal/domain/world"
)

// fakeBridge answers requests the way a live bridge would. Velocity requests
// are never answered so timeouts can be exercised.
type fakeBridge struct {
	mu       sync.Mutex
	methods  []string
	controls []controlParams
	conns    []*websocket.Conn
}

// hangUp drops every connection from the bridge side
func (b *fakeBridge) hangUp() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, conn := range b.conns {
		_ = conn.Close()
	}
}

func (b *fakeBridge) handle(t *testing.T) http.HandlerFunc {
	upgrader := websocket.Upgrader{}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		b.mu.Lock()
		b.conns = append(b.conns, conn)
		b.mu.Unlock()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var req struct {
				ID     string          `json:"id"`
				Method string          `json:"method"`
				Params json.RawMessage `json:"params"`
			}
			if err := json.Unmarshal(msg, &req); err != nil {
				t.Errorf("decode request: %v", err)
				return
			}

			b.mu.Lock()
			b.methods = append(b.methods, req.Method)
			b.mu.Unlock()

			resp := Response{ID: req.ID}
			switch req.Method {
			case MethodHello:
			case MethodGetBlock:
				var p cellParams
				_ = json.Unmarshal(req.Params, &p)
				if p.X == 0 {
					resp.Result, _ = json.Marshal(blockResult{Found: true, Material: "stone"})
				} else {
					resp.Result, _ = json.Marshal(blockResult{Found: false})
				}
			case MethodBreakBlock:
				var p cellParams
				_ = json.Unmarshal(req.Params, &p)
				if p.Y < 0 {
					resp.Error = "out of world"
				}
			case MethodInventory:
				resp.Result, _ = json.Marshal(inventoryResult{Items: []string{"iron_pickaxe"}})
			case MethodNearbyEntities:
				resp.Result, _ = json.Marshal(entitiesResult{Entities: []entityWire{
					{ID: "7", Name: "zombie", Kind: "mob", Position: [3]float64{1, 64, 2}},
				}})
			case MethodSetControl:
				var p controlParams
				_ = json.Unmarshal(req.Params, &p)
				b.mu.Lock()
				b.controls = append(b.controls, p)
				b.mu.Unlock()
			case MethodPosition:
				resp.Result, _ = json.Marshal(vectorResult{X: 0.5, Y: 64, Z: -1.5})
			case MethodVelocity:
				continue
			default:
				resp.Error = "unknown method"
			}

			out, _ := json.Marshal(resp)
			if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
				return
			}
		}
	}
}

func dialFake(t *testing.T, timeout time.Duration) (*Client, *fakeBridge) {
	t.Helper()
	bridge := &fakeBridge{}
	srv := httptest.NewServer(bridge.handle(t))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	c, err := Dial(context.Background(), Config{URL: url, Agent: "digger", RequestTimeout: timeout})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, bridge
}

func TestClient_GetBlock(t *testing.T) {
	c, _ := dialFake(t, time.Second)
	ctx := context.Background()

	block, found, err := c.GetBlock(ctx, shared.NewCoordinate(0, 64, 0))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "stone", block.Material)

	_, found, err = c.GetBlock(ctx, shared.NewCoordinate(5, 64, 0))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestClient_RemoteError(t *testing.T) {
	c, _ := dialFake(t, time.Second)

	err := c.BreakBlock(context.Background(), shared.NewCoordinate(0, -1, 0))

	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, MethodBreakBlock, remote.Method)
	assert.Equal(t, "out of world", remote.Message)
}

func TestClient_Queries(t *testing.T) {
	c, _ := dialFake(t, time.Second)
	ctx := context.Background()

	items, err := c.Inventory(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"iron_pickaxe"}, items)

	entities, err := c.NearbyEntities(ctx)
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, world.EntityKindMob, entities[0].Kind)
	assert.Equal(t, mgl64.Vec3{1, 64, 2}, entities[0].Position)

	pos, err := c.AgentPosition(ctx)
	require.NoError(t, err)
	assert.Equal(t, mgl64.Vec3{0.5, 64, -1.5}, pos)
}

func TestClient_ReleaseAllSendsEveryControl(t *testing.T) {
	c, bridge := dialFake(t, time.Second)

	require.NoError(t, world.ReleaseAll(context.Background(), c))

	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	require.Len(t, bridge.controls, len(world.AllDirections))
	for i, d := range world.AllDirections {
		assert.Equal(t, string(d), bridge.controls[i].Control)
		assert.False(t, bridge.controls[i].Active)
	}
}

func TestClient_RequestTimeout(t *testing.T) {
	c, _ := dialFake(t, 100*time.Millisecond)

	_, err := c.AgentVelocity(context.Background())

	assert.ErrorContains(t, err, "timed out")
}

func TestClient_ContextCancelled(t *testing.T) {
	c, _ := dialFake(t, 5*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.AgentVelocity(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_CallAfterClose(t *testing.T) {
	c, _ := dialFake(t, time.Second)
	require.NoError(t, c.Close())

	_, _, err := c.GetBlock(context.Background(), shared.NewCoordinate(0, 0, 0))

	assert.ErrorIs(t, err, ErrClosed)
}

func TestClient_CloseReleasesSocketAfterBridgeHangUp(t *testing.T) {
	c, bridge := dialFake(t, time.Second)

	bridge.hangUp()
	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("read loop did not notice the hang-up")
	}

	require.NoError(t, c.Close())
	_, err := c.conn.UnderlyingConn().Write([]byte{0})
	assert.ErrorIs(t, err, net.ErrClosed)

	_, _, err = c.GetBlock(context.Background(), shared.NewCoordinate(0, 0, 0))
	assert.ErrorIs(t, err, ErrClosed)
}
