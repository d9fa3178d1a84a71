// Package wsclient implements the world client over a JSON WebSocket bridge.
// Every call is a request/response pair correlated by ID; the bridge may
// answer out of order.
package wsclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
	"k8s.io/klog/v2"

	"github.com/andrescamacho/excavator-go/internal/adapters/metrics"
	"github.com/andrescamacho/excavator-go/internal/domain/shared"
	"github.com/andrescamacho/excavator-go/internal/domain/world"
)

// ErrClosed is returned for calls made after the connection is gone
var ErrClosed = errors.New("world connection closed")

// RemoteError is an error reported by the bridge for one request
type RemoteError struct {
	Method  string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Method, e.Message)
}

// Config holds connection settings
type Config struct {
	URL            string
	Agent          string
	RequestTimeout time.Duration
	RatePerSecond  int
	Burst          int
}

// Client is a world.Client backed by a WebSocket connection
type Client struct {
	cfg     Config
	conn    *websocket.Conn
	limiter *rate.Limiter

	writeMu   sync.Mutex
	closeOnce sync.Once

	mu      sync.Mutex
	pending map[string]chan Response
	closed  bool
	err     error

	nextID atomic.Uint64
	done   chan struct{}
}

// Dial connects to the bridge and announces the agent
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 5 * time.Second
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 50
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 20
	}

	d := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, _, err := d.DialContext(ctx, cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.URL, err)
	}

	c := &Client{
		cfg:     cfg,
		conn:    conn,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		pending: make(map[string]chan Response),
		done:    make(chan struct{}),
	}
	go c.readLoop()

	if err := c.call(ctx, MethodHello, helloParams{Agent: cfg.Agent}, nil); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("hello: %w", err)
	}
	return c, nil
}

// Close terminates the connection and fails every pending call. The socket
// is released even when the read loop already failed.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		failed := c.closed
		c.mu.Unlock()

		if failed {
			_ = c.conn.Close()
			return
		}
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	<-c.done
	return err
}

// Done is closed when the read loop exits
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) readLoop() {
	defer close(c.done)
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			c.fail(err)
			return
		}
		var resp Response
		if err := json.Unmarshal(msg, &resp); err != nil {
			klog.V(2).InfoS("discarding malformed bridge message", "error", err)
			continue
		}
		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		delete(c.pending, resp.ID)
		c.mu.Unlock()
		if ok {
			ch <- resp
		}
	}
}

func (c *Client) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.err = err
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}

// call sends one request and decodes the result into out (if non-nil)
func (c *Client) call(ctx context.Context, method string, params, out interface{}) (err error) {
	waitStart := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	start := time.Now()
	metrics.RecordWorldRateLimitWait(start.Sub(waitStart).Seconds())
	defer func() {
		metrics.RecordWorldRequest(method, outcomeOf(err), time.Since(start).Seconds())
	}()

	id := strconv.FormatUint(c.nextID.Add(1), 10)
	ch := make(chan Response, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.pending[id] = ch
	c.mu.Unlock()

	payload, encErr := json.Marshal(Request{ID: id, Method: method, Params: params})
	if encErr != nil {
		c.forget(id)
		return fmt.Errorf("encode %s: %w", method, encErr)
	}

	c.writeMu.Lock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.RequestTimeout))
	err = c.conn.WriteMessage(websocket.TextMessage, payload)
	c.writeMu.Unlock()
	if err != nil {
		c.forget(id)
		return fmt.Errorf("send %s: %w", method, err)
	}

	timer := time.NewTimer(c.cfg.RequestTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		c.forget(id)
		return ctx.Err()
	case <-timer.C:
		c.forget(id)
		return fmt.Errorf("%s: timed out after %s", method, c.cfg.RequestTimeout)
	case resp, ok := <-ch:
		if !ok {
			return ErrClosed
		}
		if resp.Error != "" {
			return &RemoteError{Method: method, Message: resp.Error}
		}
		if out != nil && len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, out); err != nil {
				return fmt.Errorf("decode %s: %w", method, err)
			}
		}
		return nil
	}
}

func outcomeOf(err error) string {
	var remote *RemoteError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &remote):
		return "remote_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "failed"
	}
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) GetBlock(ctx context.Context, pos shared.Coordinate) (world.Block, bool, error) {
	var res blockResult
	if err := c.call(ctx, MethodGetBlock, cellParams{X: pos.X, Y: pos.Y, Z: pos.Z}, &res); err != nil {
		return world.Block{}, false, err
	}
	if !res.Found {
		return world.Block{}, false, nil
	}
	return world.Block{Material: res.Material}, true, nil
}

func (c *Client) NearbyEntities(ctx context.Context) ([]world.Entity, error) {
	var res entitiesResult
	if err := c.call(ctx, MethodNearbyEntities, nil, &res); err != nil {
		return nil, err
	}
	out := make([]world.Entity, len(res.Entities))
	for i, e := range res.Entities {
		out[i] = world.Entity{
			ID:       e.ID,
			Name:     e.Name,
			Kind:     world.EntityKind(e.Kind),
			Position: mgl64.Vec3(e.Position),
		}
	}
	return out, nil
}

func (c *Client) BreakBlock(ctx context.Context, pos shared.Coordinate) error {
	return c.call(ctx, MethodBreakBlock, cellParams{X: pos.X, Y: pos.Y, Z: pos.Z}, nil)
}

func (c *Client) Equip(ctx context.Context, item string) error {
	return c.call(ctx, MethodEquip, equipParams{Item: item}, nil)
}

func (c *Client) Inventory(ctx context.Context) ([]string, error) {
	var res inventoryResult
	if err := c.call(ctx, MethodInventory, nil, &res); err != nil {
		return nil, err
	}
	return res.Items, nil
}

func (c *Client) SetMovementIntent(ctx context.Context, dir world.Direction, active bool) error {
	return c.call(ctx, MethodSetControl, controlParams{Control: string(dir), Active: active}, nil)
}

func (c *Client) Face(ctx context.Context, yaw, pitch float64) error {
	return c.call(ctx, MethodLook, lookParams{Yaw: yaw, Pitch: pitch}, nil)
}

func (c *Client) AgentPosition(ctx context.Context) (mgl64.Vec3, error) {
	return c.vector(ctx, MethodPosition)
}

func (c *Client) AgentVelocity(ctx context.Context) (mgl64.Vec3, error) {
	return c.vector(ctx, MethodVelocity)
}

func (c *Client) vector(ctx context.Context, method string) (mgl64.Vec3, error) {
	var res vectorResult
	if err := c.call(ctx, method, nil, &res); err != nil {
		return mgl64.Vec3{}, err
	}
	return mgl64.Vec3{res.X, res.Y, res.Z}, nil
}

var _ world.Client = (*Client)(nil)
