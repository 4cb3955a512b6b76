package streaming

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"tidepool/internal/logging"
	"tidepool/internal/metrics"
	"tidepool/internal/model"
	"tidepool/internal/mstdn"
)

// Client follows the instance's user stream and publishes decoded events on
// its Bus. Connection loss is the client's own concern: it reconnects with
// exponential backoff and never replays missed events.
type Client struct {
	instance    mstdn.Instance
	httpClient  *http.Client
	bus         *Bus
	baseBackoff time.Duration
	maxBackoff  time.Duration
}

func NewClient(instance mstdn.Instance) *Client {
	return &Client{
		instance:    instance,
		httpClient:  &http.Client{}, // no timeout: the stream is long-lived
		bus:         NewBus(),
		baseBackoff: time.Second,
		maxBackoff:  time.Minute,
	}
}

// Subscribe registers h on the client's bus.
func (c *Client) Subscribe(h Handler) *Subscription { return c.bus.Subscribe(h) }

// Run connects and dispatches until ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	backoff := c.baseBackoff
	for {
		err := c.streamOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logging.Error("stream_disconnected", map[string]any{"error": fmt.Sprint(err), "retry_in": backoff.String()})
		metrics.IncStreamReconnect()
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
		if backoff > c.maxBackoff {
			backoff = c.maxBackoff
		}
	}
}

func (c *Client) streamOnce(ctx context.Context) error {
	u := c.instance.BaseURL + "/api/v1/streaming/user"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if c.instance.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.instance.AuthToken)
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream status %d", resp.StatusCode)
	}
	return readFrames(resp.Body, func(name, data string) {
		e, ok := decodeEvent(name, data)
		if !ok {
			return
		}
		switch e.(type) {
		case model.UpdateEvent:
			metrics.IncStreamEvent("update")
		case model.DeleteEvent:
			metrics.IncStreamEvent("delete")
		}
		c.bus.Publish(e)
	})
}
