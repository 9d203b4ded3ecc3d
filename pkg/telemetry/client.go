/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package telemetry implements the token-correlated streaming client: a
// single shared websocket over which typed requests are issued and inbound
// frames are demultiplexed by correlation token.
package telemetry

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/carverauto/telebridge/pkg/logger"
	"github.com/carverauto/telebridge/pkg/models"
)

const (
	wsPath           = "/aeris/v1/wrpc/"
	devicesPath      = "/DatasetInfo/EosSwitches"
	eventsPath       = "/events/v1/allEvents"
	handshakeTimeout = 30 * time.Second
	closeGracePeriod = time.Second
	frameBuffer      = 64
)

// Authenticator performs the pre-dial credential exchange and returns a
// session identifier for the websocket handshake.
type Authenticator interface {
	Authenticate(ctx context.Context, host, username, password string) (string, error)
}

// Client owns the shared websocket and the wiring around it: request
// issuance, token registration, and the single inbound frame consumer.
type Client struct {
	config   *models.TelemetryConfig
	password string
	auth     Authenticator
	logger   logger.Logger

	conn     *websocket.Conn
	requests *requestChannel
	router   *router

	closeOnce sync.Once
	done      chan struct{}
}

// New builds a client. The directory is injected so the enrichment path can
// share it read-only; events receives every notification routed off the
// event subscription.
func New(config *models.TelemetryConfig, password string, auth Authenticator,
	directory *Directory, events EventSink, log logger.Logger) *Client {
	return &Client{
		config:   config,
		password: password,
		auth:     auth,
		logger:   log,
		requests: &requestChannel{},
		router:   newRouter(directory, events, log),
		done:     make(chan struct{}),
	}
}

// Start connects, issues the startup subscriptions, and consumes inbound
// frames until the context is canceled or the transport fails. It is the
// only long-lived blocking call in the process.
func (c *Client) Start(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}

	c.conn = conn
	c.requests.attach(conn)
	c.logger.Info().Msg("Websocket connected")

	if err := c.subscribeInitial(); err != nil {
		c.close()
		return err
	}

	return c.readLoop(ctx)
}

// Stop closes the websocket cleanly.
func (c *Client) Stop(_ context.Context) error {
	c.close()
	return nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	scheme := "wss"
	header := http.Header{}

	dialer := websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: c.config.InsecureSkipVerify, //nolint:gosec // operator opt-in for self-signed endpoints
		},
	}

	if c.config.NoSSL {
		scheme = "ws"
	} else {
		sessionID, err := c.auth.Authenticate(ctx, c.config.Host, c.config.Username, c.password)
		if err != nil {
			return nil, fmt.Errorf("telemetry authentication failed: %w", err)
		}

		c.logger.Info().Msg("Successfully logged in to telemetry")

		header.Set("Cookie", "session_id="+sessionID)
		header.Set("Cache-Control", "no-cache")
		header.Set("Pragma", "no-cache")
	}

	u := url.URL{Scheme: scheme, Host: c.config.Host, Path: wsPath}

	conn, resp, err := dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			c.logger.Error().Str("status", resp.Status).Msg("Websocket handshake rejected")
		}

		return nil, fmt.Errorf("failed to connect to %s: %w", u.String(), err)
	}

	return conn, nil
}

// subscribeInitial registers the three startup tokens and issues the
// requests concurrently. Registration happens before the first send so a
// fast response can never race an empty registry. Streaming starts
// immediately; responses arrive whenever the server gets around to them.
func (c *Client) subscribeInitial() error {
	devicesGet, err := NewToken()
	if err != nil {
		return err
	}

	devicesSub, err := NewToken()
	if err != nil {
		return err
	}

	eventsSub, err := NewToken()
	if err != nil {
		return err
	}

	c.router.register(devicesGet, handlerDevices)
	c.router.register(devicesSub, handlerDevices)
	c.router.register(eventsSub, handlerEvents)

	deviceQuery := map[string]interface{}{
		"analytics": map[string]interface{}{devicesPath: true},
	}
	eventQuery := map[string]interface{}{
		"analytics": map[string]interface{}{eventsPath: true},
	}

	c.logger.Info().Msg("Subscribing to telemetry devices")

	go c.sendRequest(CommandGet, devicesGet, map[string]interface{}{
		"query": deviceQuery,
		"count": false,
	})
	go c.sendRequest(CommandSubscribe, devicesSub, map[string]interface{}{
		"query": deviceQuery,
	})

	c.logger.Info().Msg("Subscribing to telemetry events")

	go c.sendRequest(CommandSubscribe, eventsSub, map[string]interface{}{
		"query": eventQuery,
	})

	return nil
}

// sendRequest issues one startup request. Failures are logged and not
// retried.
func (c *Client) sendRequest(command, token string, args map[string]interface{}) {
	if err := c.requests.send(command, token, args, Version1); err != nil {
		c.logger.Error().Err(err).Str("command", command).Msg("Failed to send telemetry request")
	}
}

// readLoop is the single consumer of inbound frames. Frames are routed in
// strict arrival order; directory correctness depends on it.
func (c *Client) readLoop(ctx context.Context) error {
	frames := make(chan []byte, frameBuffer)
	readErr := make(chan error, 1)

	go func() {
		for {
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}

			select {
			case frames <- data:
			case <-c.done:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			c.close()
			return ctx.Err()
		case err := <-readErr:
			select {
			case <-c.done:
				return nil
			default:
			}

			c.close()

			return fmt.Errorf("websocket connection error: %w", err)
		case data := <-frames:
			c.router.onFrame(data)
		}
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.requests.detach()

		if c.conn != nil {
			deadline := time.Now().Add(closeGracePeriod)
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			_ = c.conn.Close()
		}

		c.logger.Info().Msg("Websocket connection closed")
	})
}
