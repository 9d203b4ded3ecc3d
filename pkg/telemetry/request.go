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

package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

const (
	// CommandGet requests a one-time snapshot.
	CommandGet = "get"
	// CommandSubscribe opens a standing subscription on the request token.
	CommandSubscribe = "subscribe"

	// VersionLegacy is the 0.9.0 protocol revision, which names the
	// argument field "args". Every later revision names it "params".
	VersionLegacy = "0.9.0"
	Version1      = "1.0.0"
)

// ErrNotConnected is returned when a send is attempted before the websocket
// is open or after it has closed.
var ErrNotConnected = errors.New("telemetry connection is not open")

// frameWriter is the outbound half of the transport. *websocket.Conn
// satisfies it.
type frameWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// requestChannel serializes typed requests onto the shared websocket.
// Writes are mutually exclusive; gorilla/websocket does not support
// concurrent writers.
type requestChannel struct {
	mu   sync.Mutex
	conn frameWriter
}

func (r *requestChannel) attach(conn frameWriter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conn = conn
}

func (r *requestChannel) detach() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conn = nil
}

// send issues one request frame. The argument field name is dictated by the
// protocol version for wire compatibility with 0.9.0 servers.
func (r *requestChannel) send(command, token string, args map[string]interface{}, version string) error {
	argsField := "params"
	if version == VersionLegacy {
		argsField = "args"
	}

	payload := map[string]interface{}{
		"token":   token,
		"command": command,
		argsField: args,
		"version": version,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", command, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil {
		return ErrNotConnected
	}

	return r.conn.WriteMessage(websocket.TextMessage, data)
}
