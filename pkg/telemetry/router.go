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
	"sync"

	"github.com/carverauto/telebridge/pkg/logger"
	"github.com/carverauto/telebridge/pkg/models"
)

// EventSink receives each event notification routed off the event
// subscription token.
type EventSink interface {
	Handle(n *models.Notification)
}

type handlerKind int

const (
	handlerDevices handlerKind = iota
	handlerEvents
)

// router demultiplexes inbound frames by correlation token. Registry entries
// live for the life of the connection, including tokens of one-shot get
// requests; a duplicate late response is routed like the first one.
type router struct {
	mu       sync.RWMutex
	registry map[string]handlerKind

	directory *Directory
	events    EventSink
	logger    logger.Logger
}

func newRouter(directory *Directory, events EventSink, log logger.Logger) *router {
	return &router{
		registry:  make(map[string]handlerKind),
		directory: directory,
		events:    events,
		logger:    log,
	}
}

func (r *router) register(token string, kind handlerKind) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.registry[token] = kind
}

// onFrame classifies one inbound frame and routes it. Frame-level problems
// never abort the connection: malformed frames are logged and dropped,
// frames for unknown tokens and acknowledgements without a result are
// ignored.
func (r *router) onFrame(raw []byte) {
	var frame models.Frame

	if err := json.Unmarshal(raw, &frame); err != nil {
		r.logger.Error().Err(err).Msg("Dropping malformed telemetry frame")
		return
	}

	r.mu.RLock()
	kind, ok := r.registry[frame.Token]
	r.mu.RUnlock()

	if !ok {
		r.logger.Debug().Str("token", frame.Token).Msg("Ignoring frame for unknown token")
		return
	}

	if len(frame.Result) == 0 {
		// Acknowledgement frame.
		return
	}

	batches := frame.Result[0].Notifications
	if len(batches) == 0 {
		return
	}

	switch kind {
	case handlerEvents:
		for i := range batches {
			r.events.Handle(&batches[i])
		}
	case handlerDevices:
		// Only the newest batch carries the state worth merging.
		r.directory.Apply(&batches[len(batches)-1])
	}
}
