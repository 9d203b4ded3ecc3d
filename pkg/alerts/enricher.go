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

package alerts

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carverauto/telebridge/pkg/logger"
	"github.com/carverauto/telebridge/pkg/models"
)

var errMissingField = errors.New("event notification missing field")

// HostResolver resolves a device identifier to a display hostname.
type HostResolver interface {
	Resolve(deviceID string) string
}

// AlertSink receives completed alert records.
type AlertSink interface {
	Dispatch(alert *models.AlertRecord)
}

// Enricher filters raw event notifications and builds normalized alert
// records. Notifications without a data field are not alerting types and
// are skipped without error.
type Enricher struct {
	resolver HostResolver
	sink     AlertSink
	logger   logger.Logger
}

func NewEnricher(resolver HostResolver, sink AlertSink, log logger.Logger) *Enricher {
	return &Enricher{
		resolver: resolver,
		sink:     sink,
		logger:   log,
	}
}

// Handle inspects one event notification and dispatches at most one alert
// record for it. Structural problems are logged and isolated to this event.
func (e *Enricher) Handle(n *models.Notification) {
	dataUpdate, ok := n.Updates["data"]
	if !ok {
		return
	}

	e.logger.Debug().Msg("Preparing alert notification")

	var data models.EventData

	if err := json.Unmarshal(dataUpdate.Value, &data); err != nil {
		e.logger.Error().Err(err).Msg("Dropping event with malformed data field")
		return
	}

	severity, err := stringField(n, "severity")
	if err != nil {
		e.logger.Error().Err(err).Msg("Dropping malformed event")
		return
	}

	title, err := stringField(n, "title")
	if err != nil {
		e.logger.Error().Err(err).Msg("Dropping malformed event")
		return
	}

	description, err := stringField(n, "description")
	if err != nil {
		e.logger.Error().Err(err).Msg("Dropping malformed event")
		return
	}

	millis, err := int64Field(n, "timestamp")
	if err != nil {
		e.logger.Error().Err(err).Msg("Dropping malformed event")
		return
	}

	e.sink.Dispatch(&models.AlertRecord{
		ID:          uuid.NewString(),
		Severity:    severity,
		Title:       title,
		Description: description,
		Host:        e.resolver.Resolve(data.DeviceID),
		OccurredAt:  time.Unix(millis/1000, 0),
	})
}

func stringField(n *models.Notification, key string) (string, error) {
	update, ok := n.Updates[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", errMissingField, key)
	}

	var value string

	if err := json.Unmarshal(update.Value, &value); err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", key, err)
	}

	return value, nil
}

func int64Field(n *models.Notification, key string) (int64, error) {
	update, ok := n.Updates[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", errMissingField, key)
	}

	var value int64

	if err := json.Unmarshal(update.Value, &value); err != nil {
		return 0, fmt.Errorf("failed to decode %s: %w", key, err)
	}

	return value, nil
}
