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

// Package alerts turns qualifying telemetry events into notifications: the
// enricher filters and normalizes raw event payloads, the dispatcher hands
// records to an Alerter off the inbound path.
package alerts

import (
	"context"

	"github.com/carverauto/telebridge/pkg/models"
)

// Alerter delivers one alert record to a notification sink.
type Alerter interface {
	Alert(ctx context.Context, alert *models.AlertRecord) error
}
