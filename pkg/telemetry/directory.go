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

// Directory is the derived mapping from device serial to hostname, built
// from an initial snapshot plus the device subscription stream. Entries are
// never evicted; a device that stops reporting keeps its last hostname.
type Directory struct {
	mu      sync.RWMutex
	devices map[string]string
	logger  logger.Logger
}

func NewDirectory(log logger.Logger) *Directory {
	return &Directory{
		devices: make(map[string]string),
		logger:  log,
	}
}

// Apply merges one device notification batch. Updates are applied in frame
// arrival order; a later update for the same serial overrides an earlier
// one.
func (d *Directory) Apply(n *models.Notification) {
	d.mu.Lock()

	for serial, update := range n.Updates {
		var info models.DeviceInfo

		if err := json.Unmarshal(update.Value, &info); err != nil {
			d.logger.Error().Err(err).Str("serial", serial).Msg("Dropping malformed device update")
			continue
		}

		d.devices[serial] = info.Hostname
	}

	total := len(d.devices)
	d.mu.Unlock()

	d.logger.Info().Int("total_devices", total).Msg("Received devices")
}

// Resolve returns the hostname for a device serial, or the serial itself
// when the device is unknown. Lookup never fails.
func (d *Directory) Resolve(deviceID string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if hostname, ok := d.devices[deviceID]; ok {
		return hostname
	}

	return deviceID
}

// Len reports the number of known devices.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.devices)
}
