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

// Package models defines the shared wire and domain types for the bridge.
package models

import "encoding/json"

// Frame is one inbound message from the telemetry feed. Acknowledgement
// frames carry a token but no result.
type Frame struct {
	Token  string        `json:"token"`
	Result []ResultBlock `json:"result,omitempty"`
}

// ResultBlock wraps the notification batches of a response frame.
type ResultBlock struct {
	Notifications []Notification `json:"Notifications"`
}

// Notification is a single update set, keyed by field name for events and by
// device serial for device state.
type Notification struct {
	Updates map[string]Update `json:"updates"`
}

// Update is one field of a notification. The value shape depends on the
// path, so it stays raw until a handler interprets it.
type Update struct {
	Value json.RawMessage `json:"value"`
}

// DeviceInfo is the decoded value of one device update.
type DeviceInfo struct {
	Hostname string `json:"hostname"`
}

// EventData is the decoded value of an event's data field.
type EventData struct {
	DeviceID string `json:"deviceId"`
}
