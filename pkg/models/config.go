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

package models

import (
	"errors"

	"github.com/carverauto/telebridge/pkg/logger"
)

const (
	defaultSMTPPort      = 465
	defaultSubjectPrefix = "[CloudVision Telemetry]"
)

var (
	errNoTelemetryHost = errors.New("telemetry.host is required")
	errNoEmailServer   = errors.New("email.server is required")
	errNoEmailUsername = errors.New("email.username is required")
	errNoEmailTo       = errors.New("email.to is required")
	errNoTelemetryUser = errors.New("telemetry.username is required when SSL is enabled")
)

// TelemetryConfig describes the streaming feed endpoint.
type TelemetryConfig struct {
	// Host is the IP address or hostname of the telemetry endpoint.
	Host     string `json:"host"`
	Username string `json:"username"`
	// NoSSL dials ws:// without authentication instead of the
	// authenticated wss:// path.
	NoSSL bool `json:"no_ssl"`
	// InsecureSkipVerify disables certificate and hostname checks. Leave
	// false unless the endpoint uses self-signed certificates.
	InsecureSkipVerify bool `json:"insecure_skip_verify"`
}

// EmailConfig describes the notification sink.
type EmailConfig struct {
	Server string `json:"server"`
	Port   int    `json:"port"`
	// Username is the sending account, e.g. bob@acme.com.
	Username string `json:"username"`
	// To and Cc are comma-separated recipient lists.
	To            string `json:"to"`
	Cc            string `json:"cc,omitempty"`
	SubjectPrefix string `json:"subject_prefix,omitempty"`
	NoSSL         bool   `json:"no_ssl"`
}

// BridgeConfig is the full configuration of the bridge binary.
type BridgeConfig struct {
	Telemetry TelemetryConfig `json:"telemetry"`
	Email     EmailConfig     `json:"email"`
	Logging   *logger.Config  `json:"logging,omitempty"`
}

// Validate checks required fields and fills defaults.
func (c *BridgeConfig) Validate() error {
	if c.Telemetry.Host == "" {
		return errNoTelemetryHost
	}

	if !c.Telemetry.NoSSL && c.Telemetry.Username == "" {
		return errNoTelemetryUser
	}

	if c.Email.Server == "" {
		return errNoEmailServer
	}

	if c.Email.Username == "" {
		return errNoEmailUsername
	}

	if c.Email.To == "" {
		return errNoEmailTo
	}

	if c.Email.Port == 0 {
		c.Email.Port = defaultSMTPPort
	}

	if c.Email.SubjectPrefix == "" {
		c.Email.SubjectPrefix = defaultSubjectPrefix
	}

	return nil
}
