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
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"sync"

	"github.com/carverauto/telebridge/pkg/logger"
	"github.com/carverauto/telebridge/pkg/models"
)

const alertTimeFormat = "2006-01-02 15:04:05"

// EmailAlerter delivers alert records over a persistent SMTP session. The
// session is established and authenticated at construction time; a login
// failure there is fatal to startup.
type EmailAlerter struct {
	config        *models.EmailConfig
	telemetryHost string
	logger        logger.Logger

	mu     sync.Mutex
	client *smtp.Client
}

func NewEmailAlerter(config *models.EmailConfig, password, telemetryHost string, log logger.Logger) (*EmailAlerter, error) {
	addr := net.JoinHostPort(config.Server, strconv.Itoa(config.Port))

	var (
		client *smtp.Client
		err    error
	)

	if config.NoSSL {
		client, err = smtp.Dial(addr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to email server %s: %w", addr, err)
		}
	} else {
		conn, dialErr := tls.Dial("tcp", addr, &tls.Config{ServerName: config.Server})
		if dialErr != nil {
			return nil, fmt.Errorf("failed to connect to email server %s: %w", addr, dialErr)
		}

		client, err = smtp.NewClient(conn, config.Server)
		if err != nil {
			return nil, fmt.Errorf("failed to open SMTP session with %s: %w", addr, err)
		}
	}

	if password != "" {
		authn := smtp.PlainAuth("", config.Username, password, config.Server)
		if err := client.Auth(authn); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("email login failed for %s: %w", config.Username, err)
		}
	}

	log.Info().Str("server", addr).Msg("Logged in to email server")

	return &EmailAlerter{
		config:        config,
		telemetryHost: telemetryHost,
		logger:        log,
		client:        client,
	}, nil
}

// Alert sends one alert email to all To and Cc recipients.
func (a *EmailAlerter) Alert(_ context.Context, alert *models.AlertRecord) error {
	message := formatMessage(a.config, a.telemetryHost, alert)
	recipients := append(splitAddresses(a.config.To), splitAddresses(a.config.Cc)...)

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.client.Mail(a.config.Username); err != nil {
		_ = a.client.Reset()
		return fmt.Errorf("MAIL FROM rejected: %w", err)
	}

	for _, rcpt := range recipients {
		if err := a.client.Rcpt(rcpt); err != nil {
			_ = a.client.Reset()
			return fmt.Errorf("recipient %s rejected: %w", rcpt, err)
		}
	}

	w, err := a.client.Data()
	if err != nil {
		_ = a.client.Reset()
		return fmt.Errorf("DATA rejected: %w", err)
	}

	if _, err := w.Write(message); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write message body: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}

	return nil
}

// Close ends the SMTP session.
func (a *EmailAlerter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.client.Quit()
}

// formatMessage renders the alert as an RFC 5322 message with a plain text
// body.
func formatMessage(config *models.EmailConfig, telemetryHost string, alert *models.AlertRecord) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\n", config.Username)
	fmt.Fprintf(&b, "To: %s\r\n", config.To)

	if config.Cc != "" {
		fmt.Fprintf(&b, "Cc: %s\r\n", config.Cc)
	}

	fmt.Fprintf(&b, "Subject: %s %s %s\r\n", config.SubjectPrefix, alert.Severity, alert.Title)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "%s event on %s at %s\r\n", alert.Severity, alert.Host, alert.OccurredAt.Format(alertTimeFormat))
	fmt.Fprintf(&b, "Description: %s\r\n", alert.Description)
	fmt.Fprintf(&b, "View Event at %s/telemetry/events\r\n", telemetryHost)

	return []byte(b.String())
}

func splitAddresses(list string) []string {
	if list == "" {
		return nil
	}

	parts := strings.Split(list, ",")
	addresses := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			addresses = append(addresses, trimmed)
		}
	}

	return addresses
}
