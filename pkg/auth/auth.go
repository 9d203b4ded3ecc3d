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

// Package auth performs the HTTP session login that precedes the websocket
// handshake.
package auth

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/carverauto/telebridge/pkg/logger"
)

const (
	authPath       = "cvpservice/login/authenticate.do"
	requestTimeout = 30 * time.Second
)

var (
	// ErrCredentialsRejected means the feed refused the login. Callers
	// treat this as fatal; there is no point retrying bad credentials.
	ErrCredentialsRejected = errors.New("telemetry credentials rejected")

	errNoSessionID = errors.New("login response missing sessionId")
)

// Client performs session authentication against the telemetry endpoint.
type Client struct {
	httpClient *http.Client
	logger     logger.Logger
}

func NewClient(insecureSkipVerify bool, log logger.Logger) *Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: insecureSkipVerify, //nolint:gosec // operator opt-in for self-signed endpoints
		},
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   requestTimeout,
		},
		logger: log,
	}
}

// Authenticate exchanges credentials for a session identifier. A non-200
// response means the credentials were rejected.
func (c *Client) Authenticate(ctx context.Context, host, username, password string) (string, error) {
	credentials, err := json.Marshal(map[string]string{
		"userId":   username,
		"password": password,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode credentials: %w", err)
	}

	loginURL := fmt.Sprintf("https://%s/%s", host, authPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL, bytes.NewReader(credentials))
	if err != nil {
		return "", fmt.Errorf("failed to build login request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("login request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrCredentialsRejected, resp.StatusCode)
	}

	var session struct {
		SessionID string `json:"sessionId"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}

	if session.SessionID == "" {
		return "", errNoSessionID
	}

	return session.SessionID, nil
}
