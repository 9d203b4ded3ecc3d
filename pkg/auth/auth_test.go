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

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/telebridge/pkg/logger"
)

func TestAuthenticate_Success(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/cvpservice/login/authenticate.do", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var credentials map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&credentials))
		assert.Equal(t, "cvpadmin", credentials["userId"])
		assert.Equal(t, "secret", credentials["password"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sessionId": "session-abc-123"}`))
	}))
	defer server.Close()

	client := NewClient(true, logger.NewTestLogger())
	host := strings.TrimPrefix(server.URL, "https://")

	sessionID, err := client.Authenticate(context.Background(), host, "cvpadmin", "secret")
	require.NoError(t, err)
	assert.Equal(t, "session-abc-123", sessionID)
}

func TestAuthenticate_RejectedCredentials(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(true, logger.NewTestLogger())
	host := strings.TrimPrefix(server.URL, "https://")

	_, err := client.Authenticate(context.Background(), host, "cvpadmin", "wrong")
	require.ErrorIs(t, err, ErrCredentialsRejected)
}

func TestAuthenticate_MissingSessionID(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(true, logger.NewTestLogger())
	host := strings.TrimPrefix(server.URL, "https://")

	_, err := client.Authenticate(context.Background(), host, "cvpadmin", "secret")
	require.Error(t, err)
}
