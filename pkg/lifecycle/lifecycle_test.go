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

package lifecycle

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/telebridge/pkg/logger"
)

var errBoom = errors.New("boom")

// fakeService blocks in Start until Stop releases it, the way the real
// client's read loop ends when Stop closes the socket.
type fakeService struct {
	startErr error
	stopped  atomic.Bool
	release  chan struct{}
}

func newFakeService(startErr error) *fakeService {
	return &fakeService{startErr: startErr, release: make(chan struct{})}
}

func (s *fakeService) Start(_ context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}

	<-s.release

	return nil
}

func (s *fakeService) Stop(_ context.Context) error {
	s.stopped.Store(true)
	close(s.release)

	return nil
}

func TestRun_ServiceErrorPropagates(t *testing.T) {
	svc := newFakeService(errBoom)

	err := Run(context.Background(), svc, logger.NewTestLogger())
	require.ErrorIs(t, err, errBoom)
}

func TestRun_ContextCancelStopsService(t *testing.T) {
	svc := newFakeService(nil)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() {
		done <- Run(ctx, svc, logger.NewTestLogger())
	}()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
		assert.True(t, svc.stopped.Load())
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestCreateComponentLogger(t *testing.T) {
	log, err := CreateComponentLogger("test", &logger.Config{Level: "debug"})
	require.NoError(t, err)
	require.NotNil(t, log)
}
