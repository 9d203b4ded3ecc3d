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
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/telebridge/pkg/logger"
	"github.com/carverauto/telebridge/pkg/models"
)

var errSinkDown = errors.New("sink down")

type fakeAlerter struct {
	mu        sync.Mutex
	delivered []*models.AlertRecord
	err       error
}

func (f *fakeAlerter) Alert(_ context.Context, alert *models.AlertRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.delivered = append(f.delivered, alert)

	return f.err
}

func (f *fakeAlerter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.delivered)
}

func TestDispatcher_DeliversQueuedAlerts(t *testing.T) {
	alerter := &fakeAlerter{}
	d := NewDispatcher(alerter, logger.NewTestLogger())
	d.Start(context.Background())

	d.Dispatch(&models.AlertRecord{Severity: "CRITICAL", Title: "one"})
	d.Dispatch(&models.AlertRecord{Severity: "WARNING", Title: "two"})

	d.Stop()

	require.Equal(t, 2, alerter.count())
	assert.Equal(t, "one", alerter.delivered[0].Title)
	assert.Equal(t, "two", alerter.delivered[1].Title)
}

func TestDispatcher_DeliveryFailureDoesNotStopWorker(t *testing.T) {
	alerter := &fakeAlerter{err: errSinkDown}
	d := NewDispatcher(alerter, logger.NewTestLogger())
	d.Start(context.Background())

	d.Dispatch(&models.AlertRecord{Title: "first"})
	d.Dispatch(&models.AlertRecord{Title: "second"})

	d.Stop()

	// Both were attempted exactly once, neither was retried.
	assert.Equal(t, 2, alerter.count())
}

func TestDispatcher_FullQueueDropsInsteadOfBlocking(t *testing.T) {
	alerter := &fakeAlerter{}
	d := NewDispatcher(alerter, logger.NewTestLogger())

	// Worker not started: the queue fills, then Dispatch must not block.
	for i := 0; i < defaultQueueSize+10; i++ {
		d.Dispatch(&models.AlertRecord{Title: "flood"})
	}

	d.Start(context.Background())
	d.Stop()

	assert.Equal(t, defaultQueueSize, alerter.count())
}
