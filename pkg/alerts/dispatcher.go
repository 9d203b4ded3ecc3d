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
	"sync"

	"github.com/carverauto/telebridge/pkg/logger"
	"github.com/carverauto/telebridge/pkg/models"
)

const defaultQueueSize = 64

// Dispatcher moves alert delivery off the inbound frame path. A single
// worker drains a bounded queue so a slow sink cannot stall device-directory
// updates or event routing. Delivery is at most once; a failed delivery is
// logged, never retried.
type Dispatcher struct {
	alerter Alerter
	queue   chan *models.AlertRecord
	logger  logger.Logger

	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewDispatcher(alerter Alerter, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		alerter: alerter,
		queue:   make(chan *models.AlertRecord, defaultQueueSize),
		logger:  log,
	}
}

// Start launches the delivery worker.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)

	go func() {
		defer d.wg.Done()

		for {
			select {
			case <-ctx.Done():
				return
			case alert, ok := <-d.queue:
				if !ok {
					return
				}

				d.deliver(ctx, alert)
			}
		}
	}()
}

// Dispatch queues one record. When the queue is full the record is dropped
// with a warning; delivery is best effort.
func (d *Dispatcher) Dispatch(alert *models.AlertRecord) {
	select {
	case d.queue <- alert:
	default:
		d.logger.Warn().
			Str("severity", alert.Severity).
			Str("title", alert.Title).
			Msg("Alert queue full, dropping alert")
	}
}

// Stop closes the queue and waits for the worker to drain it.
func (d *Dispatcher) Stop() {
	d.closeOnce.Do(func() {
		close(d.queue)
	})

	d.wg.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, alert *models.AlertRecord) {
	if err := d.alerter.Alert(ctx, alert); err != nil {
		d.logger.Error().Err(err).
			Str("severity", alert.Severity).
			Str("title", alert.Title).
			Msg("Failed to deliver alert")

		return
	}

	d.logger.Info().
		Str("severity", alert.Severity).
		Str("title", alert.Title).
		Msg("Alert sent")
}
