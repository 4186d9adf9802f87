// DataLake - Song Play Analytics Star Schema Pipeline
// Copyright 2026 HvyD
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/HvyD/DataLake

package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// PushToGateway pushes all registered metrics to a Prometheus Pushgateway.
// Metrics are grouped by job name and run_id so successive runs remain
// distinguishable. Called once at the end of a run; a push failure is
// reported to the caller but must not fail the run itself.
func PushToGateway(url, job, runID string) error {
	pusher := push.New(url, job).
		Grouping("run_id", runID).
		Gatherer(prometheus.DefaultGatherer)

	if err := pusher.Push(); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
