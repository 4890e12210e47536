// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package automation

import (
	"context"
	"fmt"
	"strconv"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// Analytics records one InfluxDB point per finished run.
type Analytics struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
}

// NewAnalytics builds an analytics sink for the given InfluxDB
// instance.
func NewAnalytics(url, token, org, bucket string) (*Analytics, error) {
	if url == "" {
		return nil, fmt.Errorf("analytics URL not configured")
	}

	client := influxdb2.NewClient(url, token)
	return &Analytics{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
	}, nil
}

// RecordRun writes the qa_run measurement for one terminal result.
func (a *Analytics) RecordRun(ctx context.Context, result *RunResult, statusLines, steps int) error {
	p := influxdb2.NewPoint(
		"qa_run",
		map[string]string{
			"mode":    result.Mode,
			"success": strconv.FormatBool(result.Success),
		},
		map[string]interface{}{
			"duration_ms":  result.Duration.Milliseconds(),
			"status_lines": statusLines,
			"steps":        steps,
		},
		result.FinishedAt,
	)

	if err := a.writeAPI.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("failed to write run point: %w", err)
	}
	return nil
}

// Close shuts down the underlying InfluxDB client.
func (a *Analytics) Close() {
	a.client.Close()
}
