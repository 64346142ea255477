// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"fmt"

	"github.com/ManuGH/mapview/internal/config"
)

// SnapshotFunc returns the active configuration snapshot.
type SnapshotFunc func() *config.Config

// ConfigChecker reports on the active configuration snapshot.
// Lint findings make it degraded; a missing snapshot makes it unhealthy.
type ConfigChecker struct {
	snapshot SnapshotFunc
}

// NewConfigChecker creates a checker for the snapshot returned by fn.
func NewConfigChecker(fn SnapshotFunc) *ConfigChecker {
	return &ConfigChecker{snapshot: fn}
}

func (c *ConfigChecker) Name() string {
	return "config"
}

func (c *ConfigChecker) Check(ctx context.Context) CheckResult {
	cfg := c.snapshot()
	if cfg == nil {
		return CheckResult{Status: StatusUnhealthy, Error: "no configuration loaded"}
	}

	summary := fmt.Sprintf("%d style presets, %d gazetteer groups", len(cfg.StylePresets()), cfg.Gazetteer().Len())
	if findings := config.Lint(cfg); len(findings) > 0 {
		return CheckResult{
			Status:  StatusDegraded,
			Message: summary,
			Error:   findings[0].Field + ": " + findings[0].Message,
		}
	}
	return CheckResult{Status: StatusHealthy, Message: summary}
}
