// internal/config/validate.go
package config

import (
	"fmt"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
// Zero values that Normalize defaults are accepted.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}
	r := cfg.Replicator

	// ------------------------------------------------------------
	// TARGET PROCESS
	// ------------------------------------------------------------

	if r.Process.Name == "" {
		return fmt.Errorf("process.name is required")
	}

	// ------------------------------------------------------------
	// POLL TIMING
	// ------------------------------------------------------------

	if r.Poll.IntervalMs < 0 {
		return fmt.Errorf("poll.interval_ms must be > 0 (got %d)", r.Poll.IntervalMs)
	}
	interval := r.Poll.IntervalMs
	if interval == 0 {
		interval = DefaultIntervalMs
	}
	if d := r.Poll.DetectDelayMs; d != nil {
		if *d < 0 || *d >= interval {
			return fmt.Errorf(
				"poll.detect_delay_ms must satisfy 0 <= delay < interval (delay=%d interval=%d)",
				*d,
				interval,
			)
		}
	}

	if r.Refdata.RetryMs < 0 {
		return fmt.Errorf("refdata.retry_ms must be >= 0 (got %d)", r.Refdata.RetryMs)
	}
	if r.Refdata.AttackCacheSize < 0 {
		return fmt.Errorf("refdata.attack_cache_size must be >= 0 (got %d)", r.Refdata.AttackCacheSize)
	}
	if r.Settings.DebounceMs < 0 {
		return fmt.Errorf("settings.debounce_ms must be >= 0 (got %d)", r.Settings.DebounceMs)
	}

	// ------------------------------------------------------------
	// CONNECTION STATUS BLOCK (OPT-IN)
	// ------------------------------------------------------------

	sm := r.StatusMemory
	if sm == nil {
		return nil
	}

	if sm.Endpoint == "" {
		return fmt.Errorf("status_memory.endpoint is required when status_memory is set")
	}
	if sm.UnitID < 1 || sm.UnitID > 247 {
		return fmt.Errorf("status_memory.unit_id must be 1..247 (got %d)", sm.UnitID)
	}
	if sm.TimeoutMs < 0 {
		return fmt.Errorf("status_memory.timeout_ms must be >= 0 (got %d)", sm.TimeoutMs)
	}

	// device_name sanity (ASCII only)
	for i := 0; i < len(sm.DeviceName); i++ {
		if sm.DeviceName[i] > 0x7F {
			return fmt.Errorf("status_memory.device_name must contain ASCII characters only")
		}
	}

	return nil
}
