// internal/config/normalize.go
package config

const (
	DefaultIntervalMs    = 125
	DefaultDetectDelayMs = 50
	DefaultRetryMs       = 5000
	DefaultDebounceMs    = 1000
	DefaultTimeoutMs     = 1000
	DefaultSettingsPath  = "ff7-replicator.db"

	DeviceNameMaxChars = 16
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	r := &cfg.Replicator

	if r.Poll.IntervalMs == 0 {
		r.Poll.IntervalMs = DefaultIntervalMs
	}
	if r.Poll.DetectDelayMs == nil {
		d := DefaultDetectDelayMs
		// a short interval cannot fit the default delay
		if d >= r.Poll.IntervalMs {
			d = r.Poll.IntervalMs / 2
		}
		r.Poll.DetectDelayMs = &d
	}

	if r.Refdata.RetryMs == 0 {
		r.Refdata.RetryMs = DefaultRetryMs
	}
	if r.Settings.Path == "" {
		r.Settings.Path = DefaultSettingsPath
	}
	if r.Settings.DebounceMs == 0 {
		r.Settings.DebounceMs = DefaultDebounceMs
	}

	sm := r.StatusMemory
	if sm == nil {
		return
	}
	if sm.TimeoutMs == 0 {
		sm.TimeoutMs = DefaultTimeoutMs
	}

	// Normalize device_name:
	// - ASCII already validated
	// - Truncate to max 16 characters
	if len(sm.DeviceName) > DeviceNameMaxChars {
		sm.DeviceName = sm.DeviceName[:DeviceNameMaxChars]
	}
}
