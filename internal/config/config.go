// internal/config/config.go
package config

import "time"

type Config struct {
	Replicator ReplicatorConfig `yaml:"replicator"`
}

type ReplicatorConfig struct {
	Process   ProcessConfig   `yaml:"process" envPrefix:"PROCESS_"`
	Poll      PollConfig      `yaml:"poll" envPrefix:"POLL_"`
	Refdata   RefdataConfig   `yaml:"refdata" envPrefix:"REFDATA_"`
	Settings  SettingsConfig  `yaml:"settings" envPrefix:"SETTINGS_"`
	BattleLog BattleLogConfig `yaml:"battle_log" envPrefix:"BATTLE_LOG_"`
	Publish   PublishConfig   `yaml:"publish" envPrefix:"PUBLISH_"`

	// Connection status block (optional, opt-in)
	StatusMemory *StatusMemoryConfig `yaml:"status_memory" envPrefix:"STATUS_"`
}

// ---- TARGET PROCESS ----

type ProcessConfig struct {
	Name string `yaml:"name" env:"NAME"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs int `yaml:"interval_ms" env:"INTERVAL_MS"`

	// nil => default; 0 => detector runs synchronously after each publish
	DetectDelayMs *int `yaml:"detect_delay_ms" env:"DETECT_DELAY_MS"`
}

func (p PollConfig) Interval() time.Duration {
	return time.Duration(p.IntervalMs) * time.Millisecond
}

func (p PollConfig) DetectDelay() time.Duration {
	if p.DetectDelayMs == nil {
		return 0
	}
	return time.Duration(*p.DetectDelayMs) * time.Millisecond
}

// ---- REFERENCE TABLES ----

type RefdataConfig struct {
	RetryMs         int `yaml:"retry_ms" env:"RETRY_MS"`
	AttackCacheSize int `yaml:"attack_cache_size" env:"ATTACK_CACHE_SIZE"`
}

// ---- SETTINGS ----

type SettingsConfig struct {
	Path       string `yaml:"path" env:"PATH"`
	BackupPath string `yaml:"backup_path" env:"BACKUP_PATH"`
	DebounceMs int    `yaml:"debounce_ms" env:"DEBOUNCE_MS"`
}

// ---- BATTLE LOG ----

type BattleLogConfig struct {
	// empty => in-memory only
	Path string `yaml:"path" env:"PATH"`
}

// ---- STATE PUBLISH ----

type PublishConfig struct {
	// empty => not published; otherwise rewritten atomically once per second
	Path string `yaml:"path" env:"PATH"`
}

// ---- STATUS MEMORY ----

type StatusMemoryConfig struct {
	Endpoint   string `yaml:"endpoint" env:"ENDPOINT"`
	UnitID     uint8  `yaml:"unit_id" env:"UNIT_ID"`
	BaseSlot   uint16 `yaml:"base_slot" env:"BASE_SLOT"`
	TimeoutMs  int    `yaml:"timeout_ms" env:"TIMEOUT_MS"`
	DeviceName string `yaml:"device_name" env:"DEVICE_NAME"`
}
