// internal/writer/builder.go
package writer

import (
	"time"

	"github.com/tamzrod/ff7-replicator/internal/config"
	wmodbus "github.com/tamzrod/ff7-replicator/internal/writer/modbus"
)

// BuildStatusWriter creates the status writer and its TCP client.
// It returns a nil writer when the status block is not configured.
// Assumes config has already passed validation and normalization.
func BuildStatusWriter(c *config.Config) (StatusWriter, func() error, error) {
	sm := c.Replicator.StatusMemory
	if sm == nil {
		return nil, func() error { return nil }, nil
	}

	cli, err := wmodbus.Dial(wmodbus.Config{
		Endpoint: sm.Endpoint,
		Timeout:  time.Duration(sm.TimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return nil, nil, err
	}

	plan := StatusPlan{
		Endpoint:   sm.Endpoint,
		UnitID:     sm.UnitID,
		BaseSlot:   sm.BaseSlot,
		DeviceName: sm.DeviceName,
	}
	return NewDeviceStatusWriter(plan, cli), cli.Close, nil
}
