// internal/poller/builder.go
package poller

import (
	"log"

	"github.com/tamzrod/ff7-replicator/internal/config"
	"github.com/tamzrod/ff7-replicator/internal/decoder"
	"github.com/tamzrod/ff7-replicator/internal/memory"
)

// Build constructs a Poller and wires the process handle lifecycle.
// The handle is reused while healthy.
// On transport death, Poller discards the handle and uses the factory on a future tick.
// The target not running yet is not an error.
func Build(c *config.Config, det Detector, attacks AttackSource) (*Poller, func() error, error) {
	factory := memory.ProcessOpener(c.Replicator.Process.Name)

	// initial handle: ONE attempt, tolerated
	client, err := factory()
	if err != nil {
		log.Printf("poller: target not available yet (process=%s err=%v)", c.Replicator.Process.Name, err)
		client = nil
	}

	p, err := New(
		Config{
			Interval:    c.Replicator.Poll.Interval(),
			DetectDelay: c.Replicator.Poll.DetectDelay(),
			Signatures:  decoder.DefaultSignatures,
		},
		client,
		factory,
		det,
		attacks,
	)
	if err != nil {
		if client != nil {
			_ = memory.Close(client)
		}
		return nil, nil, err
	}

	return p, p.Close, nil
}
