// internal/poller/poller.go
package poller

import (
	"errors"
	"log"
	"time"

	"github.com/tamzrod/ff7-replicator/internal/decoder"
	"github.com/tamzrod/ff7-replicator/internal/ff7"
	"github.com/tamzrod/ff7-replicator/internal/memory"
)

// Config is the minimal runtime config the poller needs.
type Config struct {
	Interval time.Duration

	// DetectDelay is how long after a publish the detector runs.
	// Zero runs it synchronously right after the publish.
	DetectDelay time.Duration

	Signatures decoder.Signatures
}

// Poller is a clock-driven reader of the target process.
type Poller struct {
	cfg     Config
	client  memory.Accessor
	factory memory.Opener

	detector Detector
	attacks  AttackSource

	connected   bool
	lastModule  ff7.Module
	attackNames []string
	lastErr     string
}

// New creates a poller with immutable config. client may be nil; the factory
// is then used on the first tick. attacks may be nil.
func New(cfg Config, client memory.Accessor, factory memory.Opener, det Detector, attacks AttackSource) (*Poller, error) {
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if cfg.DetectDelay < 0 || cfg.DetectDelay >= cfg.Interval {
		return nil, errors.New("poller: detect delay must be in [0, interval)")
	}
	if det == nil {
		return nil, errors.New("poller: detector required")
	}
	if client == nil && factory == nil {
		return nil, errors.New("poller: client or factory required")
	}
	if len(cfg.Signatures) == 0 {
		cfg.Signatures = decoder.DefaultSignatures
	}
	return &Poller{
		cfg:      cfg,
		client:   client,
		factory:  factory,
		detector: det,
		attacks:  attacks,
	}, nil
}

// PollOnce performs exactly one poll cycle.
// All-or-nothing: any failure yields a disconnected update, never a partial state.
func (p *Poller) PollOnce() Update {
	now := time.Now()

	if p.client == nil {
		if p.factory == nil {
			return p.disconnected(now, memory.ErrProcessNotOpen)
		}
		c, err := p.factory()
		if err != nil {
			return p.disconnected(now, err)
		}
		p.client = c
	}

	raw, err := decoder.Fetch(p.client, p.cfg.Signatures)
	if err != nil {
		// The process is alive but idle; keep the handle.
		if !errors.Is(err, decoder.ErrNoModule) {
			p.dropClient()
		}
		return p.disconnected(now, err)
	}

	st, err := decoder.Decode(raw, p.cfg.Signatures)
	if err != nil {
		return p.disconnected(now, err)
	}

	if st.Module == ff7.ModuleBattle && p.lastModule != ff7.ModuleBattle {
		p.enterBattle(st.BattleID)
	}
	if st.Module != ff7.ModuleBattle {
		p.attackNames = nil
	}
	st.EnemyAttackNames = p.attackNames
	p.lastModule = st.Module

	if !p.connected {
		log.Printf("poller: connected (module=%s field=%d)", st.Module, st.FieldID)
	}
	p.connected = true
	p.lastErr = ""

	return Update{At: now, Connected: true, State: st}
}

// enterBattle resets per-encounter state. Attack names are only looked up
// for real encounters.
func (p *Poller) enterBattle(battleID uint16) {
	p.detector.Reset()
	p.attackNames = nil

	if p.attacks == nil || !ff7.RealBattle(battleID) {
		return
	}
	names, err := p.attacks.AttackNames(p.client, battleID)
	if err != nil {
		log.Printf("poller: enemy attack names unavailable (battle=%d err=%v)", battleID, err)
		return
	}
	p.attackNames = names
}

func (p *Poller) disconnected(now time.Time, err error) Update {
	p.detector.Reset()
	p.attackNames = nil
	p.lastModule = ff7.ModuleNone

	// transitions and changed reasons only, never every tick
	if p.connected || err.Error() != p.lastErr {
		log.Printf("poller: disconnected (err=%v)", err)
	}
	p.connected = false
	p.lastErr = err.Error()

	return Update{At: now, Err: err}
}

func (p *Poller) dropClient() {
	if p.client == nil {
		return
	}
	if err := memory.Close(p.client); err != nil {
		log.Printf("poller: close client failed (err=%v)", err)
	}
	p.client = nil
}

// Close releases the current client, if any.
func (p *Poller) Close() error {
	p.dropClient()
	return nil
}
