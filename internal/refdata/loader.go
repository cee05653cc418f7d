// internal/refdata/loader.go
package refdata

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/tamzrod/ff7-replicator/internal/ff7"
	"github.com/tamzrod/ff7-replicator/internal/memory"
)

// DefaultRetry is the fixed delay between failed table loads.
const DefaultRetry = 5 * time.Second

// Loader runs the secondary poll: once the target is connected and a module
// is active it loads the name tables, retrying at a constant interval until
// they arrive. A disconnect discards the tables and the retry state.
//
// Loader owns its own accessor (via the opener) so the main poll loop is
// never blocked by a table read.
type Loader struct {
	open  memory.Opener
	retry time.Duration

	mu       sync.Mutex
	tables   *Tables
	attempts int
	lastErr  error
	cancel   context.CancelFunc
	gen      uint64

	wg sync.WaitGroup
}

func NewLoader(open memory.Opener, retry time.Duration) *Loader {
	if retry <= 0 {
		retry = DefaultRetry
	}
	return &Loader{open: open, retry: retry}
}

// Observe feeds the loader the latest connection state. It never blocks.
func (l *Loader) Observe(ctx context.Context, connected bool, module ff7.Module) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !connected {
		l.resetLocked()
		return
	}
	if module == ff7.ModuleNone || l.tables != nil || l.cancel != nil {
		return
	}

	l.gen++
	gen := l.gen
	rctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		t, err := backoff.Retry(rctx, func() (*Tables, error) {
			return l.attempt(rctx, gen)
		},
			backoff.WithBackOff(backoff.NewConstantBackOff(l.retry)),
			backoff.WithMaxElapsedTime(0),
			backoff.WithNotify(func(err error, next time.Duration) {
				log.Printf("refdata: load failed (err=%v), retrying in %s", err, next)
			}),
		)
		l.finish(gen, t, err)
	}()
}

func (l *Loader) attempt(ctx context.Context, gen uint64) (*Tables, error) {
	if err := ctx.Err(); err != nil {
		return nil, backoff.Permanent(err)
	}

	l.mu.Lock()
	if gen == l.gen {
		l.attempts++
	}
	l.mu.Unlock()

	t, err := l.load()

	l.mu.Lock()
	if gen == l.gen {
		l.lastErr = err
	}
	l.mu.Unlock()
	return t, err
}

func (l *Loader) load() (*Tables, error) {
	acc, err := l.open()
	if err != nil {
		return nil, err
	}
	defer memory.Close(acc)
	return ReadTables(acc)
}

func (l *Loader) finish(gen uint64, t *Tables, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.gen {
		return
	}
	l.cancel = nil
	if err != nil {
		return
	}
	l.tables = t
	log.Printf("refdata: tables loaded (attempts=%d commands=%d items=%d materia=%d)",
		l.attempts, len(t.Commands), len(t.Items), len(t.Materia))
}

// resetLocked must be called with mu held.
func (l *Loader) resetLocked() {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.gen++
	l.tables = nil
	l.attempts = 0
	l.lastErr = nil
}

// Tables returns the loaded tables, or nil while they are unavailable.
func (l *Loader) Tables() *Tables {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tables
}

// Attempts is the number of loads tried since the last reset.
func (l *Loader) Attempts() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.attempts
}

// LastError is the error of the most recent attempt, nil after success or reset.
func (l *Loader) LastError() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

// Close stops any in-flight retry and waits for it to exit.
func (l *Loader) Close() {
	l.mu.Lock()
	l.resetLocked()
	l.mu.Unlock()
	l.wg.Wait()
}
