package cart

import (
	"context"
	"sync"
	"time"

	"bakery/internal/repository"

	"github.com/sirupsen/logrus"
)

// persister writes the most recent pending snapshot in the background.
// Snapshots enqueued while a write is running are coalesced; a snapshot of
// an older generation than one already accepted is dropped.
type persister struct {
	storage repository.CartStorage
	key     string
	timeout time.Duration
	log     *logrus.Entry

	mu      sync.Mutex
	pending []byte
	gen     uint64
	dirty   bool
	busy    bool
	idle    chan struct{}

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

func newPersister(storage repository.CartStorage, key string, timeout time.Duration, log *logrus.Entry) *persister {
	idle := make(chan struct{})
	close(idle)

	p := &persister{
		storage: storage,
		key:     key,
		timeout: timeout,
		log:     log,
		idle:    idle,
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *persister) enqueue(gen uint64, data []byte) bool {
	p.mu.Lock()
	if gen <= p.gen {
		p.mu.Unlock()
		return false
	}
	p.gen = gen
	p.pending = data
	p.dirty = true
	if !p.busy {
		p.busy = true
		p.idle = make(chan struct{})
	}
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
	return true
}

func (p *persister) run() {
	defer close(p.done)
	for {
		select {
		case <-p.wake:
			p.drain()
		case <-p.stop:
			p.drain()
			return
		}
	}
}

func (p *persister) drain() {
	for {
		p.mu.Lock()
		if !p.dirty {
			if p.busy {
				p.busy = false
				close(p.idle)
			}
			p.mu.Unlock()
			return
		}
		data := p.pending
		p.pending = nil
		p.dirty = false
		p.mu.Unlock()

		p.write(data)
	}
}

func (p *persister) write(data []byte) {
	// detached from the store context so the last write survives Close
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.storage.Set(ctx, p.key, data); err != nil {
		p.log.WithError(err).WithField("key", p.key).Error("persist cart failed")
	}
}

// flush waits until every enqueued snapshot has been written.
func (p *persister) flush(ctx context.Context) error {
	p.mu.Lock()
	idle := p.idle
	p.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *persister) close() {
	close(p.stop)
	<-p.done
}
