package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"bakery/internal/repository"

	"github.com/sirupsen/logrus"
)

// Registry owns one Store per cart session. Each session is persisted under
// "<key>:<session>". Stores idle longer than Config.IdleTTL are closed; the
// next Get reloads them from storage.
type Registry struct {
	ctx      context.Context
	products ProductDirectory
	storage  repository.CartStorage
	cfg      Config
	log      *logrus.Entry

	mu       sync.Mutex
	stores   map[string]*entry
	evicting map[string]chan struct{}
	closed   bool

	stop chan struct{}
	done chan struct{}
}

// entry is ready once its store has been loaded.
type entry struct {
	ready    chan struct{}
	store    *Store
	lastUsed atomic.Int64
}

func (e *entry) touch(now time.Time) { e.lastUsed.Store(now.UnixNano()) }

func NewRegistry(ctx context.Context, products ProductDirectory, storage repository.CartStorage, cfg Config, log *logrus.Entry) *Registry {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	r := &Registry{
		ctx:      ctx,
		products: products,
		storage:  storage,
		cfg:      cfg.withDefaults(),
		log:      log,
		stores:   make(map[string]*entry),
		evicting: make(map[string]chan struct{}),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	if r.cfg.IdleTTL > 0 {
		go r.sweep(r.cfg.IdleTTL / 2)
	} else {
		close(r.done)
	}
	return r
}

// Get returns the store of the session, loading it on first use. Loading
// happens outside the registry lock; concurrent callers for the same session
// wait for the same load.
func (r *Registry) Get(session string) (*Store, error) {
	session = strings.TrimSpace(session)
	if session == "" {
		return nil, fmt.Errorf("%w: session is required", ErrInvalidArgument)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrClosed
	}
	e, ok := r.stores[session]
	if ok {
		r.mu.Unlock()
		<-e.ready
		e.touch(time.Now())
		return e.store, nil
	}

	e = &entry{ready: make(chan struct{})}
	e.touch(time.Now())
	r.stores[session] = e
	// an evicted store may still be writing its last snapshot
	evicted := r.evicting[session]
	r.mu.Unlock()

	if evicted != nil {
		<-evicted
	}

	cfg := r.cfg
	cfg.Key = r.cfg.Key + ":" + session
	e.store = NewStore(r.ctx, r.products, r.storage, cfg, r.log.WithField("session", session))
	close(e.ready)
	return e.store, nil
}

func (r *Registry) sweep(every time.Duration) {
	defer close(r.done)

	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case now := <-t.C:
			if n := r.evictIdle(now); n > 0 {
				r.log.WithField("evicted", n).Debug("idle carts closed")
			}
		case <-r.stop:
			return
		}
	}
}

// evictIdle closes every loaded store not used since now-IdleTTL and
// reports how many were closed.
func (r *Registry) evictIdle(now time.Time) int {
	cutoff := now.Add(-r.cfg.IdleTTL).UnixNano()

	r.mu.Lock()
	var victims []*entry
	var names []string
	for session, e := range r.stores {
		select {
		case <-e.ready:
		default:
			continue
		}
		if e.lastUsed.Load() > cutoff {
			continue
		}
		delete(r.stores, session)
		r.evicting[session] = make(chan struct{})
		victims = append(victims, e)
		names = append(names, session)
	}
	r.mu.Unlock()

	for i, e := range victims {
		e.store.Close()

		r.mu.Lock()
		done := r.evicting[names[i]]
		delete(r.evicting, names[i])
		r.mu.Unlock()
		close(done)
	}
	return len(victims)
}

// Close stops eviction and closes every store, flushing their last snapshots.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	stores := r.stores
	r.stores = map[string]*entry{}
	r.mu.Unlock()

	close(r.stop)
	<-r.done

	var wg sync.WaitGroup
	for _, e := range stores {
		e := e
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-e.ready
			e.store.Close()
		}()
	}
	wg.Wait()
}
