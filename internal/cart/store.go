// Package cart keeps the authoritative list of cart lines, prices them against
// the product directory and persists them to durable key-value storage.
//
// Mutations are applied synchronously to the in-memory list. Each mutation
// bumps a generation counter and starts an asynchronous recomputation of the
// total amount; a recomputation only commits when no newer mutation happened
// since it started. Persistence runs in the background and never blocks a
// mutation.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"bakery/internal/domain/model"
	"bakery/internal/pricing"
	"bakery/internal/repository"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const DefaultKey = "cart"

var tracer = otel.Tracer("bakery/internal/cart")

// ProductDirectory resolves product records for pricing.
// A missing product is reported as repository.ErrNotFound.
type ProductDirectory interface {
	FindByID(ctx context.Context, id string) (model.Product, error)
}

// IdleTTL is only read by Registry: sessions untouched for that long are
// closed and dropped from memory. Zero disables eviction.
type Config struct {
	Key           string
	LookupTimeout time.Duration
	WriteTimeout  time.Duration
	Concurrency   int
	IdleTTL       time.Duration
}

func (c Config) withDefaults() Config {
	if c.Key == "" {
		c.Key = DefaultKey
	}
	if c.LookupTimeout <= 0 {
		c.LookupTimeout = 2 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 2 * time.Second
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 8
	}
	return c
}

// State is what subscribers observe.
// Orphaned lists product ids that could not be resolved by the last committed
// recomputation; those lines contribute 0 to TotalAmount.
type State struct {
	Lines       []model.CartLine `json:"lines"`
	TotalItems  int              `json:"totalItems"`
	TotalAmount int64            `json:"totalAmount"`
	Orphaned    []string         `json:"orphaned,omitempty"`
	Generation  uint64           `json:"-"`
	Priced      bool             `json:"-"`
}

func (s State) clone() State {
	out := s
	out.Lines = make([]model.CartLine, len(s.Lines))
	for i, l := range s.Lines {
		out.Lines[i] = l.Clone()
	}
	if s.Orphaned != nil {
		out.Orphaned = append([]string(nil), s.Orphaned...)
	}
	return out
}

type Store struct {
	products ProductDirectory
	cfg      Config
	log      *logrus.Entry

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	lines       []model.CartLine
	totalItems  int
	totalAmount int64
	orphaned    []string
	generation  uint64
	priced      uint64
	settled     chan struct{}
	closed      bool

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int

	// serializes deliveries so subscribers never see an older generation
	// after a newer one
	deliverMu     sync.Mutex
	lastDelivered uint64

	inflight sync.WaitGroup
	persist  *persister
}

// NewStore loads the cart stored under cfg.Key. An absent or malformed value
// yields an empty cart; stored lines are reconciled before use.
func NewStore(ctx context.Context, products ProductDirectory, storage repository.CartStorage, cfg Config, log *logrus.Entry) *Store {
	cfg = cfg.withDefaults()
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithFields(logrus.Fields{"component": "cart", "key": cfg.Key})

	sctx, cancel := context.WithCancel(ctx)
	s := &Store{
		products: products,
		cfg:      cfg,
		log:      log,
		ctx:      sctx,
		cancel:   cancel,
		subs:     make(map[int]func(State)),
		settled:  make(chan struct{}),
		persist:  newPersister(storage, cfg.Key, cfg.WriteTimeout, log),
	}

	s.lines = load(sctx, storage, cfg, log)

	s.mu.Lock()
	gen, snapshot := s.advanceLocked()
	s.inflight.Add(1)
	s.mu.Unlock()

	go s.recompute(gen, snapshot)
	return s
}

func load(ctx context.Context, storage repository.CartStorage, cfg Config, log *logrus.Entry) []model.CartLine {
	rctx, cancel := context.WithTimeout(ctx, cfg.LookupTimeout)
	defer cancel()

	data, err := storage.Get(rctx, cfg.Key)
	if errors.Is(err, repository.ErrNotFound) {
		return []model.CartLine{}
	}
	if err != nil {
		log.WithError(err).Warn("load cart failed, starting empty")
		return []model.CartLine{}
	}

	lines, err := Decode(data)
	if err != nil {
		log.WithError(err).Warn("stored cart is malformed, starting empty")
		return []model.CartLine{}
	}
	return Reconcile(lines)
}

// AddItem merges line into the existing line with the same product and
// options, or appends it.
func (s *Store) AddItem(line model.CartLine) error {
	if line.ProductID == "" {
		return fmt.Errorf("%w: product id is required", ErrInvalidArgument)
	}
	if line.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be >= 1", ErrInvalidArgument)
	}

	return s.mutate(func(lines []model.CartLine) ([]model.CartLine, bool, error) {
		if i := indexOf(lines, line.Ref()); i >= 0 {
			lines[i].Quantity += line.Quantity
			return lines, true, nil
		}
		l := line.Clone()
		l.UnitPrice = nil
		return append(lines, l), true, nil
	})
}

// UpdateItem sets the quantity of the line identified by ref. A nil
// newOptions keeps the current options. When the new options equal those of
// another line, that line is folded into the updated one.
func (s *Store) UpdateItem(ref model.LineRef, quantity int, newOptions model.SelectedOptions) error {
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be >= 1", ErrInvalidArgument)
	}

	return s.mutate(func(lines []model.CartLine) ([]model.CartLine, bool, error) {
		i := indexOf(lines, ref)
		if i < 0 {
			return lines, false, ErrLineNotFound
		}

		unchanged := lines[i].Quantity == quantity &&
			(newOptions == nil || newOptions.Equal(lines[i].SelectedOptions))
		if unchanged {
			return lines, false, nil
		}

		lines[i].Quantity = quantity
		if newOptions == nil {
			return lines, true, nil
		}

		lines[i].SelectedOptions = newOptions.Clone()
		for j := range lines {
			if j != i && lines[j].Matches(lines[i].Ref()) {
				lines[i].Quantity += lines[j].Quantity
				return append(lines[:j], lines[j+1:]...), true, nil
			}
		}
		return lines, true, nil
	})
}

// RemoveItem removes every option variant of the product.
func (s *Store) RemoveItem(productID string) {
	s.remove(func(l model.CartLine) bool { return l.ProductID == productID })
}

// RemoveLine removes the single variant identified by ref.
func (s *Store) RemoveLine(ref model.LineRef) {
	s.remove(func(l model.CartLine) bool { return l.Matches(ref) })
}

// Deduct lowers each matching variant by the given quantity and drops lines
// that reach zero. Lines without a match are ignored. Quantity added to a
// variant after the given lines were taken stays in the cart.
func (s *Store) Deduct(lines []model.CartLine) {
	err := s.mutate(func(cur []model.CartLine) ([]model.CartLine, bool, error) {
		changed := false
		for _, d := range lines {
			i := indexOf(cur, d.Ref())
			if i < 0 || d.Quantity < 1 {
				continue
			}
			changed = true
			if cur[i].Quantity > d.Quantity {
				cur[i].Quantity -= d.Quantity
				continue
			}
			cur = append(cur[:i], cur[i+1:]...)
		}
		return cur, changed, nil
	})
	if err != nil {
		s.log.WithError(err).Warn("deduct ignored")
	}
}

func (s *Store) ClearCart() {
	if err := s.mutate(func(lines []model.CartLine) ([]model.CartLine, bool, error) {
		return []model.CartLine{}, true, nil
	}); err != nil {
		s.log.WithError(err).Warn("clear cart ignored")
	}
}

func (s *Store) remove(match func(model.CartLine) bool) {
	err := s.mutate(func(lines []model.CartLine) ([]model.CartLine, bool, error) {
		kept := lines[:0]
		for _, l := range lines {
			if !match(l) {
				kept = append(kept, l)
			}
		}
		return kept, len(kept) != len(lines), nil
	})
	if err != nil {
		s.log.WithError(err).Warn("remove ignored")
	}
}

// mutate applies fn to a private copy of the lines. Unchanged results are
// not committed, so repeated removals are no-ops.
func (s *Store) mutate(fn func([]model.CartLine) ([]model.CartLine, bool, error)) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	work := cloneLines(s.lines)
	next, changed, err := fn(work)
	if err != nil || !changed {
		s.mu.Unlock()
		return err
	}

	s.lines = next
	gen, snapshot := s.advanceLocked()
	s.inflight.Add(1)
	s.mu.Unlock()

	if data, err := Encode(snapshot); err != nil {
		s.log.WithError(err).Error("encode cart failed")
	} else if !s.persist.enqueue(gen, data) {
		s.log.WithField("generation", gen).Debug("older snapshot not persisted")
	}

	go s.recompute(gen, snapshot)
	return nil
}

// advanceLocked bumps the generation, refreshes the synchronous totals and
// returns a snapshot of the lines for pricing.
func (s *Store) advanceLocked() (uint64, []model.CartLine) {
	s.generation++
	if s.priced == s.generation-1 {
		// previous generation was settled; open a new wait channel
		s.settled = make(chan struct{})
	}

	total := 0
	for _, l := range s.lines {
		total += l.Quantity
	}
	s.totalItems = total

	return s.generation, cloneLines(s.lines)
}

func (s *Store) recompute(gen uint64, lines []model.CartLine) {
	defer s.inflight.Done()

	ctx, span := tracer.Start(s.ctx, "cart.recompute")
	span.SetAttributes(
		attribute.Int64("cart.generation", int64(gen)),
		attribute.Int("cart.lines", len(lines)),
	)
	defer span.End()

	products := s.resolve(ctx, lines)
	if ctx.Err() != nil {
		// closed while resolving
		return
	}

	var amount int64
	unit := make([]*int64, len(lines))
	var orphaned []string
	for i, l := range lines {
		p, ok := products[l.ProductID]
		if !ok {
			orphaned = appendUnique(orphaned, l.ProductID)
			continue
		}
		price := pricing.ResolvePrice(p, l.SelectedOptions)
		unit[i] = &price
		amount += price * int64(l.Quantity)
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.log.WithFields(logrus.Fields{"generation": gen}).Debug("stale recomputation discarded")
		return
	}
	for i := range s.lines {
		s.lines[i].UnitPrice = unit[i]
	}
	s.totalAmount = amount
	s.orphaned = orphaned
	s.priced = gen
	close(s.settled)
	state := s.stateLocked()
	s.mu.Unlock()

	s.deliver(state)
}

// resolve looks up each distinct product concurrently. Products that are
// missing or fail to load are absent from the result.
func (s *Store) resolve(ctx context.Context, lines []model.CartLine) map[string]model.Product {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = appendUnique(ids, l.ProductID)
	}

	var (
		mu  sync.Mutex
		out = make(map[string]model.Product, len(ids))
		g   errgroup.Group
	)
	g.SetLimit(s.cfg.Concurrency)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			lctx, cancel := context.WithTimeout(ctx, s.cfg.LookupTimeout)
			defer cancel()

			p, err := s.products.FindByID(lctx, id)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				s.log.WithField("product_id", id).Warn("orphaned cart line: product not found")
				return nil
			case err != nil:
				s.log.WithError(err).WithField("product_id", id).Error("product lookup failed, pricing line as 0")
				return nil
			}

			mu.Lock()
			out[id] = p
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Snapshot returns a copy of the current state. TotalAmount may belong to an
// older generation while a recomputation is in flight; Priced tells.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Store) stateLocked() State {
	st := State{
		Lines:       cloneLines(s.lines),
		TotalItems:  s.totalItems,
		TotalAmount: s.totalAmount,
		Generation:  s.generation,
		Priced:      s.priced == s.generation,
	}
	if len(s.orphaned) > 0 {
		st.Orphaned = append([]string(nil), s.orphaned...)
	}
	return st
}

// Settle waits until the latest mutation is priced and persisted.
func (s *Store) Settle(ctx context.Context) (State, error) {
	for {
		s.mu.Lock()
		if s.priced == s.generation {
			st := s.stateLocked()
			s.mu.Unlock()
			if err := s.persist.flush(ctx); err != nil {
				return st, err
			}
			return st, nil
		}
		if s.closed {
			st := s.stateLocked()
			s.mu.Unlock()
			return st, ErrClosed
		}
		ch := s.settled
		s.mu.Unlock()

		select {
		case <-ch:
		case <-s.ctx.Done():
			return s.Snapshot(), ErrClosed
		case <-ctx.Done():
			return s.Snapshot(), ctx.Err()
		}
	}
}

// Subscribe registers fn for every committed state. fn runs on a background
// goroutine and may call the store's mutation methods.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) deliver(st State) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	if st.Generation < s.lastDelivered {
		return
	}
	s.lastDelivered = st.Generation

	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(State), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(st.clone())
	}
}

// Close abandons in-flight lookups and returns once the last snapshot has
// been written. Mutations after Close fail with ErrClosed.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.inflight.Wait()
	s.persist.close()
}

func cloneLines(lines []model.CartLine) []model.CartLine {
	out := make([]model.CartLine, len(lines))
	for i, l := range lines {
		out[i] = l.Clone()
	}
	return out
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
