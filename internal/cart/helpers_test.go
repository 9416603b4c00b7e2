package cart

import (
	"context"
	"errors"
	"io"
	"sync"

	"bakery/internal/domain/model"
	"bakery/internal/repository"

	"github.com/sirupsen/logrus"
)

// =====================
// Test doubles
// =====================

type fakeDirectory struct {
	mu       sync.Mutex
	products map[string]model.Product
	errs     map[string]error
	holds    map[string]chan struct{}
	entered  chan string
	calls    map[string]int
}

func newFakeDirectory(products ...model.Product) *fakeDirectory {
	d := &fakeDirectory{
		products: map[string]model.Product{},
		errs:     map[string]error{},
		holds:    map[string]chan struct{}{},
		entered:  make(chan string, 16),
		calls:    map[string]int{},
	}
	for _, p := range products {
		d.products[p.ID] = p
	}
	return d
}

// hold blocks the next lookup of id until the returned func is called.
func (d *fakeDirectory) hold(id string) (release func()) {
	ch := make(chan struct{})
	d.mu.Lock()
	d.holds[id] = ch
	d.mu.Unlock()
	return func() { close(ch) }
}

func (d *fakeDirectory) FindByID(ctx context.Context, id string) (model.Product, error) {
	d.mu.Lock()
	d.calls[id]++
	ch, held := d.holds[id]
	delete(d.holds, id)
	d.mu.Unlock()

	if held {
		d.entered <- id
		select {
		case <-ch:
		case <-ctx.Done():
			return model.Product{}, ctx.Err()
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err, ok := d.errs[id]; ok {
		return model.Product{}, err
	}
	p, ok := d.products[id]
	if !ok {
		return model.Product{}, repository.ErrNotFound
	}
	return p, nil
}

func (d *fakeDirectory) callsFor(id string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[id]
}

type fakeStorage struct {
	mu      sync.Mutex
	data    map[string][]byte
	setErr  error
	getErr  error
	setHits int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{data: map[string][]byte{}}
}

func (s *fakeStorage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	v, ok := s.data[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *fakeStorage) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setHits++
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *fakeStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *fakeStorage) raw(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return string(v), ok
}

var errUnavailable = errors.New("connection refused")

func discardLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// cake is the Red Velvet Cake of the menu, reduced to its Size option.
func cake() model.Product {
	return model.Product{
		ID:    "A",
		Name:  "Red Velvet Cake",
		Price: 12000,
		Options: []model.ProductOption{
			{Name: "Size", Choices: []model.OptionChoice{
				{ID: "small", Name: "Small", PriceAdjustment: 0},
				{ID: "medium", Name: "Medium", PriceAdjustment: 3000},
				{ID: "large", Name: "Large", PriceAdjustment: 6000},
			}},
		},
	}
}

func bread() model.Product {
	return model.Product{ID: "B", Name: "Agege Bread", Price: 1500}
}

func size(v string) model.SelectedOptions {
	return model.SelectedOptions{"Size": v}
}
