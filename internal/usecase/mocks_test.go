package usecase_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"bakery/internal/domain/model"
	repo "bakery/internal/repository"
	"bakery/internal/usecase"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// Mocks
// =====================

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) FindByID(ctx context.Context, id string) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) ListAvailable(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) ListFeatured(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) ListByCategorySlug(ctx context.Context, slug string) ([]model.Product, error) {
	args := m.Called(ctx, slug)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID string, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (string, error) {
	args := m.Called(ctx, order)
	return args.String(0), args.Error(1)
}

func (m *OrderRepoMock) FindByIdempotencyKey(ctx context.Context, userID string, guestSession string, key string) (model.Order, bool, error) {
	args := m.Called(ctx, userID, guestSession, key)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID string, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

// fakeTx runs fn directly with the mocks.
type fakeTx struct {
	orders *OrderRepoMock
	items  *OrderItemRepoMock
}

func (f *fakeTx) Orders() repo.OrderRepository         { return f.orders }
func (f *fakeTx) OrderItems() repo.OrderItemRepository { return f.items }

func (f *fakeTx) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(f)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) PublishOrderPlaced(ctx context.Context, order model.Order, items []model.OrderItem) error {
	args := m.Called(ctx, order, items)
	return args.Error(0)
}

type ProfileRepoMock struct{ mock.Mock }

func (m *ProfileRepoMock) FindByID(ctx context.Context, id string) (model.Profile, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Profile)
	return p, args.Error(1)
}

func (m *ProfileRepoMock) Upsert(ctx context.Context, p model.Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

type CategoryRepoMock struct{ mock.Mock }

func (m *CategoryRepoMock) List(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Category)
	return items, args.Error(1)
}

func (m *CategoryRepoMock) FindBySlug(ctx context.Context, slug string) (model.Category, error) {
	args := m.Called(ctx, slug)
	c, _ := args.Get(0).(model.Category)
	return c, args.Error(1)
}

type validatorStub struct{ err error }

func (v validatorStub) ValidateCheckout(ctx context.Context, in usecase.CheckoutInput) error {
	return v.err
}

var errDB = errors.New("db down")

// =====================
// helpers
// =====================

func assertHTTPError(t *testing.T, err error, status int, msg string) {
	t.Helper()
	require.Error(t, err)
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok, "expected HTTPError, got %v", err)
	assert.Equal(t, status, he.Status)
	if msg != "" {
		assert.Contains(t, he.Message, msg)
	}
}

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

