package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"bakery/internal/cart"
	"bakery/internal/config"
	"bakery/internal/domain/model"
	"bakery/internal/handler"
	"bakery/internal/infra/broker"
	"bakery/internal/infra/catalog"
	"bakery/internal/infra/kv"
	"bakery/internal/middleware"
	repo "bakery/internal/repository"
	"bakery/internal/usecase"
	"bakery/internal/validator"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "handler_test_secret"
	aliceID    = "0b7d6c1e-3f42-4e8a-9a51-6c2d8e4f1a07"
	bobID      = "9c1e4a2b-7d35-4f60-8b19-3e5a7c2d6f48"
)

type errorBody struct {
	Error string `json:"error"`
}

type cartBody struct {
	Session     string           `json:"session"`
	Lines       []model.CartLine `json:"lines"`
	TotalItems  int              `json:"totalItems"`
	TotalAmount int64            `json:"totalAmount"`
}

// =====================
// in-memory order store
// =====================

type memOrders struct {
	mu     sync.Mutex
	orders map[string]model.Order
	items  map[string][]model.OrderItem
}

func newMemOrders() *memOrders {
	return &memOrders{orders: map[string]model.Order{}, items: map[string][]model.OrderItem{}}
}

func (m *memOrders) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(memRepos{m})
}

type memRepos struct{ m *memOrders }

func (r memRepos) Orders() repo.OrderRepository         { return memOrderRepo(r) }
func (r memRepos) OrderItems() repo.OrderItemRepository { return memItemRepo(r) }

type memOrderRepo struct{ m *memOrders }

func (r memOrderRepo) FindByID(ctx context.Context, id string) (model.Order, error) {
	o, ok := r.m.orders[id]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (r memOrderRepo) ListByUserID(ctx context.Context, userID string, page, limit int) ([]model.Order, int64, error) {
	var out []model.Order
	for _, o := range r.m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (r memOrderRepo) Create(ctx context.Context, o model.Order) (string, error) {
	for _, existing := range r.m.orders {
		if existing.UserID == o.UserID && existing.GuestSession == o.GuestSession && existing.IdempotencyKey == o.IdempotencyKey {
			return "", repo.ErrConflict
		}
	}
	r.m.orders[o.ID] = o
	return o.ID, nil
}

func (r memOrderRepo) FindByIdempotencyKey(ctx context.Context, userID, guestSession, key string) (model.Order, bool, error) {
	for _, o := range r.m.orders {
		if o.UserID == userID && o.GuestSession == guestSession && o.IdempotencyKey == key {
			return o, true, nil
		}
	}
	return model.Order{}, false, nil
}

type memItemRepo struct{ m *memOrders }

func (r memItemRepo) CreateBulk(ctx context.Context, orderID string, items []model.OrderItem) error {
	r.m.items[orderID] = append([]model.OrderItem(nil), items...)
	return nil
}

func (r memItemRepo) ListByOrderID(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	return r.m.items[orderID], nil
}

type memProfiles struct {
	mu       sync.Mutex
	profiles map[string]model.Profile
}

func (p *memProfiles) FindByID(ctx context.Context, id string) (model.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	got, ok := p.profiles[id]
	if !ok {
		return model.Profile{}, repo.ErrNotFound
	}
	return got, nil
}

func (p *memProfiles) Upsert(ctx context.Context, in model.Profile) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profiles[in.ID] = in
	return nil
}

// =====================
// app wiring
// =====================

type testApp struct {
	e      *echo.Echo
	orders *memOrders
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)
	entry := logrus.NewEntry(log)

	cfg := config.Config{GoEnv: "test", JWTSecret: testSecret}
	menu := catalog.NewMemoryCatalog(catalog.SeedProducts(), catalog.SeedCategories())

	reg := cart.NewRegistry(context.Background(), menu, kv.NewMemoryStorage(), cart.Config{}, entry)
	t.Cleanup(reg.Close)

	orders := newMemOrders()
	profiles := &memProfiles{profiles: map[string]model.Profile{}}

	e := echo.New()
	session := middleware.CartSession(false)

	handler.NewProductHandler(usecase.NewProductUsecase(menu)).RegisterRoutes(e)
	handler.NewCategoryHandler(usecase.NewCategoryUsecase(menu)).RegisterRoutes(e)
	handler.NewCartHandler(usecase.NewCartUsecase(reg, menu, time.Second)).RegisterRoutes(e, session)
	handler.NewOrderHandler(usecase.NewOrderUsecase(
		orders, menu, reg, validator.NewCheckoutValidator(), broker.NoopPublisher{}, entry,
	)).RegisterRoutes(e, cfg, session)
	handler.NewProfileHandler(usecase.NewProfileUsecase(profiles)).RegisterRoutes(e, cfg)

	return &testApp{e: e, orders: orders}
}

type reqOpt func(*http.Request)

func withSession(s string) reqOpt {
	return func(r *http.Request) { r.Header.Set(middleware.CartSessionHeader, s) }
}

func withBearer(sub string) reqOpt {
	return func(r *http.Request) {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": sub,
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		s, _ := tok.SignedString([]byte(testSecret))
		r.Header.Set("Authorization", "Bearer "+s)
	}
}

func withIdempotencyKey(k string) reqOpt {
	return func(r *http.Request) { r.Header.Set("X-Idempotency-Key", k) }
}

func (a *testApp) do(t *testing.T, method, path string, body any, opts ...reqOpt) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, o := range opts {
		o(req)
	}

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
