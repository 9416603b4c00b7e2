package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"bakery/internal/domain/model"
	"bakery/internal/pricing"
	repo "bakery/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("bakery/internal/usecase")

// CheckoutValidator checks the delivery form.
type CheckoutValidator interface {
	ValidateCheckout(ctx context.Context, in CheckoutInput) error
}

type OrderUsecase struct {
	tx        repo.TransactionManager
	products  repo.ProductRepository
	sessions  CartSessions
	validator CheckoutValidator
	events    repo.OrderEventPublisher
	log       *logrus.Entry

	settleTimeout time.Duration
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	products repo.ProductRepository,
	sessions CartSessions,
	validator CheckoutValidator,
	events repo.OrderEventPublisher,
	log *logrus.Entry,
) *OrderUsecase {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &OrderUsecase{
		tx:            tx,
		products:      products,
		sessions:      sessions,
		validator:     validator,
		events:        events,
		log:           log.WithField("component", "orders"),
		settleTimeout: 3 * time.Second,
	}
}

type CheckoutInput struct {
	IdempotencyKey  string
	RecipientName   string
	RecipientEmail  string
	RecipientPhone  string
	DeliveryAddress string
	DeliveryCity    string
	DeliveryState   string
	PaymentMethod   string
	DeliveryMethod  string
	Notes           string
}

type OrderItemOutput struct {
	ProductID       string                `json:"product_id"`
	Name            string                `json:"name"`
	Image           string                `json:"image,omitempty"`
	Price           int64                 `json:"price"`
	Quantity        int                   `json:"quantity"`
	SelectedOptions model.SelectedOptions `json:"selected_options,omitempty"`
}

type OrderOutput struct {
	ID              string            `json:"id"`
	UserID          string            `json:"user_id,omitempty"`
	Status          string            `json:"status"`
	TotalAmount     int64             `json:"total_amount"`
	RecipientName   string            `json:"recipient_name"`
	RecipientEmail  string            `json:"recipient_email"`
	RecipientPhone  string            `json:"recipient_phone"`
	DeliveryAddress string            `json:"delivery_address"`
	DeliveryCity    string            `json:"delivery_city,omitempty"`
	DeliveryState   string            `json:"delivery_state,omitempty"`
	PaymentMethod   string            `json:"payment_method,omitempty"`
	DeliveryMethod  string            `json:"delivery_method,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	Items           []OrderItemOutput `json:"items"`
}

// Checkout turns the session's cart into an order. userID is empty for
// guests. The same idempotency key returns the order it created first.
func (u *OrderUsecase) Checkout(ctx context.Context, userID string, session string, in CheckoutInput) (OrderOutput, error) {
	ctx, span := tracer.Start(ctx, "order.checkout",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.Bool("order.guest", userID == "")),
	)
	defer span.End()

	out, err := u.checkout(ctx, userID, session, in)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return OrderOutput{}, err
	}
	span.SetAttributes(
		attribute.String("order.id", out.ID),
		attribute.Int64("order.total", out.TotalAmount),
	)
	return out, nil
}

func (u *OrderUsecase) checkout(ctx context.Context, userID string, session string, in CheckoutInput) (OrderOutput, error) {
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || len(key) > 255 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}
	if err := u.validator.ValidateCheckout(ctx, in); err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid input")
	}

	// guests share an empty user id; their keys are scoped by cart session
	guest := ""
	if userID == "" {
		guest = strings.TrimSpace(session)
		if guest == "" {
			return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "cart session required")
		}
	}

	// replayed request
	if out, found, err := u.findExisting(ctx, userID, guest, key); err != nil || found {
		return out, err
	}

	store, err := u.sessions.Get(session)
	if err != nil {
		return OrderOutput{}, cartError(err)
	}
	sctx, cancel := context.WithTimeout(ctx, u.settleTimeout)
	st, err := store.Settle(sctx)
	cancel()
	if err != nil {
		return OrderOutput{}, cartError(err)
	}
	if len(st.Lines) == 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}

	items, total, err := u.snapshot(ctx, st.Lines)
	if err != nil {
		return OrderOutput{}, err
	}

	now := time.Now()
	order := model.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		GuestSession:    guest,
		Status:          model.OrderStatusPending,
		TotalAmount:     total,
		RecipientName:   strings.TrimSpace(in.RecipientName),
		RecipientEmail:  strings.TrimSpace(in.RecipientEmail),
		RecipientPhone:  strings.TrimSpace(in.RecipientPhone),
		DeliveryAddress: strings.TrimSpace(in.DeliveryAddress),
		DeliveryCity:    strings.TrimSpace(in.DeliveryCity),
		DeliveryState:   strings.TrimSpace(in.DeliveryState),
		PaymentMethod:   strings.TrimSpace(in.PaymentMethod),
		DeliveryMethod:  strings.TrimSpace(in.DeliveryMethod),
		Notes:           strings.TrimSpace(in.Notes),
		IdempotencyKey:  key,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var (
		out     OrderOutput
		created bool
	)
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orderID, err := r.Orders().Create(ctx, order)
		if errors.Is(err, repo.ErrConflict) {
			// lost a race on the same key
			return errIdempotencyRace
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		order.ID = orderID

		if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(order, items)
		created = true
		return nil
	})
	if errors.Is(err, errIdempotencyRace) {
		existing, found, ferr := u.findExisting(ctx, userID, guest, key)
		if ferr != nil {
			return OrderOutput{}, ferr
		}
		if !found {
			return OrderOutput{}, NewHTTPError(http.StatusConflict, "idempotency conflict")
		}
		return existing, nil
	}
	if err != nil {
		return OrderOutput{}, err
	}

	if created {
		// only what was ordered; lines added meanwhile stay in the cart
		store.Deduct(st.Lines)
		u.publish(order, items)
	}
	return out, nil
}

var errIdempotencyRace = errors.New("idempotency race")

func (u *OrderUsecase) findExisting(ctx context.Context, userID, guest, key string) (OrderOutput, bool, error) {
	var (
		out   OrderOutput
		found bool
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		existing, ok, err := r.Orders().FindByIdempotencyKey(ctx, userID, guest, key)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			return nil
		}
		items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = toOrderOutput(existing, items)
		found = true
		return nil
	})
	if err != nil {
		return OrderOutput{}, false, err
	}
	return out, found, nil
}

// snapshot prices every line against the current menu. A line whose product
// is gone or no longer available blocks the checkout.
func (u *OrderUsecase) snapshot(ctx context.Context, lines []model.CartLine) ([]model.OrderItem, int64, error) {
	products := map[string]model.Product{}
	items := make([]model.OrderItem, 0, len(lines))
	var total int64

	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok {
			var err error
			p, err = u.products.FindByID(ctx, l.ProductID)
			if errors.Is(err, repo.ErrNotFound) || (err == nil && !p.Available) {
				return nil, 0, NewHTTPError(http.StatusBadRequest, "invalid")
			}
			if err != nil {
				return nil, 0, NewHTTPError(http.StatusInternalServerError, "db error")
			}
			products[l.ProductID] = p
		}

		unit := pricing.ResolvePrice(p, l.SelectedOptions)
		items = append(items, model.OrderItem{
			ProductID:       p.ID,
			ProductName:     p.Name,
			ProductImage:    p.ImageURL,
			Quantity:        l.Quantity,
			Price:           unit,
			SelectedOptions: l.SelectedOptions.Clone(),
		})
		total += pricing.LineTotal(l, p)
	}
	return items, total, nil
}

// publish is best effort; the order is already committed.
func (u *OrderUsecase) publish(order model.Order, items []model.OrderItem) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := u.events.PublishOrderPlaced(ctx, order, items); err != nil {
		u.log.WithError(err).WithField("order_id", order.ID).Warn("publish order.placed failed")
	}
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID string) ([]OrderOutput, error) {
	if userID == "" {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	// fixed first page for now
	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByUserID(ctx, userID, 1, 50)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID string, orderID string) (OrderOutput, error) {
	if userID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if _, err := uuid.Parse(orderID); err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			// other users' orders do not exist
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID:       it.ProductID,
			Name:            it.ProductName,
			Image:           it.ProductImage,
			Price:           it.Price,
			Quantity:        it.Quantity,
			SelectedOptions: it.SelectedOptions,
		})
	}

	return OrderOutput{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          string(o.Status),
		TotalAmount:     o.TotalAmount,
		RecipientName:   o.RecipientName,
		RecipientEmail:  o.RecipientEmail,
		RecipientPhone:  o.RecipientPhone,
		DeliveryAddress: o.DeliveryAddress,
		DeliveryCity:    o.DeliveryCity,
		DeliveryState:   o.DeliveryState,
		PaymentMethod:   o.PaymentMethod,
		DeliveryMethod:  o.DeliveryMethod,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		Items:           outItems,
	}
}
