package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"bakery/internal/cart"
	"bakery/internal/domain/model"
	repo "bakery/internal/repository"
)

// CartSessions hands out the cart store of a session.
type CartSessions interface {
	Get(session string) (*cart.Store, error)
}

// CartUsecase backs /cart. Every call answers with the settled state, i.e.
// totals priced for the mutation it made.
type CartUsecase struct {
	sessions      CartSessions
	productRepo   repo.ProductRepository
	settleTimeout time.Duration
}

func NewCartUsecase(sessions CartSessions, productRepo repo.ProductRepository, settleTimeout time.Duration) *CartUsecase {
	if settleTimeout <= 0 {
		settleTimeout = 3 * time.Second
	}
	return &CartUsecase{
		sessions:      sessions,
		productRepo:   productRepo,
		settleTimeout: settleTimeout,
	}
}

type AddCartItemInput struct {
	ProductID       string
	Quantity        int
	SelectedOptions model.SelectedOptions
}

// Line is addressed by product and its current options; NewOptions nil
// keeps them.
type UpdateCartItemInput struct {
	ProductID       string
	SelectedOptions model.SelectedOptions
	Quantity        int
	NewOptions      model.SelectedOptions
}

func (u *CartUsecase) GetCart(ctx context.Context, session string) (cart.State, error) {
	s, err := u.store(session)
	if err != nil {
		return cart.State{}, err
	}
	return u.settle(ctx, s)
}

// Requests are validated before the session store is touched, so rejected
// calls never load a cart.
func (u *CartUsecase) AddItem(ctx context.Context, session string, in AddCartItemInput) (cart.State, error) {
	if in.Quantity < 1 || in.Quantity > 99 {
		return cart.State{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}
	if err := u.checkSelection(ctx, in.ProductID, in.SelectedOptions); err != nil {
		return cart.State{}, err
	}
	s, err := u.store(session)
	if err != nil {
		return cart.State{}, err
	}

	err = s.AddItem(model.CartLine{
		ProductID:       strings.TrimSpace(in.ProductID),
		Quantity:        in.Quantity,
		SelectedOptions: in.SelectedOptions,
	})
	if err != nil {
		return cart.State{}, cartError(err)
	}
	return u.settle(ctx, s)
}

func (u *CartUsecase) UpdateItem(ctx context.Context, session string, in UpdateCartItemInput) (cart.State, error) {
	if in.Quantity < 1 || in.Quantity > 99 {
		return cart.State{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}
	if in.NewOptions != nil {
		if err := u.checkSelection(ctx, in.ProductID, in.NewOptions); err != nil {
			return cart.State{}, err
		}
	}
	s, err := u.store(session)
	if err != nil {
		return cart.State{}, err
	}

	ref := model.LineRef{ProductID: strings.TrimSpace(in.ProductID), SelectedOptions: in.SelectedOptions}
	if err := s.UpdateItem(ref, in.Quantity, in.NewOptions); err != nil {
		return cart.State{}, cartError(err)
	}
	return u.settle(ctx, s)
}

// RemoveItem drops every variant of the product.
func (u *CartUsecase) RemoveItem(ctx context.Context, session string, productID string) (cart.State, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return cart.State{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	s, err := u.store(session)
	if err != nil {
		return cart.State{}, err
	}

	s.RemoveItem(productID)
	return u.settle(ctx, s)
}

func (u *CartUsecase) RemoveLine(ctx context.Context, session string, ref model.LineRef) (cart.State, error) {
	ref.ProductID = strings.TrimSpace(ref.ProductID)
	if ref.ProductID == "" {
		return cart.State{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	s, err := u.store(session)
	if err != nil {
		return cart.State{}, err
	}

	s.RemoveLine(ref)
	return u.settle(ctx, s)
}

func (u *CartUsecase) Clear(ctx context.Context, session string) (cart.State, error) {
	s, err := u.store(session)
	if err != nil {
		return cart.State{}, err
	}
	s.ClearCart()
	return u.settle(ctx, s)
}

func (u *CartUsecase) store(session string) (*cart.Store, error) {
	s, err := u.sessions.Get(session)
	if err != nil {
		return nil, cartError(err)
	}
	return s, nil
}

func (u *CartUsecase) settle(ctx context.Context, s *cart.Store) (cart.State, error) {
	ctx, cancel := context.WithTimeout(ctx, u.settleTimeout)
	defer cancel()

	st, err := s.Settle(ctx)
	if err != nil {
		return cart.State{}, cartError(err)
	}
	return st, nil
}

// checkSelection rejects unknown products and option values at the edge.
// Lines already in a cart are still tolerated by pricing when the menu
// changes later.
func (u *CartUsecase) checkSelection(ctx context.Context, productID string, selected model.SelectedOptions) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && !p.Available) {
		return NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	for _, name := range selected.Keys() {
		opt, ok := p.Option(name)
		if !ok {
			return NewHTTPError(http.StatusBadRequest, "invalid option: "+name)
		}
		if _, ok := opt.Choice(selected[name]); !ok {
			return NewHTTPError(http.StatusBadRequest, "invalid choice for "+name)
		}
	}
	return nil
}

func cartError(err error) error {
	switch {
	case errors.Is(err, cart.ErrInvalidArgument):
		return NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, cart.ErrLineNotFound):
		return NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, context.DeadlineExceeded):
		return NewHTTPError(http.StatusGatewayTimeout, "cart pricing timed out")
	case errors.Is(err, cart.ErrClosed), errors.Is(err, context.Canceled):
		return NewHTTPError(http.StatusServiceUnavailable, "cart unavailable")
	default:
		return NewHTTPError(http.StatusInternalServerError, "cart error")
	}
}
