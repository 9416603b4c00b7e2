package handler

import (
	"net/http"

	"bakery/internal/cart"
	"bakery/internal/domain/model"
	"bakery/internal/middleware"
	"bakery/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CartHandler struct {
	uc *usecase.CartUsecase
}

func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartItemRequest struct {
	ProductID       string                `json:"productId"`
	Quantity        int                   `json:"quantity"`
	SelectedOptions model.SelectedOptions `json:"selectedOptions"`
}

// newSelectedOptions absent keeps the line's options.
type UpdateCartItemRequest struct {
	ProductID          string                `json:"productId"`
	SelectedOptions    model.SelectedOptions `json:"selectedOptions"`
	Quantity           int                   `json:"quantity"`
	NewSelectedOptions model.SelectedOptions `json:"newSelectedOptions"`
}

type RemoveCartLineRequest struct {
	ProductID       string                `json:"productId"`
	SelectedOptions model.SelectedOptions `json:"selectedOptions"`
}

type CartResponse struct {
	Session string `json:"session"`
	cart.State
}

// sessionMW resolves the cart session (middleware.CartSession).
func (h *CartHandler) RegisterRoutes(e *echo.Echo, sessionMW echo.MiddlewareFunc) {
	g := e.Group("/cart", sessionMW)

	g.GET("", h.get)
	g.DELETE("", h.clear)
	g.POST("/items", h.add)
	g.PATCH("/items", h.update)
	g.DELETE("/items/:productId", h.removeItem)
	g.DELETE("/lines", h.removeLine)
}

func (h *CartHandler) get(c echo.Context) error {
	session := middleware.CartSessionFromContext(c)
	st, err := h.uc.GetCart(c.Request().Context(), session)
	return h.respond(c, session, st, err)
}

func (h *CartHandler) add(c echo.Context) error {
	var req AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	session := middleware.CartSessionFromContext(c)
	st, err := h.uc.AddItem(c.Request().Context(), session, usecase.AddCartItemInput{
		ProductID:       req.ProductID,
		Quantity:        req.Quantity,
		SelectedOptions: req.SelectedOptions,
	})
	return h.respond(c, session, st, err)
}

func (h *CartHandler) update(c echo.Context) error {
	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	session := middleware.CartSessionFromContext(c)
	st, err := h.uc.UpdateItem(c.Request().Context(), session, usecase.UpdateCartItemInput{
		ProductID:       req.ProductID,
		SelectedOptions: req.SelectedOptions,
		Quantity:        req.Quantity,
		NewOptions:      req.NewSelectedOptions,
	})
	return h.respond(c, session, st, err)
}

// removes every variant of the product
func (h *CartHandler) removeItem(c echo.Context) error {
	session := middleware.CartSessionFromContext(c)
	st, err := h.uc.RemoveItem(c.Request().Context(), session, c.Param("productId"))
	return h.respond(c, session, st, err)
}

func (h *CartHandler) removeLine(c echo.Context) error {
	var req RemoveCartLineRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	session := middleware.CartSessionFromContext(c)
	st, err := h.uc.RemoveLine(c.Request().Context(), session, model.LineRef{
		ProductID:       req.ProductID,
		SelectedOptions: req.SelectedOptions,
	})
	return h.respond(c, session, st, err)
}

func (h *CartHandler) clear(c echo.Context) error {
	session := middleware.CartSessionFromContext(c)
	st, err := h.uc.Clear(c.Request().Context(), session)
	return h.respond(c, session, st, err)
}

func (h *CartHandler) respond(c echo.Context, session string, st cart.State, err error) error {
	if err != nil {
		return writeError(c, err)
	}
	if st.Lines == nil {
		st.Lines = []model.CartLine{}
	}
	return c.JSON(http.StatusOK, CartResponse{Session: session, State: st})
}
