package handler

import (
	"net/http"

	"bakery/internal/config"
	"bakery/internal/middleware"
	"bakery/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type OrderCreateRequest struct {
	RecipientName   string `json:"recipient_name"`
	RecipientEmail  string `json:"recipient_email"`
	RecipientPhone  string `json:"recipient_phone"`
	DeliveryAddress string `json:"delivery_address"`
	DeliveryCity    string `json:"delivery_city"`
	DeliveryState   string `json:"delivery_state"`
	PaymentMethod   string `json:"payment_method"`
	DeliveryMethod  string `json:"delivery_method"`
	Notes           string `json:"notes"`
}

// Checkout accepts guests; history needs a signed-in user.
func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, sessionMW echo.MiddlewareFunc) {
	g := e.Group("/orders")

	g.POST("", h.create, middleware.OptionalAuth(cfg), sessionMW)
	g.GET("", h.list, middleware.AuthJWT(cfg))
	g.GET("/:id", h.detail, middleware.AuthJWT(cfg))
}

func (h *OrderHandler) create(c echo.Context) error {
	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	// the idempotency key comes from the header, never the body
	idemKey := c.Request().Header.Get("X-Idempotency-Key")
	userID, _ := middleware.UserIDFromContext(c)

	out, err := h.uc.Checkout(c.Request().Context(), userID, middleware.CartSessionFromContext(c), usecase.CheckoutInput{
		IdempotencyKey:  idemKey,
		RecipientName:   req.RecipientName,
		RecipientEmail:  req.RecipientEmail,
		RecipientPhone:  req.RecipientPhone,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryCity:    req.DeliveryCity,
		DeliveryState:   req.DeliveryState,
		PaymentMethod:   req.PaymentMethod,
		DeliveryMethod:  req.DeliveryMethod,
		Notes:           req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ListMyOrders(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.GetMyOrderDetail(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
