package server

import (
	"bakery/internal/config"
	"bakery/internal/handler"
	mw "bakery/internal/middleware"

	"github.com/labstack/echo/v4"
)

// Orders and Profile are nil when no database is configured.
type Handlers struct {
	Products   *handler.ProductHandler
	Categories *handler.CategoryHandler
	Cart       *handler.CartHandler
	Orders     *handler.OrderHandler
	Profile    *handler.ProfileHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	session := mw.CartSession(!cfg.IsDev())

	h.Products.RegisterRoutes(e)
	h.Categories.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e, session)

	if h.Orders != nil {
		h.Orders.RegisterRoutes(e, cfg, session)
	}
	if h.Profile != nil {
		h.Profile.RegisterRoutes(e, cfg)
	}
}
