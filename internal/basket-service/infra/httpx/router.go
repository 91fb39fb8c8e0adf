package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/ecommerce-basket/internal/basket-service/infra/httpx/middlewares"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachRequestID)
	r.Use(middlewares.Tracing)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/basket", func(r chi.Router) {
		r.Post("/", handler.StoreBasket)
		r.Post("/checkout", handler.CheckoutBasket)
		r.Get("/{userName}", handler.GetBasket)
		r.Delete("/{userName}", handler.DeleteBasket)
	})
	return r
}
