package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/ecommerce-basket/internal/basket-service/app/basket"
	"github.com/jcmexdev/ecommerce-basket/internal/basket-service/domain"
	"github.com/jcmexdev/ecommerce-basket/internal/pkg/mediator"
)

// Handler translates HTTP requests into mediator requests.
type Handler struct {
	m      *mediator.Mediator
	logger *slog.Logger
}

func NewHandler(m *mediator.Mediator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{m: m, logger: logger}
}

func (h *Handler) GetBasket(w http.ResponseWriter, r *http.Request) {
	res, err := mediator.Send[basket.GetBasketResult](r.Context(), h.m, basket.GetBasketQuery{
		UserName: chi.URLParam(r, "userName"),
	})
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCartToResponse(res.Cart))
}

func (h *Handler) StoreBasket(w http.ResponseWriter, r *http.Request) {
	var req CartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	res, err := mediator.Send[basket.StoreBasketResult](r.Context(), h.m, basket.StoreBasketCommand{Cart: req.toDomain()})
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCartToResponse(res.Cart))
}

func (h *Handler) DeleteBasket(w http.ResponseWriter, r *http.Request) {
	res, err := mediator.Send[basket.DeleteBasketResult](r.Context(), h.m, basket.DeleteBasketCommand{
		UserName: chi.URLParam(r, "userName"),
	})
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{IsSuccess: res.IsSuccess})
}

func (h *Handler) CheckoutBasket(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	res, err := mediator.Send[basket.CheckoutBasketResult](r.Context(), h.m, basket.CheckoutBasketCommand{Checkout: req.toDomain()})
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, SuccessResponse{IsSuccess: res.IsSuccess})
}

// writeFailure maps validation to 400 and not-found to 404. Anything else is
// a 500 without internal detail. Handler errors were already logged by the
// mediator; only dispatch errors that never reached the chain are logged here.
func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var verr *mediator.ValidationError
	switch {
	case errors.As(err, &verr):
		fields := make([]FieldError, len(verr.Failures))
		for i, f := range verr.Failures {
			fields[i] = FieldError{Field: f.Field, Message: f.Message}
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_failed", Fields: fields})
	case errors.Is(err, domain.ErrBasketNotFound):
		writeError(w, http.StatusNotFound, "basket_not_found", err.Error())
	default:
		if errors.Is(err, mediator.ErrNoHandler) {
			h.logger.ErrorContext(r.Context(), "basket request not dispatched", "path", r.URL.Path, "error", err)
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
