package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/quotecatalog/api/middleware"
	"github.com/angelmondragon/quotecatalog/api/responses"
	"github.com/angelmondragon/quotecatalog/api/validators"
	"github.com/angelmondragon/quotecatalog/internal/pricing"
	"github.com/angelmondragon/quotecatalog/internal/session"
	pkgerrors "github.com/angelmondragon/quotecatalog/pkg/errors"
	"github.com/angelmondragon/quotecatalog/pkg/logger"
)

// SessionService is the cart surface of the quoting service.
type SessionService interface {
	CreateSession(ctx context.Context) (*session.Session, error)
	Session(ctx context.Context, id string) (*session.Session, error)
	AddToCart(ctx context.Context, sessionID, reference, variant string, quantity int) (*session.Session, error)
	RemoveFromCart(ctx context.Context, sessionID string, index int) (*session.Session, error)
	ClearCart(ctx context.Context, sessionID string) (*session.Session, error)
}

type cartLineView struct {
	Index       int             `json:"index"`
	Reference   string          `json:"reference"`
	Description string          `json:"description"`
	Variant     string          `json:"variant"`
	Location    string          `json:"location"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Price       string          `json:"price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type cartView struct {
	SessionID    string         `json:"session_id"`
	Lines        []cartLineView `json:"lines"`
	Totals       session.Totals `json:"totals"`
	Subtotal     string         `json:"subtotal"`
	HasQuotation bool           `json:"has_quotation"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func newCartView(s *session.Session) cartView {
	totals := s.Totals()
	view := cartView{
		SessionID:    s.ID,
		Lines:        make([]cartLineView, 0, len(s.Cart)),
		Totals:       totals,
		Subtotal:     pricing.Format(totals.Subtotal),
		HasQuotation: s.LastQuotation != nil,
		UpdatedAt:    s.UpdatedAt,
	}
	for i, l := range s.Cart {
		view.Lines = append(view.Lines, cartLineView{
			Index:       i,
			Reference:   l.Item.Product.Reference,
			Description: l.Item.Product.Description,
			Variant:     l.Item.Variant.Key,
			Location:    l.Item.Variant.Label,
			Quantity:    l.Quantity,
			UnitPrice:   l.Item.Amount,
			Price:       l.Item.Price,
			LineTotal:   l.Item.Amount.Mul(decimal.NewFromInt(int64(l.Quantity))),
		})
	}
	return view
}

type addCartLineRequest struct {
	Reference string `json:"reference" validate:"required,max=64"`
	Variant   string `json:"variant" validate:"max=64"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

// SessionCreate issues a new session id with an empty cart.
func SessionCreate(svc SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := svc.CreateSession(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartView(s))
	}
}

func CartFetch(svc SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		s, err := svc.Session(ctx, middleware.SessionIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(s))
	}
}

// CartAdd resolves a reference against the current catalog and appends it.
func CartAdd(svc SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req addCartLineRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		s, err := svc.AddToCart(ctx, middleware.SessionIDFromContext(ctx),
			validators.SanitizeString(req.Reference, 64), validators.SanitizeString(req.Variant, 64), req.Quantity)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartView(s))
	}
}

func CartRemove(svc SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "cart index must be numeric").
				WithDetails(map[string]any{"field": "index"}))
			return
		}
		s, err := svc.RemoveFromCart(ctx, middleware.SessionIDFromContext(ctx), index)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(s))
	}
}

// CartClear empties the cart and drops the last quotation.
func CartClear(svc SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		s, err := svc.ClearCart(ctx, middleware.SessionIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(s))
	}
}
