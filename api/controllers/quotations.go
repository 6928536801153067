package controllers

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/quotecatalog/api/middleware"
	"github.com/angelmondragon/quotecatalog/api/responses"
	"github.com/angelmondragon/quotecatalog/api/validators"
	"github.com/angelmondragon/quotecatalog/internal/document"
	"github.com/angelmondragon/quotecatalog/internal/pricing"
	"github.com/angelmondragon/quotecatalog/internal/quotation"
	"github.com/angelmondragon/quotecatalog/internal/quoting"
	"github.com/angelmondragon/quotecatalog/pkg/logger"
)

// QuotationService is the quotation surface of the quoting service.
type QuotationService interface {
	GenerateQuotation(ctx context.Context, sessionID string, req quoting.QuoteRequest) (*quotation.Quotation, error)
	LatestQuotation(ctx context.Context, sessionID string) (*quotation.Quotation, error)
	RenderLatest(ctx context.Context, sessionID, format string, company *document.CompanyProfile) (*quoting.Document, error)
}

type createQuotationRequest struct {
	Client          quotation.ClientInfo `json:"client"`
	DiscountPercent decimal.Decimal      `json:"discount_percent"`
	ValidityDays    int                  `json:"validity_days" validate:"gte=0,lte=365"`
	Variant         string               `json:"variant" validate:"max=64"`
}

type renderDocumentRequest struct {
	Company *document.CompanyProfile `json:"company"`
}

type quotationView struct {
	*quotation.Quotation
	Formatted struct {
		Subtotal string `json:"subtotal"`
		Discount string `json:"discount"`
		Total    string `json:"total"`
	} `json:"formatted"`
	Items int `json:"items"`
}

func newQuotationView(q *quotation.Quotation) quotationView {
	v := quotationView{Quotation: q, Items: q.ItemCount()}
	v.Formatted.Subtotal = pricing.Format(q.Subtotal)
	v.Formatted.Discount = pricing.Format(q.DiscountAmount)
	v.Formatted.Total = pricing.Format(q.Total)
	return v
}

// QuotationCreate prices the session cart. The discount is clamped, not rejected.
func QuotationCreate(svc QuotationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req createQuotationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		q, err := svc.GenerateQuotation(ctx, middleware.SessionIDFromContext(ctx), quoting.QuoteRequest{
			Client:          req.Client,
			DiscountPercent: req.DiscountPercent,
			ValidityDays:    req.ValidityDays,
			Variant:         validators.SanitizeString(req.Variant, 64),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newQuotationView(q))
	}
}

func QuotationLatest(svc QuotationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		q, err := svc.LatestQuotation(ctx, middleware.SessionIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newQuotationView(q))
	}
}

// QuotationDocument renders the latest quotation as ?format= (pdf by default).
// An optional company in the body rebrands the document without requoting.
func QuotationDocument(svc QuotationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req renderDocumentRequest
		if err := validators.DecodeOptionalJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		doc, err := svc.RenderLatest(ctx, middleware.SessionIDFromContext(ctx), r.URL.Query().Get("format"), req.Company)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteFile(w, doc.ContentType, doc.FileName, doc.Body)
	}
}
