package quoting

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/quotecatalog/internal/catalog"
	"github.com/angelmondragon/quotecatalog/internal/document"
	"github.com/angelmondragon/quotecatalog/internal/quotation"
	"github.com/angelmondragon/quotecatalog/internal/render"
	"github.com/angelmondragon/quotecatalog/internal/search"
	"github.com/angelmondragon/quotecatalog/internal/session"
	pkgerrors "github.com/angelmondragon/quotecatalog/pkg/errors"
)

type QuoteRequest struct {
	Client          quotation.ClientInfo
	DiscountPercent decimal.Decimal
	ValidityDays    int
	// Variant re-prices every cart line for this price variant when set.
	Variant string
}

// GenerateQuotation prices the session cart and stores the result as the
// session's last quotation. The cart itself is left as is.
func (s *Service) GenerateQuotation(ctx context.Context, sessionID string, req QuoteRequest) (*quotation.Quotation, error) {
	ctx = s.logg.WithSessionID(ctx, sessionID)
	var q *quotation.Quotation
	_, err := s.sessions.Update(ctx, sessionID, func(sess *session.Session) error {
		lines, opts, err := s.prepareLines(sess.Cart, req)
		if err != nil {
			return err
		}
		q, err = s.calculator.Compute(lines, req.Client, opts)
		if err != nil {
			return err
		}
		sess.LastQuotation = q
		return nil
	})
	if err != nil {
		s.metrics.ObserveQuotation(0, err)
		if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() == pkgerrors.CodeInternal {
			s.logg.Error(ctx, "quotation.failed", err)
		}
		return nil, err
	}

	total, _ := q.Total.Float64()
	s.metrics.ObserveQuotation(total, nil)
	ctx = s.logg.WithQuotationID(ctx, q.ID)
	ctx = s.logg.WithFields(ctx, map[string]any{"total": q.Total.String(), "lines": len(q.Lines), "variant": q.VariantKey})
	s.logg.Info(ctx, "quotation.generated")
	return q, nil
}

func (s *Service) prepareLines(cart []quotation.CartLine, req QuoteRequest) ([]quotation.CartLine, quotation.Options, error) {
	opts := quotation.Options{
		DiscountPercent: quotation.ClampDiscount(req.DiscountPercent, s.maxDiscount),
		ValidityDays:    req.ValidityDays,
	}
	variant := strings.TrimSpace(req.Variant)
	if variant == "" {
		return cart, opts, nil
	}

	snapshot := s.Catalog()
	spec, ok := snapshot.Profile().VariantSpec(variant)
	if !ok {
		return nil, opts, pkgerrors.New(pkgerrors.CodeValidation, "unknown price variant").
			WithDetails(map[string]string{"variant": variant})
	}
	opts.VariantKey, opts.VariantLabel = spec.Key, spec.Label

	lines := make([]quotation.CartLine, len(cart))
	for i, l := range cart {
		lines[i] = l
		if item, err := search.ResolveReference(snapshot, l.Item.Product.Reference, spec.Key); err == nil {
			lines[i].Item = item
		} else {
			lines[i].Item = repriceMissing(l.Item, spec)
		}
	}
	return lines, opts, nil
}

// repriceMissing handles a cart line whose product left the catalog: it keeps
// the stored product and looks the variant up on it.
func repriceMissing(item search.ResolvedProduct, spec catalog.VariantSpec) search.ResolvedProduct {
	v, ok := item.Product.Variant(spec.Key)
	if !ok {
		return item
	}
	item.Variant = v
	item.Amount = v.Amount
	return item
}

// LatestQuotation returns the last quotation generated in the session.
func (s *Service) LatestQuotation(ctx context.Context, sessionID string) (*quotation.Quotation, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.LastQuotation == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no quotation generated in this session").
			WithDetails(map[string]string{"session_id": sessionID})
	}
	return sess.LastQuotation, nil
}

// Document is a rendered quotation file.
type Document struct {
	FileName    string
	ContentType string
	Body        []byte
}

// RenderLatest draws the session's last quotation in format. A non-nil
// company is merged over the session branding and remembered for later
// renders; the quotation itself is not recomputed.
func (s *Service) RenderLatest(ctx context.Context, sessionID, format string, company *document.CompanyProfile) (*Document, error) {
	renderer, err := s.renderers.Lookup(format)
	if err != nil {
		return nil, err
	}

	var sess *session.Session
	if company != nil {
		sess, err = s.sessions.Update(ctx, sessionID, func(sess *session.Session) error {
			merged := sess.Branding(document.CompanyProfile{}).Merge(*company)
			sess.Company = &merged
			return nil
		})
	} else {
		sess, err = s.sessions.Get(ctx, sessionID)
	}
	if err != nil {
		return nil, err
	}
	if sess.LastQuotation == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no quotation generated in this session").
			WithDetails(map[string]string{"session_id": sessionID})
	}
	return s.RenderQuotation(ctx, sess.LastQuotation, sess.Branding(s.company), format, renderer)
}

// RenderQuotation lays q out for company and renders it. A nil renderer is
// looked up by format.
func (s *Service) RenderQuotation(ctx context.Context, q *quotation.Quotation, company document.CompanyProfile, format string, renderer render.Renderer) (*Document, error) {
	if renderer == nil {
		var err error
		if renderer, err = s.renderers.Lookup(format); err != nil {
			return nil, err
		}
	}
	model := document.Build(q, company, document.Options{
		Logo:       s.logo,
		Signatures: s.signatures,
		Labels:     s.labels,
	})
	body, err := renderer.Render(model)
	s.metrics.ObserveDocument(strings.TrimPrefix(renderer.Extension(), "."), err)
	ctx = s.logg.WithQuotationID(ctx, q.ID)
	if err != nil {
		s.logg.Error(ctx, "document.render.failed", err)
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"format": renderer.Extension(), "bytes": len(body)}), "document.rendered")
	return &Document{
		FileName:    render.FileName(model, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}
